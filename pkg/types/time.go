package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Time is a timestamp persisted as timestamptz and rendered as
// RFC3339 UTC in JSON.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{
		Time: t.UTC(),
	}
}

func (t Time) Equal(other Time) bool {
	return t.Time.Equal(other.Time)
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	parsed, err := time.Parse(`"`+time.RFC3339+`"`, string(b))
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

func (t *Time) Scan(src interface{}) error {
	if src == nil {
		t.Time = time.Time{}
		return nil
	}

	if v, ok := src.(time.Time); ok {
		t.Time = v.UTC()
		return nil
	}
	return fmt.Errorf("cannot scan %T", src)
}

func (t Time) Value() (driver.Value, error) {
	return t.Time, nil
}
