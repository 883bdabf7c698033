package errs

import "errors"

var (
	// ErrDuplicateEvent marks an idempotency hit: the unique event id has
	// already been committed. Client-visible, not an operational failure.
	ErrDuplicateEvent = errors.New("duplicate event")
)

type ValidateError struct {
	err     error
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields"`
}

func NewValidateError(err error) *ValidateError {
	return &ValidateError{
		err:     err,
		Message: err.Error(),
		Fields:  make(map[string]interface{}),
	}
}

func NewValidateFieldsError(err error, fields map[string]interface{}) *ValidateError {
	return &ValidateError{
		err:     err,
		Message: err.Error(),
		Fields:  fields,
	}
}

func (e *ValidateError) Error() string {
	return e.err.Error()
}
