package dao

import (
	"context"

	"github.com/clickgate-io/clickgate/db/entities"
	"github.com/jmoiron/sqlx"
)

// EventDAO is the persistence boundary of the ingest service: insert a row
// failing on the uniqueness constraint, and look up by the unique event id.
type EventDAO interface {
	Get(ctx context.Context, id string) (*entities.Event, error)
	GetByUniqueEventID(ctx context.Context, uniqueEventID string) (*entities.Event, error)
	Insert(ctx context.Context, event *entities.Event) error
	Count(ctx context.Context, where map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type eventDao struct {
	*DAO[entities.Event]
}

func NewEventDao(db *sqlx.DB) EventDAO {
	return &eventDao{
		DAO: NewDAO[entities.Event]("events", db),
	}
}

func (dao *eventDao) GetByUniqueEventID(ctx context.Context, uniqueEventID string) (*entities.Event, error) {
	return dao.selectByField(ctx, "gtm_unique_event_id", uniqueEventID)
}
