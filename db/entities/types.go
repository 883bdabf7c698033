package entities

import (
	"github.com/clickgate-io/clickgate/pkg/types"
)

type BaseModel struct {
	CreatedAt types.Time `db:"created_at" json:"created_at"`
}
