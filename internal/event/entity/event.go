package entity

import (
	"encoding/json"
	"time"
)

// Event is the append-only audit record written for every operation.
type Event struct {
	ID          int64           `db:"id" json:"id"`
	Type        string          `db:"type" json:"type"`
	Options     json.RawMessage `db:"options" json:"options"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	CreatedByID *int64          `db:"created_by_id" json:"createdBy"`
}
