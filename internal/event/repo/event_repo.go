package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/event/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

// EventRepo appends audit records. Rows are never updated or deleted.
type EventRepo struct {
	db database.Queryer
}

func NewEventRepo(db database.Queryer) *EventRepo { return &EventRepo{db: db} }

// EnsureTable creates the events table if not exists (idempotent).
func (r *EventRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS events (
  id BIGSERIAL PRIMARY KEY,
  type TEXT NOT NULL,
  options JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  created_by_id BIGINT REFERENCES users(id) ON DELETE RESTRICT
);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_created_by_id ON events(created_by_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts the event and sets its ID.
func (r *EventRepo) Create(ctx context.Context, e *entity.Event) error {
	const q = `INSERT INTO events (type, options, created_at, created_by_id) VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.GetContext(ctx, &e.ID, q, e.Type, []byte(e.Options), e.CreatedAt, e.CreatedByID)
}
