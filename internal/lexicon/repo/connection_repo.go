package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var connections = table{
	name:    "connections",
	columns: contentColumns + `, term_id, usage_id, weight`,
	filters: map[string]string{
		"id":      "id",
		"state":   "state",
		"termId":  "term_id",
		"usageId": "usage_id",
	},
	orders: orders(map[string]string{"weight": "weight"}),
}

type ConnectionRepo struct {
	db database.Queryer
}

func NewConnectionRepo(db database.Queryer) *ConnectionRepo { return &ConnectionRepo{db: db} }

// EnsureTable creates the connections table if not exists (idempotent).
func (r *ConnectionRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS connections (` + contentDDL + `
  term_id BIGINT NOT NULL REFERENCES terms(id),
  usage_id BIGINT NOT NULL REFERENCES usages(id),
  weight INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_connections_term_id ON connections(term_id);
CREATE INDEX IF NOT EXISTS idx_connections_usage_id ON connections(usage_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *ConnectionRepo) Get(ctx context.Context, id int64) (*entity.Connection, error) {
	return get[entity.Connection](ctx, r.db, connections, id)
}

func (r *ConnectionRepo) Find(ctx context.Context, opts content.FindOptions) ([]*entity.Connection, error) {
	return find[entity.Connection](ctx, r.db, connections, opts)
}

func (r *ConnectionRepo) Insert(ctx context.Context, c *entity.Connection) error {
	const q = `INSERT INTO connections (state, created_at, created_by_id, term_id, usage_id, weight)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.GetContext(ctx, &c.ID, q, c.State, c.CreatedAt, c.CreatedByID, c.TermID, c.UsageID, c.Weight)
}

func (r *ConnectionRepo) Update(ctx context.Context, c *entity.Connection) error {
	const q = `UPDATE connections SET state=$2, last_updated_at=$3, last_updated_by_id=$4, weight=$5 WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.State, c.LastUpdatedAt, c.LastUpdatedByID, c.Weight)
	return err
}
