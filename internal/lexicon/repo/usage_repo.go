package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var usages = table{
	name:    "usages",
	columns: contentColumns + `, name, slug, summary`,
	filters: map[string]string{
		"id":    "id",
		"state": "state",
		"name":  "name",
		"slug":  "slug",
	},
	orders: orders(map[string]string{"name": "name"}),
	search: "name",
}

type UsageRepo struct {
	db database.Queryer
}

func NewUsageRepo(db database.Queryer) *UsageRepo { return &UsageRepo{db: db} }

// EnsureTable creates the usages table if not exists (idempotent).
func (r *UsageRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS usages (` + contentDDL + `
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  summary TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_usages_slug ON usages(slug);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *UsageRepo) Get(ctx context.Context, id int64) (*entity.Usage, error) {
	return get[entity.Usage](ctx, r.db, usages, id)
}

func (r *UsageRepo) Find(ctx context.Context, opts content.FindOptions) ([]*entity.Usage, error) {
	return find[entity.Usage](ctx, r.db, usages, opts)
}

func (r *UsageRepo) Insert(ctx context.Context, u *entity.Usage) error {
	const q = `INSERT INTO usages (state, created_at, created_by_id, name, slug, summary)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.GetContext(ctx, &u.ID, q, u.State, u.CreatedAt, u.CreatedByID, u.Name, u.Slug, u.Summary)
}

func (r *UsageRepo) Update(ctx context.Context, u *entity.Usage) error {
	const q = `UPDATE usages SET state=$2, last_updated_at=$3, last_updated_by_id=$4, name=$5, slug=$6, summary=$7 WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.State, u.LastUpdatedAt, u.LastUpdatedByID, u.Name, u.Slug, u.Summary)
	return err
}
