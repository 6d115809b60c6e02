package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var words = table{
	name:    "words",
	columns: contentColumns + `, name, slug, stem, length, numeric, acronym`,
	filters: map[string]string{
		"id":     "id",
		"state":  "state",
		"name":   "name",
		"slug":   "slug",
		"termId": "id IN (SELECT word_id FROM term_words WHERE term_id = %s)",
	},
	orders: orders(map[string]string{"name": "name", "length": "length"}),
	search: "name",
}

type WordRepo struct {
	db database.Queryer
}

func NewWordRepo(db database.Queryer) *WordRepo { return &WordRepo{db: db} }

// EnsureTable creates the words table if not exists (idempotent).
func (r *WordRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS words (` + contentDDL + `
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE,
  stem TEXT NOT NULL,
  length SMALLINT NOT NULL,
  numeric BOOLEAN NOT NULL DEFAULT false,
  acronym BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_words_stem ON words(stem);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *WordRepo) Get(ctx context.Context, id int64) (*entity.Word, error) {
	return get[entity.Word](ctx, r.db, words, id)
}

func (r *WordRepo) Find(ctx context.Context, opts content.FindOptions) ([]*entity.Word, error) {
	return find[entity.Word](ctx, r.db, words, opts)
}

func (r *WordRepo) Insert(ctx context.Context, w *entity.Word) error {
	const q = `INSERT INTO words (state, created_at, created_by_id, name, slug, stem, length, numeric, acronym)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.GetContext(ctx, &w.ID, q,
		w.State, w.CreatedAt, w.CreatedByID, w.Name, w.Slug, w.Stem, w.Length, w.Numeric, w.Acronym)
}

func (r *WordRepo) Update(ctx context.Context, w *entity.Word) error {
	const q = `UPDATE words SET state=$2, last_updated_at=$3, last_updated_by_id=$4,
		name=$5, slug=$6, stem=$7, length=$8, numeric=$9, acronym=$10
		WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, w.ID,
		w.State, w.LastUpdatedAt, w.LastUpdatedByID, w.Name, w.Slug, w.Stem, w.Length, w.Numeric, w.Acronym)
	return err
}
