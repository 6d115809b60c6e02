package repo

import (
	"context"

	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var terms = table{
	name:    "terms",
	columns: contentColumns + `, name, slug`,
	filters: map[string]string{
		"id":    "id",
		"state": "state",
		"name":  "name",
		"slug":  "slug",
	},
	orders: orders(map[string]string{"name": "name"}),
	search: "name",
}

type TermRepo struct {
	db database.Queryer
}

func NewTermRepo(db database.Queryer) *TermRepo { return &TermRepo{db: db} }

// EnsureTable creates the terms and term_words tables if not exists (idempotent).
func (r *TermRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS terms (` + contentDDL + `
  name TEXT NOT NULL,
  slug TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_terms_slug ON terms(slug);
CREATE TABLE IF NOT EXISTS term_words (
  term_id BIGINT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
  word_id BIGINT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
  PRIMARY KEY (term_id, word_id)
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *TermRepo) Get(ctx context.Context, id int64) (*entity.Term, error) {
	return get[entity.Term](ctx, r.db, terms, id)
}

func (r *TermRepo) Find(ctx context.Context, opts content.FindOptions) ([]*entity.Term, error) {
	return find[entity.Term](ctx, r.db, terms, opts)
}

// Insert stores the term and links it to its words.
func (r *TermRepo) Insert(ctx context.Context, t *entity.Term) error {
	const q = `INSERT INTO terms (state, created_at, created_by_id, name, slug)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &t.ID, q, t.State, t.CreatedAt, t.CreatedByID, t.Name, t.Slug); err != nil {
		return err
	}
	return r.linkWords(ctx, t)
}

func (r *TermRepo) linkWords(ctx context.Context, t *entity.Term) error {
	if len(t.Words) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(t.Words))
	for _, w := range t.Words {
		ids = append(ids, w.ID)
	}
	const q = `INSERT INTO term_words (term_id, word_id) SELECT $1, UNNEST($2::bigint[]) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, t.ID, pq.Array(ids))
	return err
}

func (r *TermRepo) Update(ctx context.Context, t *entity.Term) error {
	const q = `UPDATE terms SET state=$2, last_updated_at=$3, last_updated_by_id=$4, name=$5, slug=$6 WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.State, t.LastUpdatedAt, t.LastUpdatedByID, t.Name, t.Slug)
	return err
}
