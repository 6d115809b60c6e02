package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var inquiries = table{
	name:    "inquiries",
	columns: contentColumns + `, name, email, message`,
	filters: map[string]string{
		"id":    "id",
		"state": "state",
		"email": "email",
	},
	orders: orders(nil),
}

type InquiryRepo struct {
	db database.Queryer
}

func NewInquiryRepo(db database.Queryer) *InquiryRepo { return &InquiryRepo{db: db} }

// EnsureTable creates the inquiries table if not exists (idempotent).
func (r *InquiryRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS inquiries (` + contentDDL + `
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  message TEXT NOT NULL
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *InquiryRepo) Get(ctx context.Context, id int64) (*entity.Inquiry, error) {
	return get[entity.Inquiry](ctx, r.db, inquiries, id)
}

func (r *InquiryRepo) Find(ctx context.Context, opts content.FindOptions) ([]*entity.Inquiry, error) {
	return find[entity.Inquiry](ctx, r.db, inquiries, opts)
}

func (r *InquiryRepo) Insert(ctx context.Context, i *entity.Inquiry) error {
	const q = `INSERT INTO inquiries (state, created_at, created_by_id, name, email, message)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.GetContext(ctx, &i.ID, q, i.State, i.CreatedAt, i.CreatedByID, i.Name, i.Email, i.Message)
}

// Update only changes state; inquiries are otherwise immutable.
func (r *InquiryRepo) Update(ctx context.Context, i *entity.Inquiry) error {
	const q = `UPDATE inquiries SET state=$2, last_updated_at=$3, last_updated_by_id=$4 WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, i.ID, i.State, i.LastUpdatedAt, i.LastUpdatedByID)
	return err
}
