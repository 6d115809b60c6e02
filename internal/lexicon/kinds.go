// Package lexicon implements the operations over dictionary content: words,
// terms, usages, the connections between terms and usages, and inquiries.
package lexicon

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/repo"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var (
	WordKind = &content.Kind[*entity.Word]{
		Name: "Word", Plural: "Words", DefaultState: content.StateDraft,
		Store: func(tx database.Queryer) content.Store[*entity.Word] { return repo.NewWordRepo(tx) },
	}
	TermKind = &content.Kind[*entity.Term]{
		Name: "Term", Plural: "Terms", DefaultState: content.StateDraft,
		Store: func(tx database.Queryer) content.Store[*entity.Term] { return repo.NewTermRepo(tx) },
	}
	UsageKind = &content.Kind[*entity.Usage]{
		Name: "Usage", Plural: "Usages", DefaultState: content.StateDraft,
		Store: func(tx database.Queryer) content.Store[*entity.Usage] { return repo.NewUsageRepo(tx) },
	}
	ConnectionKind = &content.Kind[*entity.Connection]{
		Name: "Connection", Plural: "Connections", DefaultState: content.StateDraft,
		Store: func(tx database.Queryer) content.Store[*entity.Connection] { return repo.NewConnectionRepo(tx) },
	}
	InquiryKind = &content.Kind[*entity.Inquiry]{
		Name: "Inquiry", Plural: "Inquiries", DefaultState: content.StatePublished,
		Store: func(tx database.Queryer) content.Store[*entity.Inquiry] { return repo.NewInquiryRepo(tx) },
	}
)

// Populaters reference other kinds, so they are wired after the kinds exist.
func init() {
	WordKind.Populaters = content.DefaultPopulaters[*entity.Word](nil)
	TermKind.Populaters = content.DefaultPopulaters(content.Populaters[*entity.Term]{
		"words": func(ctx context.Context, tx database.Queryer, t *entity.Term, rel []string) (any, error) {
			return findRelated(ctx, tx, WordKind, "termId", t.ID, rel)
		},
		"connections": func(ctx context.Context, tx database.Queryer, t *entity.Term, rel []string) (any, error) {
			return findRelated(ctx, tx, ConnectionKind, "termId", t.ID, rel)
		},
	})
	UsageKind.Populaters = content.DefaultPopulaters(content.Populaters[*entity.Usage]{
		"connections": func(ctx context.Context, tx database.Queryer, u *entity.Usage, rel []string) (any, error) {
			return findRelated(ctx, tx, ConnectionKind, "usageId", u.ID, rel)
		},
	})
	ConnectionKind.Populaters = content.DefaultPopulaters(content.Populaters[*entity.Connection]{
		"term": func(ctx context.Context, tx database.Queryer, c *entity.Connection, rel []string) (any, error) {
			return getRelated(ctx, tx, TermKind, c.TermID, rel)
		},
		"usage": func(ctx context.Context, tx database.Queryer, c *entity.Connection, rel []string) (any, error) {
			return getRelated(ctx, tx, UsageKind, c.UsageID, rel)
		},
	})
	InquiryKind.Populaters = content.DefaultPopulaters[*entity.Inquiry](nil)
}

// findRelated lists the entities of k whose key column references id.
func findRelated[C content.Entity](ctx context.Context, tx database.Queryer, k *content.Kind[C], key string, id int64, rel []string) (any, error) {
	cs, err := operation.Execute[[]C](ctx, tx, content.NewFind(k, content.FindOptions{
		Where:     map[string]any{key: id},
		Paging:    operation.Paging{Take: operation.MaxTake},
		Relations: rel,
	}))
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// getRelated resolves a single foreign key. A zero id or missing row yields nil.
func getRelated[C content.Entity](ctx context.Context, tx database.Queryer, k *content.Kind[C], id int64, rel []string) (any, error) {
	var zero C
	if id == 0 {
		return nil, nil
	}
	c, err := operation.Execute[C](ctx, tx, content.NewGet(k, content.GetOptions{ID: id, Relations: rel}))
	if err != nil || c == zero {
		return nil, err
	}
	return c, nil
}

// EnsureSchema creates every dictionary table in dependency order.
func EnsureSchema(ctx context.Context, db database.Queryer) error {
	steps := []func(context.Context) error{
		repo.NewWordRepo(db).EnsureTable,
		repo.NewTermRepo(db).EnsureTable,
		repo.NewUsageRepo(db).EnsureTable,
		repo.NewConnectionRepo(db).EnsureTable,
		repo.NewInquiryRepo(db).EnsureTable,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
