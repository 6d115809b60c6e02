package lexicon

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var (
	ErrTermNotFound  = &operation.InvariantError{Message: "Term could not be found."}
	ErrUsageNotFound = &operation.InvariantError{Message: "Usage could not be found."}
)

type CreateConnectionOptions struct {
	TermID  int64 `json:"termId"`
	UsageID int64 `json:"usageId"`
	content.StateOption
}

func (o CreateConnectionOptions) Validate() error {
	var c operation.Checker
	c.Positive("termId", o.TermID)
	c.Positive("usageId", o.UsageID)
	o.CheckState(&c)
	return c.Err()
}

// NewCreateConnection links a term to a usage. Both are resolved
// concurrently and must exist.
func NewCreateConnection(opts CreateConnectionOptions) *content.Create[*entity.Connection, CreateConnectionOptions] {
	return content.NewCreate(ConnectionKind, opts, func(ctx context.Context, tx database.Queryer, o CreateConnectionOptions) (*entity.Connection, error) {
		var (
			term  *entity.Term
			usage *entity.Usage
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			term, err = operation.Execute[*entity.Term](gctx, tx, NewGetTerm(content.GetOptions{ID: o.TermID}))
			return err
		})
		g.Go(func() error {
			var err error
			usage, err = operation.Execute[*entity.Usage](gctx, tx, NewGetUsage(content.GetOptions{ID: o.UsageID}))
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if term == nil {
			return nil, ErrTermNotFound
		}
		if usage == nil {
			return nil, ErrUsageNotFound
		}
		return &entity.Connection{TermID: term.ID, UsageID: usage.ID, Term: term, Usage: usage, Weight: 0}, nil
	})
}

func NewFindConnection(opts content.FindOptions) *content.FindOne[*entity.Connection] {
	return content.NewFindOne(ConnectionKind, opts)
}

func NewFindConnections(opts content.FindOptions) *content.Find[*entity.Connection] {
	return content.NewFind(ConnectionKind, opts)
}

func NewGetConnection(opts content.GetOptions) *content.Get[*entity.Connection] {
	return content.NewGet(ConnectionKind, opts)
}

type UpdateConnectionOptions struct {
	content.UpdateBase
	Weight *int `json:"weight,omitempty"`
}

func (o UpdateConnectionOptions) Validate() error {
	var c operation.Checker
	o.UpdateBase.Check(&c)
	return c.Err()
}

func NewUpdateConnection(opts UpdateConnectionOptions) *content.Update[*entity.Connection, UpdateConnectionOptions] {
	return content.NewUpdate(ConnectionKind, opts, func(_ context.Context, _ database.Queryer, c *entity.Connection, o UpdateConnectionOptions) error {
		if o.Weight != nil {
			c.Weight = *o.Weight
		}
		return nil
	})
}
