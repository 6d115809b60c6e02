package lexicon

import (
	"context"
	"time"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

func checkSummary(c *operation.Checker, summary string) {
	c.MinLength("summary", summary, 1)
}

type CreateUsageOptions struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	content.StateOption
}

func (o CreateUsageOptions) Validate() error {
	var c operation.Checker
	checkName(&c, o.Name)
	checkSummary(&c, o.Summary)
	o.CheckState(&c)
	return c.Err()
}

func NewCreateUsage(opts CreateUsageOptions) *content.Create[*entity.Usage, CreateUsageOptions] {
	return content.NewCreate(UsageKind, opts, func(_ context.Context, _ database.Queryer, o CreateUsageOptions) (*entity.Usage, error) {
		u := &entity.Usage{Name: o.Name, Summary: o.Summary}
		u.Derive()
		return u, nil
	})
}

type CreateUsagesOptions struct {
	Names []string `json:"names"`
	content.StateOption
}

func (o CreateUsagesOptions) Validate() error {
	var c operation.Checker
	for _, n := range o.Names {
		checkName(&c, n)
	}
	o.CheckState(&c)
	return c.Err()
}

// CreateUsages stores one usage per name with an empty summary.
type CreateUsages struct {
	operation.Base[CreateUsagesOptions]
}

func NewCreateUsages(opts CreateUsagesOptions) *CreateUsages {
	return &CreateUsages{Base: operation.Base[CreateUsagesOptions]{Opts: opts}}
}

func (op *CreateUsages) Name() string { return "CreateUsages" }

func (op *CreateUsages) Run(ctx context.Context, tx database.Queryer) ([]*entity.Usage, error) {
	if err := op.Opts.Validate(); err != nil {
		return nil, err
	}
	state := UsageKind.DefaultState
	if s := op.Opts.ContentState(); s != nil {
		state = *s
	}
	now := time.Now().UTC()
	store := UsageKind.Store(tx)
	out := make([]*entity.Usage, 0, len(op.Opts.Names))
	for _, name := range op.Opts.Names {
		u := &entity.Usage{Name: name}
		u.Derive()
		u.State = state
		u.CreatedAt = now
		u.CreatedByID = operation.ActorID(ctx)
		if err := store.Insert(ctx, u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func NewFindUsage(opts content.FindOptions) *content.FindOne[*entity.Usage] {
	return content.NewFindOne(UsageKind, opts)
}

func NewFindUsages(opts content.FindOptions) *content.Find[*entity.Usage] {
	return content.NewFind(UsageKind, opts)
}

func NewGetUsage(opts content.GetOptions) *content.Get[*entity.Usage] {
	return content.NewGet(UsageKind, opts)
}

type UpdateUsageOptions struct {
	content.UpdateBase
	Name    *string `json:"name,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

func (o UpdateUsageOptions) Validate() error {
	var c operation.Checker
	o.UpdateBase.Check(&c)
	if o.Name != nil {
		checkName(&c, *o.Name)
	}
	if o.Summary != nil {
		checkSummary(&c, *o.Summary)
	}
	return c.Err()
}

// NewUpdateUsage merges name and summary; the slug always follows the name.
func NewUpdateUsage(opts UpdateUsageOptions) *content.Update[*entity.Usage, UpdateUsageOptions] {
	return content.NewUpdate(UsageKind, opts, func(_ context.Context, _ database.Queryer, u *entity.Usage, o UpdateUsageOptions) error {
		if o.Name != nil {
			u.Name = *o.Name
		}
		if o.Summary != nil {
			u.Summary = *o.Summary
		}
		u.Derive()
		return nil
	})
}
