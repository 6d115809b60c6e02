package content

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

// Store is the per-kind data access the generic operations run against.
type Store[C Entity] interface {
	// Get returns sql.ErrNoRows when no row has id.
	Get(ctx context.Context, id int64) (C, error)
	Find(ctx context.Context, opts FindOptions) ([]C, error)
	Insert(ctx context.Context, c C) error
	Update(ctx context.Context, c C) error
}

// Kind describes one entity type to the generic operations.
type Kind[C Entity] struct {
	Name         string
	Plural       string
	DefaultState State
	Store        func(tx database.Queryer) Store[C]
	Populaters   Populaters[C]
}

// Options is implemented by every create and update options type.
type Options interface {
	Validate() error
	ContentState() *State
}

// UpdateOptions adds the target id.
type UpdateOptions interface {
	Options
	ContentID() int64
}

// StateOption is embedded by create and update options. Only admins may set
// it; the HTTP layer clears it for everyone else.
type StateOption struct {
	State *State `json:"state,omitempty"`
}

func (o StateOption) ContentState() *State { return o.State }

func (o *StateOption) ClearState() { o.State = nil }

func (o StateOption) CheckState(c *operation.Checker) {
	if o.State != nil {
		c.Check(o.State.Valid(), "state", `State must be "draft", "published", or "deleted".`)
	}
}

type UpdateBase struct {
	ID int64 `json:"id"`
	StateOption
}

func (o UpdateBase) ContentID() int64 { return o.ID }

func (o *UpdateBase) SetContentID(id int64) { o.ID = id }

func (o UpdateBase) Check(c *operation.Checker) {
	c.Positive("id", o.ID)
	o.CheckState(c)
}

type FindOptions struct {
	// Where filters on whitelisted columns; slice values match any element.
	Where   map[string]any `json:"where,omitempty"`
	Search  string         `json:"search,omitempty"`
	OrderBy string         `json:"orderBy,omitempty"`
	Desc    bool           `json:"desc,omitempty"`
	operation.Paging
	Relations []string `json:"relations,omitempty"`
}

func (o FindOptions) Validate() error {
	var c operation.Checker
	o.Paging.Check(&c)
	return c.Err()
}

type GetOptions struct {
	ID        int64    `json:"id"`
	Relations []string `json:"relations,omitempty"`
}

// Get fetches one entity by id. A missing row is a nil result, not an error.
type Get[C Entity] struct {
	operation.Base[GetOptions]
	kind *Kind[C]
}

func NewGet[C Entity](k *Kind[C], opts GetOptions) *Get[C] {
	return &Get[C]{Base: operation.Base[GetOptions]{Opts: opts}, kind: k}
}

func (op *Get[C]) Name() string { return "Get" + op.kind.Name }

func (op *Get[C]) Run(ctx context.Context, tx database.Queryer) (C, error) {
	var zero C
	c, err := op.kind.Store(tx).Get(ctx, op.Opts.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, nil
	}
	if err != nil {
		return zero, err
	}
	if err := Populate(ctx, tx, c, op.kind.Populaters, op.Opts.Relations); err != nil {
		return zero, err
	}
	return c, nil
}

// Find lists entities matching the options.
type Find[C Entity] struct {
	operation.Base[FindOptions]
	kind *Kind[C]
}

func NewFind[C Entity](k *Kind[C], opts FindOptions) *Find[C] {
	return &Find[C]{Base: operation.Base[FindOptions]{Opts: opts}, kind: k}
}

func (op *Find[C]) Name() string { return "Find" + op.kind.Plural }

func (op *Find[C]) Run(ctx context.Context, tx database.Queryer) ([]C, error) {
	if err := op.Opts.Validate(); err != nil {
		return nil, err
	}
	cs, err := op.kind.Store(tx).Find(ctx, op.Opts)
	if err != nil {
		return nil, err
	}
	if err := PopulateAll(ctx, tx, cs, op.kind.Populaters, op.Opts.Relations); err != nil {
		return nil, err
	}
	return cs, nil
}

// FindOne returns the first match of opts, or nil.
type FindOne[C Entity] struct {
	operation.Base[FindOptions]
	kind *Kind[C]
}

func NewFindOne[C Entity](k *Kind[C], opts FindOptions) *FindOne[C] {
	opts.Take = 1
	return &FindOne[C]{Base: operation.Base[FindOptions]{Opts: opts}, kind: k}
}

func (op *FindOne[C]) Name() string { return "Find" + op.kind.Name }

func (op *FindOne[C]) Run(ctx context.Context, tx database.Queryer) (C, error) {
	var zero C
	cs, err := op.kind.Store(tx).Find(ctx, op.Opts)
	if err != nil || len(cs) == 0 {
		return zero, err
	}
	if err := Populate(ctx, tx, cs[0], op.kind.Populaters, op.Opts.Relations); err != nil {
		return zero, err
	}
	return cs[0], nil
}

// BuildFunc turns create options into a new, unsaved entity.
type BuildFunc[C Entity, O Options] func(ctx context.Context, tx database.Queryer, opts O) (C, error)

// Create validates, builds, stamps and stores a new entity.
type Create[C Entity, O Options] struct {
	operation.Base[O]
	kind  *Kind[C]
	build BuildFunc[C, O]
}

func NewCreate[C Entity, O Options](k *Kind[C], opts O, build BuildFunc[C, O]) *Create[C, O] {
	return &Create[C, O]{Base: operation.Base[O]{Opts: opts}, kind: k, build: build}
}

func (op *Create[C, O]) Name() string { return "Create" + op.kind.Name }

func (op *Create[C, O]) Run(ctx context.Context, tx database.Queryer) (C, error) {
	var zero C
	if err := op.Opts.Validate(); err != nil {
		return zero, err
	}
	c, err := op.build(ctx, tx, op.Opts)
	if err != nil {
		return zero, err
	}
	m := c.Meta()
	m.State = op.kind.DefaultState
	if s := op.Opts.ContentState(); s != nil {
		m.State = *s
	}
	m.CreatedAt = time.Now().UTC()
	m.CreatedByID = operation.ActorID(ctx)
	if err := op.kind.Store(tx).Insert(ctx, c); err != nil {
		return zero, err
	}
	return c, nil
}

// MergeFunc copies the provided option fields onto the stored entity and
// recomputes anything derived from them.
type MergeFunc[C Entity, O UpdateOptions] func(ctx context.Context, tx database.Queryer, c C, opts O) error

// Update loads the entity through Get, merges the provided fields and stores
// it. A missing entity is a nil result.
type Update[C Entity, O UpdateOptions] struct {
	operation.Base[O]
	kind  *Kind[C]
	merge MergeFunc[C, O]
}

func NewUpdate[C Entity, O UpdateOptions](k *Kind[C], opts O, merge MergeFunc[C, O]) *Update[C, O] {
	return &Update[C, O]{Base: operation.Base[O]{Opts: opts}, kind: k, merge: merge}
}

func (op *Update[C, O]) Name() string { return "Update" + op.kind.Name }

func (op *Update[C, O]) Run(ctx context.Context, tx database.Queryer) (C, error) {
	var zero C
	if err := op.Opts.Validate(); err != nil {
		return zero, err
	}
	c, err := operation.Execute[C](ctx, tx, NewGet(op.kind, GetOptions{ID: op.Opts.ContentID()}))
	if err != nil || c == zero {
		return zero, err
	}

	m := c.Meta()
	if s := op.Opts.ContentState(); s != nil {
		m.State = *s
	}
	if op.merge != nil {
		if err := op.merge(ctx, tx, c, op.Opts); err != nil {
			return zero, err
		}
	}
	now := time.Now().UTC()
	m.LastUpdatedAt = &now
	m.LastUpdatedByID = operation.ActorID(ctx)
	m.LastUpdatedBy = nil

	if err := op.kind.Store(tx).Update(ctx, c); err != nil {
		return zero, err
	}
	return c, nil
}
