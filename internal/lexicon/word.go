package lexicon

import (
	"context"
	"time"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/lang"
)

func checkName(c *operation.Checker, name string) {
	c.Length("name", name, 1, 255, "Name must be between 1 and 255 characters.")
}

type CreateWordOptions struct {
	Name string `json:"name"`
	content.StateOption
}

func (o CreateWordOptions) Validate() error {
	var c operation.Checker
	checkName(&c, o.Name)
	o.CheckState(&c)
	return c.Err()
}

func NewCreateWord(opts CreateWordOptions) *content.Create[*entity.Word, CreateWordOptions] {
	return content.NewCreate(WordKind, opts, func(_ context.Context, _ database.Queryer, o CreateWordOptions) (*entity.Word, error) {
		w := &entity.Word{Name: o.Name}
		w.Derive()
		return w, nil
	})
}

type CreateWordsOptions struct {
	Names []string `json:"names"`
	content.StateOption
}

func (o CreateWordsOptions) Validate() error {
	var c operation.Checker
	for _, n := range o.Names {
		checkName(&c, n)
	}
	o.CheckState(&c)
	return c.Err()
}

// CreateWords stores one word per name.
type CreateWords struct {
	operation.Base[CreateWordsOptions]
}

func NewCreateWords(opts CreateWordsOptions) *CreateWords {
	return &CreateWords{Base: operation.Base[CreateWordsOptions]{Opts: opts}}
}

func (op *CreateWords) Name() string { return "CreateWords" }

func (op *CreateWords) Run(ctx context.Context, tx database.Queryer) ([]*entity.Word, error) {
	if err := op.Opts.Validate(); err != nil {
		return nil, err
	}
	state := WordKind.DefaultState
	if s := op.Opts.ContentState(); s != nil {
		state = *s
	}
	now := time.Now().UTC()
	store := WordKind.Store(tx)
	out := make([]*entity.Word, 0, len(op.Opts.Names))
	for _, name := range op.Opts.Names {
		w := &entity.Word{Name: name}
		w.Derive()
		w.State = state
		w.CreatedAt = now
		w.CreatedByID = operation.ActorID(ctx)
		if err := store.Insert(ctx, w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func NewFindWord(opts content.FindOptions) *content.FindOne[*entity.Word] {
	return content.NewFindOne(WordKind, opts)
}

func NewFindWords(opts content.FindOptions) *content.Find[*entity.Word] {
	return content.NewFind(WordKind, opts)
}

type FindCreateWordOptions struct {
	Create CreateWordOptions `json:"create"`
}

// FindCreateWord returns the word with the slug of the given name, creating
// it when missing.
type FindCreateWord struct {
	operation.Base[FindCreateWordOptions]
}

func NewFindCreateWord(opts FindCreateWordOptions) *FindCreateWord {
	return &FindCreateWord{Base: operation.Base[FindCreateWordOptions]{Opts: opts}}
}

func (op *FindCreateWord) Name() string { return "FindCreateWord" }

func (op *FindCreateWord) Run(ctx context.Context, tx database.Queryer) (*entity.Word, error) {
	slug := lang.Slugify(op.Opts.Create.Name)
	existing, err := operation.Execute[*entity.Word](ctx, tx, NewFindWord(content.FindOptions{
		Where: map[string]any{"slug": slug},
	}))
	if err != nil || existing != nil {
		return existing, err
	}
	return operation.Execute[*entity.Word](ctx, tx, NewCreateWord(op.Opts.Create))
}

type FindCreateWordsOptions struct {
	Create CreateWordsOptions `json:"create"`
}

// FindCreateWords resolves every name to a word by slug, creating the
// missing ones in a single CreateWords.
type FindCreateWords struct {
	operation.Base[FindCreateWordsOptions]
}

func NewFindCreateWords(opts FindCreateWordsOptions) *FindCreateWords {
	return &FindCreateWords{Base: operation.Base[FindCreateWordsOptions]{Opts: opts}}
}

func (op *FindCreateWords) Name() string { return "FindCreateWords" }

func (op *FindCreateWords) Run(ctx context.Context, tx database.Queryer) ([]*entity.Word, error) {
	bySlug := map[string]string{}
	slugs := []string{}
	for _, name := range op.Opts.Create.Names {
		slug := lang.Slugify(name)
		if _, ok := bySlug[slug]; ok || slug == "" {
			continue
		}
		bySlug[slug] = name
		slugs = append(slugs, slug)
	}
	if len(slugs) == 0 {
		return []*entity.Word{}, nil
	}

	var existing []*entity.Word
	for start := 0; start < len(slugs); start += operation.MaxTake {
		chunk := slugs[start:min(start+operation.MaxTake, len(slugs))]
		page, err := operation.Execute[[]*entity.Word](ctx, tx, NewFindWords(content.FindOptions{
			Where:  map[string]any{"slug": chunk},
			Paging: operation.Paging{Take: operation.MaxTake},
		}))
		if err != nil {
			return nil, err
		}
		existing = append(existing, page...)
	}
	found := make(map[string]bool, len(existing))
	for _, w := range existing {
		found[w.Slug] = true
	}
	var missing []string
	for _, slug := range slugs {
		if !found[slug] {
			missing = append(missing, bySlug[slug])
		}
	}
	if len(missing) == 0 {
		return existing, nil
	}

	create := op.Opts.Create
	create.Names = missing
	created, err := operation.Execute[[]*entity.Word](ctx, tx, NewCreateWords(create))
	if err != nil {
		return nil, err
	}
	return append(created, existing...), nil
}

func NewGetWord(opts content.GetOptions) *content.Get[*entity.Word] {
	return content.NewGet(WordKind, opts)
}

// UpdateWordOptions never carries derived fields; they follow Name.
type UpdateWordOptions struct {
	content.UpdateBase
	Name    *string `json:"name,omitempty"`
	Acronym *bool   `json:"acronym,omitempty"`
}

func (o UpdateWordOptions) Validate() error {
	var c operation.Checker
	o.UpdateBase.Check(&c)
	if o.Name != nil {
		checkName(&c, *o.Name)
	}
	return c.Err()
}

func NewUpdateWord(opts UpdateWordOptions) *content.Update[*entity.Word, UpdateWordOptions] {
	return content.NewUpdate(WordKind, opts, func(_ context.Context, _ database.Queryer, w *entity.Word, o UpdateWordOptions) error {
		if o.Name != nil {
			w.Name = *o.Name
		}
		if o.Acronym != nil {
			w.Acronym = *o.Acronym
		}
		w.Derive()
		return nil
	})
}
