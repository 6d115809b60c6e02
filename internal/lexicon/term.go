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

type CreateTermOptions struct {
	Name string `json:"name"`
	content.StateOption
}

func (o CreateTermOptions) Validate() error {
	var c operation.Checker
	checkName(&c, o.Name)
	o.CheckState(&c)
	return c.Err()
}

// NewCreateTerm creates a term and links it to the words of its name,
// creating any word not seen before.
func NewCreateTerm(opts CreateTermOptions) *content.Create[*entity.Term, CreateTermOptions] {
	return content.NewCreate(TermKind, opts, func(ctx context.Context, tx database.Queryer, o CreateTermOptions) (*entity.Term, error) {
		words, err := operation.Execute[[]*entity.Word](ctx, tx, NewFindCreateWords(FindCreateWordsOptions{
			Create: CreateWordsOptions{Names: lang.Unique(lang.Tokenize(o.Name))},
		}))
		if err != nil {
			return nil, err
		}
		t := &entity.Term{Name: o.Name, Words: words}
		t.Derive()
		return t, nil
	})
}

type CreateTermsOptions struct {
	Names []string `json:"names"`
	content.StateOption
}

func (o CreateTermsOptions) Validate() error {
	var c operation.Checker
	for _, n := range o.Names {
		checkName(&c, n)
	}
	o.CheckState(&c)
	return c.Err()
}

// CreateTerms creates several terms, resolving the words of all of them
// with one FindCreateWords.
type CreateTerms struct {
	operation.Base[CreateTermsOptions]
}

func NewCreateTerms(opts CreateTermsOptions) *CreateTerms {
	return &CreateTerms{Base: operation.Base[CreateTermsOptions]{Opts: opts}}
}

func (op *CreateTerms) Name() string { return "CreateTerms" }

func (op *CreateTerms) Run(ctx context.Context, tx database.Queryer) ([]*entity.Term, error) {
	if err := op.Opts.Validate(); err != nil {
		return nil, err
	}
	tokens := make(map[string][]string, len(op.Opts.Names))
	var all []string
	for _, name := range op.Opts.Names {
		tokens[name] = lang.Unique(lang.Tokenize(name))
		all = append(all, tokens[name]...)
	}
	words, err := operation.Execute[[]*entity.Word](ctx, tx, NewFindCreateWords(FindCreateWordsOptions{
		Create: CreateWordsOptions{Names: lang.Unique(all)},
	}))
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]*entity.Word, len(words))
	for _, w := range words {
		bySlug[w.Slug] = w
	}

	state := TermKind.DefaultState
	if s := op.Opts.ContentState(); s != nil {
		state = *s
	}
	now := time.Now().UTC()
	store := TermKind.Store(tx)
	out := make([]*entity.Term, 0, len(op.Opts.Names))
	for _, name := range op.Opts.Names {
		t := &entity.Term{Name: name}
		t.Derive()
		for _, tok := range tokens[name] {
			if w, ok := bySlug[lang.Slugify(tok)]; ok {
				t.Words = append(t.Words, w)
			}
		}
		t.State = state
		t.CreatedAt = now
		t.CreatedByID = operation.ActorID(ctx)
		if err := store.Insert(ctx, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func NewFindTerm(opts content.FindOptions) *content.FindOne[*entity.Term] {
	return content.NewFindOne(TermKind, opts)
}

func NewFindTerms(opts content.FindOptions) *content.Find[*entity.Term] {
	return content.NewFind(TermKind, opts)
}

type FindCreateTermOptions struct {
	Find   content.FindOptions `json:"find"`
	Create CreateTermOptions   `json:"create"`
}

// FindCreateTerm returns the term with the slug of the given name, creating
// it when missing.
type FindCreateTerm struct {
	operation.Base[FindCreateTermOptions]
}

func NewFindCreateTerm(opts FindCreateTermOptions) *FindCreateTerm {
	return &FindCreateTerm{Base: operation.Base[FindCreateTermOptions]{Opts: opts}}
}

func (op *FindCreateTerm) Name() string { return "FindCreateTerm" }

func (op *FindCreateTerm) Run(ctx context.Context, tx database.Queryer) (*entity.Term, error) {
	find := op.Opts.Find
	find.Where = map[string]any{"slug": lang.Slugify(op.Opts.Create.Name)}
	existing, err := operation.Execute[*entity.Term](ctx, tx, NewFindTerm(find))
	if err != nil || existing != nil {
		return existing, err
	}
	return operation.Execute[*entity.Term](ctx, tx, NewCreateTerm(op.Opts.Create))
}

func NewGetTerm(opts content.GetOptions) *content.Get[*entity.Term] {
	return content.NewGet(TermKind, opts)
}

type UpdateTermOptions struct {
	content.UpdateBase
}

func (o UpdateTermOptions) Validate() error {
	var c operation.Checker
	o.UpdateBase.Check(&c)
	return c.Err()
}

// NewUpdateTerm changes a term's state. Names are fixed once created.
func NewUpdateTerm(opts UpdateTermOptions) *content.Update[*entity.Term, UpdateTermOptions] {
	return content.NewUpdate[*entity.Term, UpdateTermOptions](TermKind, opts, nil)
}
