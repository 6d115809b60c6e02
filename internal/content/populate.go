package content

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user"
	userentity "github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

// Populater resolves one named relation of e. relations holds the dotted
// sub-paths requested beneath it. A nil result means there is no value.
type Populater[C Entity] func(ctx context.Context, tx database.Queryer, e C, relations []string) (any, error)

type Populaters[C Entity] map[string]Populater[C]

// Populate resolves every requested top-level relation that has a populater.
// Branches run concurrently; unknown names are ignored.
func Populate[C Entity](ctx context.Context, tx database.Queryer, e C, pops Populaters[C], relations []string) error {
	paths := ExpandPaths(relations)
	keys := make([]string, 0, len(paths))
	for key := range paths {
		if _, ok := pops[key]; ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	results := make([]any, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		fn := pops[key]
		sub := CollapsePaths(paths[key])
		g.Go(func() error {
			v, err := fn(gctx, tx, e, sub)
			results[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, key := range keys {
		if results[i] != nil {
			e.Attach(key, results[i])
		}
	}
	return nil
}

// PopulateAll runs Populate for each entity in turn.
func PopulateAll[C Entity](ctx context.Context, tx database.Queryer, es []C, pops Populaters[C], relations []string) error {
	if len(relations) == 0 {
		return nil
	}
	for _, e := range es {
		if err := Populate(ctx, tx, e, pops, relations); err != nil {
			return err
		}
	}
	return nil
}

// UserPopulater resolves the user referenced by the foreign key fk picks out.
func UserPopulater[C Entity](fk func(*Content) *int64) Populater[C] {
	return func(ctx context.Context, tx database.Queryer, e C, _ []string) (any, error) {
		id := fk(e.Meta())
		if id == nil {
			return nil, nil
		}
		u, err := operation.Execute[*userentity.User](ctx, tx, user.NewGetUser(user.GetUserOptions{ID: *id}))
		if err != nil || u == nil {
			return nil, err
		}
		return u, nil
	}
}

// DefaultPopulaters returns the createdBy and lastUpdatedBy populaters shared
// by every kind, plus extra.
func DefaultPopulaters[C Entity](extra Populaters[C]) Populaters[C] {
	pops := Populaters[C]{
		"createdBy":     UserPopulater[C](func(c *Content) *int64 { return c.CreatedByID }),
		"lastUpdatedBy": UserPopulater[C](func(c *Content) *int64 { return c.LastUpdatedByID }),
	}
	for k, v := range extra {
		pops[k] = v
	}
	return pops
}
