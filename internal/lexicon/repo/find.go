// Package repo holds the Postgres access for dictionary content.
package repo

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

// table describes what a content table lets callers filter and sort on.
type table struct {
	name    string
	columns string
	// filters maps a where key to its column, or to an expression with a
	// single %s placeholder.
	filters map[string]string
	orders  map[string]string
	search  string
}

func (t table) selectByID() string {
	return `SELECT ` + t.columns + ` FROM ` + t.name + ` WHERE id=$1`
}

// buildFind renders opts into a SELECT with positional arguments.
func (t table) buildFind(opts content.FindOptions) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	keys := make([]string, 0, len(opts.Where))
	for k := range opts.Where {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		expr, ok := t.filters[k]
		if !ok {
			return "", nil, &operation.ValidationError{Fields: []operation.FieldError{
				{Field: "where", Message: fmt.Sprintf("Cannot filter by %q.", k)},
			}}
		}
		v := opts.Where[k]
		isList := v != nil && reflect.TypeOf(v).Kind() == reflect.Slice
		var ph string
		if isList {
			ph = next(pq.Array(v))
		} else {
			ph = next(v)
		}
		switch {
		case strings.Contains(expr, "%s"):
			conds = append(conds, fmt.Sprintf(expr, ph))
		case isList:
			conds = append(conds, expr+" = ANY("+ph+")")
		default:
			conds = append(conds, expr+" = "+ph)
		}
	}

	if s := sanitizeSearch(opts.Search); s != "" && t.search != "" {
		conds = append(conds, t.search+" ILIKE "+next("%"+s+"%"))
	}

	q := `SELECT ` + t.columns + ` FROM ` + t.name
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}

	order := "id"
	if opts.OrderBy != "" {
		col, ok := t.orders[opts.OrderBy]
		if !ok {
			return "", nil, &operation.ValidationError{Fields: []operation.FieldError{
				{Field: "orderBy", Message: fmt.Sprintf("Cannot order by %q.", opts.OrderBy)},
			}}
		}
		order = col
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}
	q += fmt.Sprintf(` ORDER BY %s %s, id %s OFFSET %s LIMIT %s`, order, dir, dir, next(opts.Offset()), next(opts.Limit()))
	return q, args, nil
}

// sanitizeSearch drops LIKE wildcards from user input.
func sanitizeSearch(s string) string {
	return strings.TrimSpace(strings.NewReplacer("%", "", "_", "", `\`, "").Replace(s))
}

func get[T any](ctx context.Context, db database.Queryer, t table, id int64) (*T, error) {
	var v T
	if err := db.GetContext(ctx, &v, t.selectByID(), id); err != nil {
		return nil, err
	}
	return &v, nil
}

func find[T any](ctx context.Context, db database.Queryer, t table, opts content.FindOptions) ([]*T, error) {
	q, args, err := t.buildFind(opts)
	if err != nil {
		return nil, err
	}
	out := []*T{}
	if err := db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

const contentColumns = `id, state, created_at, created_by_id, last_updated_at, last_updated_by_id`

// contentDDL is the column block every content table starts with.
const contentDDL = `
  id BIGSERIAL PRIMARY KEY,
  state TEXT NOT NULL DEFAULT 'draft',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  created_by_id BIGINT REFERENCES users(id),
  last_updated_at TIMESTAMPTZ,
  last_updated_by_id BIGINT REFERENCES users(id),`

var contentOrders = map[string]string{"id": "id", "createdAt": "created_at", "lastUpdatedAt": "last_updated_at"}

func orders(extra map[string]string) map[string]string {
	out := make(map[string]string, len(contentOrders)+len(extra))
	for k, v := range contentOrders {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
