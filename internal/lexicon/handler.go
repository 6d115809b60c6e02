package lexicon

import (
	"net/http"
	"strconv"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/resource"
)

// Resources lists the dictionary collections served over HTTP.
func Resources() []resource.Resource {
	return []resource.Resource{
		{
			Name:   "words",
			Create: createDecoder[CreateWordOptions, *entity.Word](NewCreateWord),
			Find:   findDecoder[*entity.Word](NewFindWords),
			Get:    getDecoder[*entity.Word](NewGetWord),
			Update: updateDecoder[UpdateWordOptions, *entity.Word](NewUpdateWord),
			View:   View,
		},
		{
			Name:   "terms",
			Create: createDecoder[CreateTermOptions, *entity.Term](NewCreateTerm),
			Find:   findDecoder[*entity.Term](NewFindTerms),
			Get:    getDecoder[*entity.Term](NewGetTerm),
			Update: updateDecoder[UpdateTermOptions, *entity.Term](NewUpdateTerm),
			View:   View,
		},
		{
			Name:   "usages",
			Create: createDecoder[CreateUsageOptions, *entity.Usage](NewCreateUsage),
			Find:   findDecoder[*entity.Usage](NewFindUsages),
			Get:    getDecoder[*entity.Usage](NewGetUsage),
			Update: updateDecoder[UpdateUsageOptions, *entity.Usage](NewUpdateUsage),
			View:   View,
		},
		{
			Name:   "connections",
			Create: createDecoder[CreateConnectionOptions, *entity.Connection](NewCreateConnection),
			Find:   findDecoder[*entity.Connection](NewFindConnections),
			Get:    getDecoder[*entity.Connection](NewGetConnection),
			Update: updateDecoder[UpdateConnectionOptions, *entity.Connection](NewUpdateConnection),
			View:   View,
		},
		{
			Name:   "inquiries",
			Create: createDecoder[CreateInquiryOptions, *entity.Inquiry](NewCreateInquiry),
			Find:   findDecoder[*entity.Inquiry](NewFindInquiries),
			Get:    getDecoder[*entity.Inquiry](NewGetInquiry),
			View:   View,
		},
	}
}

func createDecoder[O content.Options, C content.Entity, P operation.Operation[C]](newOp func(O) P) resource.Decoder {
	return func(r *http.Request) (resource.Plan, error) {
		var opts O
		if err := resource.DecodeBody(r, &opts); err != nil {
			return nil, err
		}
		resource.ClearStateUnlessAdmin(r.Context(), &opts)
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		return resource.Execute[C](newOp(opts)), nil
	}
}

// updateDecoder takes the target id from the path, never from the body.
func updateDecoder[O any, C content.Entity, P operation.Operation[C], PO interface {
	*O
	content.UpdateOptions
	SetContentID(int64)
}](newOp func(O) P) resource.Decoder {
	return func(r *http.Request) (resource.Plan, error) {
		id, err := resource.PathID(r)
		if err != nil {
			return nil, err
		}
		var opts O
		if err := resource.DecodeBody(r, &opts); err != nil {
			return nil, err
		}
		PO(&opts).SetContentID(id)
		resource.ClearStateUnlessAdmin(r.Context(), &opts)
		if err := PO(&opts).Validate(); err != nil {
			return nil, err
		}
		return resource.Execute[C](newOp(opts)), nil
	}
}

func findDecoder[C content.Entity, P operation.Operation[[]C]](newOp func(content.FindOptions) P) resource.Decoder {
	return func(r *http.Request) (resource.Plan, error) {
		q := r.URL.Query()
		var c operation.Checker
		opts := content.FindOptions{
			Search:    q.Get("search"),
			OrderBy:   q.Get("orderBy"),
			Desc:      q.Get("desc") == "true",
			Relations: content.SplitRelations(q.Get("relations")),
		}
		opts.Skip = queryInt(&c, q.Get("skip"), "skip")
		opts.Take = queryInt(&c, q.Get("take"), "take")
		if err := c.Err(); err != nil {
			return nil, err
		}
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		return resource.Execute[[]C](newOp(opts)), nil
	}
}

func getDecoder[C content.Entity, P operation.Operation[C]](newOp func(content.GetOptions) P) resource.Decoder {
	return func(r *http.Request) (resource.Plan, error) {
		id, err := resource.PathID(r)
		if err != nil {
			return nil, err
		}
		return resource.Execute[C](newOp(content.GetOptions{
			ID:        id,
			Relations: content.SplitRelations(r.URL.Query().Get("relations")),
		})), nil
	}
}

func queryInt(c *operation.Checker, raw, field string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	c.Check(err == nil, field, field+" must be a whole number.")
	return n
}

// View hides emails the viewer may not see anywhere in a populated result:
// on every creator and last editor at any depth, and on inquiries for
// non-admins.
func View(viewer *operation.Actor, v any) {
	seen := map[any]bool{}
	var walk func(v any)
	meta := func(m *content.Content) {
		resource.HideUserEmail(viewer, m.CreatedBy)
		resource.HideUserEmail(viewer, m.LastUpdatedBy)
	}
	// first reports whether p is a non-nil pointer not visited yet.
	first := func(p any, isNil bool) bool {
		if isNil || seen[p] {
			return false
		}
		seen[p] = true
		return true
	}
	walk = func(v any) {
		switch t := v.(type) {
		case *entity.Word:
			if first(t, t == nil) {
				meta(t.Meta())
			}
		case *entity.Term:
			if !first(t, t == nil) {
				return
			}
			meta(t.Meta())
			for _, w := range t.Words {
				walk(w)
			}
			for _, c := range t.Connections {
				walk(c)
			}
		case *entity.Usage:
			if !first(t, t == nil) {
				return
			}
			meta(t.Meta())
			for _, c := range t.Connections {
				walk(c)
			}
		case *entity.Connection:
			if !first(t, t == nil) {
				return
			}
			meta(t.Meta())
			walk(t.Term)
			walk(t.Usage)
		case *entity.Inquiry:
			if !first(t, t == nil) {
				return
			}
			meta(t.Meta())
			if !viewer.IsAdmin() {
				t.Email = ""
			}
		case []*entity.Word:
			for _, e := range t {
				walk(e)
			}
		case []*entity.Term:
			for _, e := range t {
				walk(e)
			}
		case []*entity.Usage:
			for _, e := range t {
				walk(e)
			}
		case []*entity.Connection:
			for _, e := range t {
				walk(e)
			}
		case []*entity.Inquiry:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(v)
}
