package entity

import (
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/lang"
)

// Usage is a context in which a term is used, e.g. a field or discipline.
type Usage struct {
	content.Content
	Name        string        `db:"name" json:"name"`
	Slug        string        `db:"slug" json:"slug"`
	Summary     string        `db:"summary" json:"summary"`
	Connections []*Connection `db:"-" json:"connections,omitempty"`
}

func (u *Usage) Derive() { u.Slug = lang.Slugify(u.Name) }

func (u *Usage) Attach(key string, v any) {
	if key == "connections" {
		u.Connections, _ = v.([]*Connection)
		return
	}
	u.Content.Attach(key, v)
}
