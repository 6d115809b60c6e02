package entity

import (
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/lang"
)

type Term struct {
	content.Content
	Name        string        `db:"name" json:"name"`
	Slug        string        `db:"slug" json:"slug"`
	Words       []*Word       `db:"-" json:"words,omitempty"`
	Connections []*Connection `db:"-" json:"connections,omitempty"`
}

func (t *Term) Derive() { t.Slug = lang.Slugify(t.Name) }

func (t *Term) Attach(key string, v any) {
	switch key {
	case "words":
		t.Words, _ = v.([]*Word)
	case "connections":
		t.Connections, _ = v.([]*Connection)
	default:
		t.Content.Attach(key, v)
	}
}
