// Package entity defines the dictionary content types.
package entity

import (
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/lang"
)

// Word is a single normalized token shared by terms.
type Word struct {
	content.Content
	Name    string `db:"name" json:"name"`
	Slug    string `db:"slug" json:"slug"`
	Stem    string `db:"stem" json:"stem"`
	Length  int    `db:"length" json:"length"`
	Numeric bool   `db:"numeric" json:"numeric"`
	Acronym bool   `db:"acronym" json:"acronym"`
}

// Derive recomputes every field that follows from Name.
func (w *Word) Derive() {
	w.Slug = lang.Slugify(w.Name)
	w.Stem = lang.Stem(w.Name)
	w.Length = lang.Length(w.Name)
	w.Numeric = lang.IsNumeric(w.Name)
}
