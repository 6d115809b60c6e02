package entity

import "github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"

// Inquiry is a message left through the public contact form.
type Inquiry struct {
	content.Content
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email,omitempty"`
	Message string `db:"message" json:"message"`
}
