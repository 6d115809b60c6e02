package entity

import "github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"

// Connection links a term to a usage.
type Connection struct {
	content.Content
	TermID  int64  `db:"term_id" json:"termId"`
	UsageID int64  `db:"usage_id" json:"usageId"`
	Weight  int    `db:"weight" json:"weight"`
	Term    *Term  `db:"-" json:"term,omitempty"`
	Usage   *Usage `db:"-" json:"usage,omitempty"`
}

func (c *Connection) Attach(key string, v any) {
	switch key {
	case "term":
		if t, ok := v.(*Term); ok && t != nil && t.ID == c.TermID {
			c.Term = t
		}
	case "usage":
		if u, ok := v.(*Usage); ok && u != nil && u.ID == c.UsageID {
			c.Usage = u
		}
	default:
		c.Content.Attach(key, v)
	}
}
