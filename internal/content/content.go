// Package content holds the pieces shared by every stateful dictionary
// entity: the common columns, the relation populater engine and the generic
// Create / Find / Get / Update operations.
package content

import (
	"time"

	userentity "github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
)

type State string

const (
	StateDraft     State = "draft"
	StatePublished State = "published"
	StateDeleted   State = "deleted"
)

func (s State) Valid() bool {
	return s == StateDraft || s == StatePublished || s == StateDeleted
}

// Content is embedded by every entity. CreatedBy and LastUpdatedBy are only
// set by the populater engine and always agree with their scalar ids.
type Content struct {
	ID              int64            `db:"id" json:"id"`
	State           State            `db:"state" json:"state"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	CreatedByID     *int64           `db:"created_by_id" json:"createdById"`
	CreatedBy       *userentity.User `db:"-" json:"createdBy,omitempty"`
	LastUpdatedAt   *time.Time       `db:"last_updated_at" json:"lastUpdatedAt"`
	LastUpdatedByID *int64           `db:"last_updated_by_id" json:"lastUpdatedById"`
	LastUpdatedBy   *userentity.User `db:"-" json:"lastUpdatedBy,omitempty"`
}

func (c *Content) Meta() *Content { return c }

func (c *Content) IsDraft() bool     { return c.State == StateDraft }
func (c *Content) IsPublished() bool { return c.State == StatePublished }
func (c *Content) IsDeleted() bool   { return c.State == StateDeleted }

// Attach stores a populated relation. Entities with their own relations
// handle those keys and defer to this for the rest.
func (c *Content) Attach(key string, v any) {
	u, ok := v.(*userentity.User)
	if !ok || u == nil {
		return
	}
	switch key {
	case "createdBy":
		if c.CreatedByID != nil && *c.CreatedByID == u.ID {
			c.CreatedBy = u
		}
	case "lastUpdatedBy":
		if c.LastUpdatedByID != nil && *c.LastUpdatedByID == u.ID {
			c.LastUpdatedBy = u
		}
	}
}

// Entity is satisfied by pointers to structs embedding Content. The zero
// value (nil) means "not found".
type Entity interface {
	comparable
	Meta() *Content
	Attach(key string, v any)
}
