package entity

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
)

type State string

const (
	StatePending State = "pending"
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

func (s State) Valid() bool {
	return s == StatePending || s == StateActive || s == StateDeleted
}

// User represents an account row in the `users` table. The password hash and
// confirmation token never leave the process.
type User struct {
	ID                     int64      `db:"id" json:"id"`
	State                  State      `db:"state" json:"state"`
	Role                   Role       `db:"role" json:"role"`
	Name                   string     `db:"name" json:"name"`
	Email                  string     `db:"email" json:"email,omitempty"`
	EmailConfirmedAt       *time.Time `db:"email_confirmed_at" json:"emailConfirmedAt"`
	EmailConfirmationToken *string    `db:"email_confirmation_token" json:"-"`
	PasswordHash           string     `db:"password_hash" json:"-"`
	PasswordResetAt        *time.Time `db:"password_reset_at" json:"-"`
	PasswordResetToken     *string    `db:"password_reset_token" json:"-"`
	LastAuthenticatedAt    *time.Time `db:"last_authenticated_at" json:"lastAuthenticatedAt"`
	CreatedAt              time.Time  `db:"created_at" json:"createdAt"`
	CreatedByID            *int64     `db:"created_by_id" json:"createdById"`
	LastUpdatedAt          *time.Time `db:"last_updated_at" json:"lastUpdatedAt"`
	LastUpdatedByID        *int64     `db:"last_updated_by_id" json:"lastUpdatedById"`
}

func (u *User) IsPending() bool { return u.State == StatePending }
func (u *User) IsActive() bool  { return u.State == StateActive }
func (u *User) IsDeleted() bool { return u.State == StateDeleted }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
