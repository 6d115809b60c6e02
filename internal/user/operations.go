package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/credential"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/utilities"
)

var ErrInvalidConfirmationToken = &operation.ValidationError{Fields: []operation.FieldError{
	{Field: "token", Message: "Invalid confirmation token."},
}}

func checkState(c *operation.Checker, s *entity.State) {
	if s != nil {
		c.Check(s.Valid(), "state", `State must be "pending", "active", or "deleted".`)
	}
}

func checkName(c *operation.Checker, name string) {
	c.Length("name", name, 1, 255, "Name must be between 1 and 255 characters.")
}

func checkEmail(c *operation.Checker, email string) {
	c.Email("email", email, "Please enter a valid email address.")
	c.MaxLength("email", email, 255)
}

func checkPassword(c *operation.Checker, pw string) {
	c.Length("password", pw, 8, 255, "Password must be between 8 and 255 characters.")
}

// noRows turns a missing row into an empty result.
func noRows(u *entity.User, err error) (*entity.User, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

type CreateUserOptions struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"-"`
	TOS      bool          `json:"tos"`
	State    *entity.State `json:"state,omitempty"`
}

func (o *CreateUserOptions) ClearState() { o.State = nil }

func (o CreateUserOptions) Validate() error {
	var c operation.Checker
	checkName(&c, o.Name)
	checkEmail(&c, o.Email)
	checkPassword(&c, o.Password)
	c.Check(o.TOS, "tos", "You must agree to the Terms of Service.")
	checkState(&c, o.State)
	return c.Err()
}

// CreateUser registers a pending contributor awaiting email confirmation.
type CreateUser struct {
	operation.Base[CreateUserOptions]
	hasher credential.PasswordHasher
}

func NewCreateUser(opts CreateUserOptions, hasher credential.PasswordHasher) *CreateUser {
	return &CreateUser{Base: operation.Base[CreateUserOptions]{Opts: opts}, hasher: hasher}
}

func (op *CreateUser) Name() string { return "CreateUser" }

func (op *CreateUser) Run(ctx context.Context, tx database.Queryer) (*entity.User, error) {
	if err := op.Opts.Validate(); err != nil {
		return nil, err
	}
	hash, err := op.hasher.Hash(op.Opts.Password)
	if err != nil {
		return nil, err
	}
	token := uuid.NewString()
	resetToken := utilities.NewKSUID()
	u := &entity.User{
		State:                  entity.StatePending,
		Role:                   entity.RoleContributor,
		Name:                   op.Opts.Name,
		Email:                  strings.ToLower(strings.TrimSpace(op.Opts.Email)),
		EmailConfirmationToken: &token,
		PasswordHash:           hash,
		PasswordResetToken:     &resetToken,
		CreatedAt:              time.Now().UTC(),
		CreatedByID:            operation.ActorID(ctx),
	}
	if op.Opts.State != nil {
		u.State = *op.Opts.State
	}
	if err := userrepo.NewUserRepo(tx).Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type ConfirmUserEmailOptions struct {
	Token string `json:"token"`
}

func (o ConfirmUserEmailOptions) Validate() error {
	var c operation.Checker
	c.UUID4("token", o.Token, "Invalid confirmation token.")
	return c.Err()
}

// ConfirmUserEmail activates the pending user holding the token. Users who
// are already active are returned unchanged.
type ConfirmUserEmail struct {
	operation.Base[ConfirmUserEmailOptions]
}

func NewConfirmUserEmail(opts ConfirmUserEmailOptions) *ConfirmUserEmail {
	return &ConfirmUserEmail{Base: operation.Base[ConfirmUserEmailOptions]{Opts: opts}}
}

func (op *ConfirmUserEmail) Name() string { return "ConfirmUserEmail" }

func (op *ConfirmUserEmail) Run(ctx context.Context, tx database.Queryer) (*entity.User, error) {
	u, err := operation.Execute[*entity.User](ctx, tx, NewFindUser(FindUserOptions{ConfirmationToken: op.Opts.Token}))
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsDeleted() {
		return nil, ErrInvalidConfirmationToken
	}
	if !u.IsPending() {
		return u, nil
	}

	now := time.Now().UTC()
	u.State = entity.StateActive
	u.EmailConfirmedAt = &now
	u.EmailConfirmationToken = nil
	u.LastUpdatedAt = &now
	u.LastUpdatedByID = operation.ActorID(ctx)
	if err := userrepo.NewUserRepo(tx).Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindUserOptions selects a single user by one of its unique keys.
type FindUserOptions struct {
	Email             string `json:"email,omitempty"`
	ConfirmationToken string `json:"-"`
}

type FindUser struct {
	operation.Base[FindUserOptions]
}

func NewFindUser(opts FindUserOptions) *FindUser {
	return &FindUser{Base: operation.Base[FindUserOptions]{Opts: opts}}
}

func (op *FindUser) Name() string { return "FindUser" }

func (op *FindUser) Run(ctx context.Context, tx database.Queryer) (*entity.User, error) {
	r := userrepo.NewUserRepo(tx)
	switch {
	case op.Opts.Email != "":
		return noRows(r.GetByEmail(ctx, op.Opts.Email))
	case op.Opts.ConfirmationToken != "":
		return noRows(r.GetByConfirmationToken(ctx, op.Opts.ConfirmationToken))
	default:
		return nil, nil
	}
}

type FindUsersOptions struct {
	operation.Paging
}

func (o FindUsersOptions) Validate() error {
	var c operation.Checker
	o.Paging.Check(&c)
	return c.Err()
}

type FindUsers struct {
	operation.Base[FindUsersOptions]
}

func NewFindUsers(opts FindUsersOptions) *FindUsers {
	return &FindUsers{Base: operation.Base[FindUsersOptions]{Opts: opts}}
}

func (op *FindUsers) Name() string { return "FindUsers" }

func (op *FindUsers) Run(ctx context.Context, tx database.Queryer) ([]*entity.User, error) {
	return userrepo.NewUserRepo(tx).List(ctx, op.Opts.Offset(), op.Opts.Limit())
}

type GetUserOptions struct {
	ID int64 `json:"id"`
}

// GetUser returns the user with the given id, or nil when there is none.
type GetUser struct {
	operation.Base[GetUserOptions]
}

func NewGetUser(opts GetUserOptions) *GetUser {
	return &GetUser{Base: operation.Base[GetUserOptions]{Opts: opts}}
}

func (op *GetUser) Name() string { return "GetUser" }

func (op *GetUser) Run(ctx context.Context, tx database.Queryer) (*entity.User, error) {
	return noRows(userrepo.NewUserRepo(tx).Get(ctx, op.Opts.ID))
}

type UpdateUserOptions struct {
	ID       int64         `json:"id"`
	Name     *string       `json:"name,omitempty"`
	Email    *string       `json:"email,omitempty"`
	Password *string       `json:"-"`
	State    *entity.State `json:"state,omitempty"`
}

func (o *UpdateUserOptions) ClearState() { o.State = nil }

func (o UpdateUserOptions) Validate() error {
	var c operation.Checker
	c.Positive("id", o.ID)
	if o.Name != nil {
		checkName(&c, *o.Name)
	}
	if o.Email != nil {
		checkEmail(&c, *o.Email)
	}
	if o.Password != nil {
		checkPassword(&c, *o.Password)
	}
	checkState(&c, o.State)
	return c.Err()
}

// UpdateUser merges the provided fields into the stored user.
type UpdateUser struct {
	operation.Base[UpdateUserOptions]
	hasher credential.PasswordHasher
}

func NewUpdateUser(opts UpdateUserOptions, hasher credential.PasswordHasher) *UpdateUser {
	return &UpdateUser{Base: operation.Base[UpdateUserOptions]{Opts: opts}, hasher: hasher}
}

func (op *UpdateUser) Name() string { return "UpdateUser" }

func (op *UpdateUser) Run(ctx context.Context, tx database.Queryer) (*entity.User, error) {
	if err := op.Opts.Validate(); err != nil {
		return nil, err
	}
	u, err := operation.Execute[*entity.User](ctx, tx, NewGetUser(GetUserOptions{ID: op.Opts.ID}))
	if err != nil || u == nil {
		return nil, err
	}

	if op.Opts.Name != nil {
		u.Name = *op.Opts.Name
	}
	if op.Opts.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*op.Opts.Email))
	}
	if op.Opts.Password != nil {
		hash, err := op.hasher.Hash(*op.Opts.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if op.Opts.State != nil {
		u.State = *op.Opts.State
	}
	now := time.Now().UTC()
	if op.Opts.Password != nil {
		// a changed password invalidates any outstanding reset token
		resetToken := utilities.NewKSUID()
		u.PasswordResetToken = &resetToken
		u.PasswordResetAt = &now
	}
	u.LastUpdatedAt = &now
	u.LastUpdatedByID = operation.ActorID(ctx)

	if err := userrepo.NewUserRepo(tx).Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type AuthenticateUserOptions struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

func (o AuthenticateUserOptions) Validate() error {
	var c operation.Checker
	checkEmail(&c, o.Email)
	checkPassword(&c, o.Password)
	return c.Err()
}

// AuthenticateUser checks an email and password pair. Unknown, deleted and
// wrong-password accounts fail identically and spend the same hashing work.
type AuthenticateUser struct {
	operation.Base[AuthenticateUserOptions]
	hasher credential.PasswordHasher
}

func NewAuthenticateUser(opts AuthenticateUserOptions, hasher credential.PasswordHasher) *AuthenticateUser {
	return &AuthenticateUser{Base: operation.Base[AuthenticateUserOptions]{Opts: opts}, hasher: hasher}
}

func (op *AuthenticateUser) Name() string { return "AuthenticateUser" }

func (op *AuthenticateUser) Run(ctx context.Context, tx database.Queryer) (*entity.User, error) {
	u, err := operation.Execute[*entity.User](ctx, tx, NewFindUser(FindUserOptions{Email: op.Opts.Email}))
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsDeleted() {
		op.hasher.Burn(op.Opts.Password)
		return nil, operation.ErrInvalidCredentials
	}
	if u.IsPending() {
		return nil, operation.ErrPendingConfirmation
	}
	if !op.hasher.Verify(u.PasswordHash, op.Opts.Password) {
		return nil, operation.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := userrepo.NewUserRepo(tx).MarkAuthenticated(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastAuthenticatedAt = &now
	return u, nil
}
