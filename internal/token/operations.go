// Package token issues and verifies the bearer tokens clients use after
// signing in.
package token

import (
	"context"
	"errors"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/credential"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/utilities"
)

type Token struct {
	Token string `json:"token"`
}

type CreateTokenOptions struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

func (o CreateTokenOptions) Validate() error {
	return user.AuthenticateUserOptions{Email: o.Email, Password: o.Password}.Validate()
}

// CreateToken signs a token for the user the credentials belong to.
type CreateToken struct {
	operation.Base[CreateTokenOptions]
	hasher credential.PasswordHasher
	signer *credential.TokenSigner
}

func NewCreateToken(opts CreateTokenOptions, hasher credential.PasswordHasher, signer *credential.TokenSigner) *CreateToken {
	return &CreateToken{Base: operation.Base[CreateTokenOptions]{Opts: opts}, hasher: hasher, signer: signer}
}

func (op *CreateToken) Name() string { return "CreateToken" }

func (op *CreateToken) Run(ctx context.Context, tx database.Queryer) (*Token, error) {
	u, err := operation.Execute[*entity.User](ctx, tx, user.NewAuthenticateUser(user.AuthenticateUserOptions{
		Email:    op.Opts.Email,
		Password: op.Opts.Password,
	}, op.hasher))
	if err != nil {
		return nil, err
	}
	signed, err := op.signer.Sign(credential.TokenUser{ID: u.ID, Name: u.Name})
	if err != nil {
		return nil, err
	}
	return &Token{Token: signed}, nil
}

type VerifyTokenOptions struct {
	Token string `json:"-"`
}

func (o VerifyTokenOptions) Validate() error {
	var c operation.Checker
	c.Required("token", o.Token)
	return c.Err()
}

// VerifyToken resolves a token to the current state of its user. Only
// active users pass.
type VerifyToken struct {
	operation.Base[VerifyTokenOptions]
	signer *credential.TokenSigner
}

func NewVerifyToken(opts VerifyTokenOptions, signer *credential.TokenSigner) *VerifyToken {
	return &VerifyToken{Base: operation.Base[VerifyTokenOptions]{Opts: opts}, signer: signer}
}

func (op *VerifyToken) Name() string { return "VerifyToken" }

func (op *VerifyToken) Run(ctx context.Context, tx database.Queryer) (*entity.User, error) {
	claims, err := op.signer.Verify(op.Opts.Token)
	switch {
	case errors.Is(err, credential.ErrTokenExpired):
		return nil, operation.ErrTokenExpired
	case err != nil:
		utilities.LoggerFrom(ctx).Debugw("token rejected", "err", err)
		return nil, operation.ErrTokenInvalid
	}

	u, err := operation.Execute[*entity.User](ctx, tx, user.NewGetUser(user.GetUserOptions{ID: claims.User.ID}))
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsDeleted() {
		return nil, operation.ErrTokenUserNotFound
	}
	if u.IsPending() {
		return nil, operation.ErrPendingConfirmation
	}
	return u, nil
}
