package token

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/credential"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

// Authenticator turns request credentials into an operation.Actor. Each
// call runs in its own transaction so the lookup is audited even when the
// request that follows fails.
type Authenticator struct {
	tm     *database.TxManager
	hasher credential.PasswordHasher
	signer *credential.TokenSigner
}

func NewAuthenticator(tm *database.TxManager, hasher credential.PasswordHasher, signer *credential.TokenSigner) *Authenticator {
	return &Authenticator{tm: tm, hasher: hasher, signer: signer}
}

func (a *Authenticator) Bearer(ctx context.Context, raw string) (*operation.Actor, error) {
	var u *entity.User
	err := a.tm.WithTransaction(ctx, func(ctx context.Context, tx database.Queryer) error {
		var err error
		u, err = operation.Execute[*entity.User](ctx, tx, NewVerifyToken(VerifyTokenOptions{Token: raw}, a.signer))
		return err
	})
	if err != nil {
		return nil, err
	}
	return actorOf(u), nil
}

func (a *Authenticator) Basic(ctx context.Context, email, password string) (*operation.Actor, error) {
	opts := user.AuthenticateUserOptions{Email: email, Password: password}
	if err := opts.Validate(); err != nil {
		return nil, operation.ErrInvalidCredentials
	}
	var u *entity.User
	err := a.tm.WithTransaction(ctx, func(ctx context.Context, tx database.Queryer) error {
		var err error
		u, err = operation.Execute[*entity.User](ctx, tx, user.NewAuthenticateUser(opts, a.hasher))
		return err
	})
	if err != nil {
		return nil, err
	}
	return actorOf(u), nil
}

func actorOf(u *entity.User) *operation.Actor {
	return &operation.Actor{ID: u.ID, Name: u.Name, Role: string(u.Role)}
}
