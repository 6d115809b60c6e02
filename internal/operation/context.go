package operation

import "context"

// Actor is the authenticated caller attached to a request.
type Actor struct {
	ID   int64
	Name string
	Role string
}

const RoleAdmin = "admin"

func (a *Actor) IsAdmin() bool { return a != nil && a.Role == RoleAdmin }

type actorKey struct{}

// WithActor returns ctx carrying the acting user.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the acting user, or nil for anonymous calls.
func ActorFrom(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey{}).(*Actor)
	return a
}

// ActorID returns a pointer to the acting user's id, nil when anonymous.
func ActorID(ctx context.Context) *int64 {
	a := ActorFrom(ctx)
	if a == nil {
		return nil
	}
	id := a.ID
	return &id
}
