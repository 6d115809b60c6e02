package user

import (
	"net/http"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/resource"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/credential"
)

// Handler exposes the account endpoints: signup, profile reads and edits,
// and email confirmation. Listing users is not offered.
type Handler struct {
	hasher credential.PasswordHasher
}

func NewHandler(hasher credential.PasswordHasher) *Handler {
	return &Handler{hasher: hasher}
}

func (h *Handler) Resource() resource.Resource {
	return resource.Resource{
		Name:   "users",
		Create: h.signup,
		Get:    h.get,
		Update: h.update,
		View:   View,
	}
}

// Mount registers the collection routes plus the confirmation link.
func (h *Handler) Mount(mux *http.ServeMux, d *resource.Dispatcher) {
	d.Mount(mux, h.Resource())
	mux.HandleFunc("GET /users/actions/confirm/email/{token}", d.Handle(h.confirmEmail, http.StatusOK, View))
}

// SignupRequest carries the password, which the operation options never
// serialize.
type SignupRequest struct {
	CreateUserOptions
	Password string `json:"password"`
}

func (h *Handler) signup(r *http.Request) (resource.Plan, error) {
	if operation.ActorFrom(r.Context()) != nil {
		return nil, operation.ErrForbidden
	}
	var req SignupRequest
	if err := resource.DecodeBody(r, &req); err != nil {
		return nil, err
	}
	opts := req.CreateUserOptions
	opts.Password = req.Password
	resource.ClearStateUnlessAdmin(r.Context(), &opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return resource.Execute[*entity.User](NewCreateUser(opts, h.hasher)), nil
}

func (h *Handler) get(r *http.Request) (resource.Plan, error) {
	id, err := resource.PathID(r)
	if err != nil {
		return nil, err
	}
	return resource.Execute[*entity.User](NewGetUser(GetUserOptions{ID: id})), nil
}

// UpdateRequest carries the new password alongside the serialized options.
type UpdateRequest struct {
	UpdateUserOptions
	Password *string `json:"password,omitempty"`
}

// update lets users edit themselves; admins may edit anyone.
func (h *Handler) update(r *http.Request) (resource.Plan, error) {
	id, err := resource.PathID(r)
	if err != nil {
		return nil, err
	}
	actor := operation.ActorFrom(r.Context())
	switch {
	case actor == nil:
		return nil, operation.ErrAuthRequired
	case actor.ID != id && !actor.IsAdmin():
		return nil, operation.ErrForbidden
	}
	var req UpdateRequest
	if err := resource.DecodeBody(r, &req); err != nil {
		return nil, err
	}
	opts := req.UpdateUserOptions
	opts.ID = id
	opts.Password = req.Password
	resource.ClearStateUnlessAdmin(r.Context(), &opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return resource.Execute[*entity.User](NewUpdateUser(opts, h.hasher)), nil
}

func (h *Handler) confirmEmail(r *http.Request) (resource.Plan, error) {
	opts := ConfirmUserEmailOptions{Token: r.PathValue("token")}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return resource.Execute[*entity.User](NewConfirmUserEmail(opts)), nil
}

// View hides a user's email from everyone but that user and admins.
func View(viewer *operation.Actor, v any) {
	switch t := v.(type) {
	case *entity.User:
		resource.HideUserEmail(viewer, t)
	case []*entity.User:
		for _, u := range t {
			resource.HideUserEmail(viewer, u)
		}
	}
}
