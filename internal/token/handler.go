package token

import (
	"net/http"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/resource"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/credential"
)

type Handler struct {
	hasher credential.PasswordHasher
	signer *credential.TokenSigner
}

func NewHandler(hasher credential.PasswordHasher, signer *credential.TokenSigner) *Handler {
	return &Handler{hasher: hasher, signer: signer}
}

func (h *Handler) Mount(mux *http.ServeMux, d *resource.Dispatcher) {
	mux.HandleFunc("POST /tokens", d.Handle(h.create, http.StatusCreated, nil))
	mux.HandleFunc("POST /tokens/verify", d.Handle(h.verify, http.StatusOK, user.View))
}

type createRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) create(r *http.Request) (resource.Plan, error) {
	var req createRequest
	if err := resource.DecodeBody(r, &req); err != nil {
		return nil, err
	}
	opts := CreateTokenOptions(req)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return resource.Execute[*Token](NewCreateToken(opts, h.hasher, h.signer)), nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (h *Handler) verify(r *http.Request) (resource.Plan, error) {
	var req verifyRequest
	if err := resource.DecodeBody(r, &req); err != nil {
		return nil, err
	}
	opts := VerifyTokenOptions(req)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return resource.Execute[*entity.User](NewVerifyToken(opts, h.signer)), nil
}
