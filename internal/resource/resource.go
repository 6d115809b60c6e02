// Package resource adapts operations to HTTP. Every request is decoded and
// validated outside any transaction, then planned operations run inside one.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	userentity "github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/utilities"
)

var ErrMalformedBody = errors.New("Request body must be a JSON object.")

// Plan is the transactional half of a request.
type Plan func(ctx context.Context, tx database.Queryer) (any, error)

// Decoder reads and validates a request into a Plan. Decoders never touch
// the database.
type Decoder func(r *http.Request) (Plan, error)

// View strips fields the viewer may not see from a result before encoding.
type View func(viewer *operation.Actor, v any)

// Resource is one collection mounted at /{Name}. A nil verb answers 403.
type Resource struct {
	Name   string
	Create Decoder
	Find   Decoder
	Get    Decoder
	Update Decoder
	View   View
}

// Dispatcher runs decoded plans in a transaction and writes the outcome.
type Dispatcher struct {
	tm *database.TxManager
}

func NewDispatcher(tm *database.TxManager) *Dispatcher {
	return &Dispatcher{tm: tm}
}

// Mount registers the four collection routes of res on mux.
func (d *Dispatcher) Mount(mux *http.ServeMux, res Resource) {
	base := "/" + res.Name
	mux.HandleFunc("POST "+base, d.Handle(res.Create, http.StatusCreated, res.View))
	mux.HandleFunc("GET "+base, d.Handle(res.Find, http.StatusOK, res.View))
	mux.HandleFunc("GET "+base+"/{id}", d.Handle(res.Get, http.StatusOK, res.View))
	mux.HandleFunc("PUT "+base+"/{id}", d.Handle(res.Update, http.StatusOK, res.View))
}

// Handle serves one verb. A nil plan result is reported as not found.
func (d *Dispatcher) Handle(dec Decoder, status int, view View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dec == nil {
			WriteError(w, r, operation.ErrNotSupported)
			return
		}
		plan, err := dec(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		var res any
		err = d.tm.WithTransaction(r.Context(), func(ctx context.Context, tx database.Queryer) error {
			var err error
			res, err = plan(ctx, tx)
			return err
		})
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if isNil(res) {
			WriteError(w, r, operation.ErrNotFound)
			return
		}
		if view != nil {
			view(operation.ActorFrom(r.Context()), res)
		}
		WriteJSON(w, status, res)
	}
}

// Execute adapts a typed operation to a Plan.
func Execute[T any](op operation.Operation[T]) Plan {
	return func(ctx context.Context, tx database.Queryer) (any, error) {
		return operation.Execute(ctx, tx, op)
	}
}

// DecodeBody reads the JSON request body into v.
func DecodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utilities.LoggerFrom(r.Context()).Debugw("invalid payload", "err", err)
		return ErrMalformedBody
	}
	return nil
}

// PathID parses the {id} path segment. Anything unparsable is not found.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, operation.ErrNotFound
	}
	return id, nil
}

// ClearStateUnlessAdmin drops a caller supplied state when the actor is not
// an admin. opts must be a pointer.
func ClearStateUnlessAdmin(ctx context.Context, opts any) {
	if operation.ActorFrom(ctx).IsAdmin() {
		return
	}
	if c, ok := opts.(interface{ ClearState() }); ok {
		c.ClearState()
	}
}

type errorBody struct {
	Error  string                 `json:"error"`
	Fields []operation.FieldError `json:"fields,omitempty"`
}

// WriteError maps err to its status and writes it as JSON. Unexpected errors
// are logged and reported without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr *operation.ValidationError
		invErr *operation.InvariantError
	)
	status := operation.StatusCode(err)
	body := errorBody{Error: err.Error()}
	switch {
	case errors.Is(err, ErrMalformedBody):
		status = http.StatusBadRequest
	case errors.As(err, &valErr):
		body.Fields = valErr.Fields
	case errors.As(err, &invErr):
		body.Error = invErr.Message
	case status == http.StatusInternalServerError:
		utilities.LoggerFrom(r.Context()).Errorw("request failed", "err", err)
		body.Error = "Internal server error."
	}
	WriteJSON(w, status, body)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// HideUserEmail blanks u's email unless the viewer is an admin or u.
func HideUserEmail(viewer *operation.Actor, u *userentity.User) {
	if u == nil || viewer.IsAdmin() || (viewer != nil && viewer.ID == u.ID) {
		return
	}
	u.Email = ""
}
