package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/resource"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/credential"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware tags every request with an id, echoed in X-Request-Id,
// and stores a logger carrying it in the request context.
func RequestIDMiddleware(logger *zap.SugaredLogger, ids *utilities.IDGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = ids.Next()
			}
			w.Header().Set("X-Request-Id", id)
			ctx := utilities.WithLogger(r.Context(), logger.With("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware logs each request at debug level with the request logger.
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			utilities.LoggerFrom(r.Context()).Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only makes sense over TLS
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticator resolves request credentials to an actor.
type Authenticator interface {
	Bearer(ctx context.Context, token string) (*operation.Actor, error)
	Basic(ctx context.Context, email, password string) (*operation.Actor, error)
}

// AuthMiddleware attaches the actor named by the Authorization header.
// Requests without a Basic or Bearer credential stay anonymous; bad
// credentials get 401.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			var (
				actor *operation.Actor
				err   error
			)
			scheme, value, _ := strings.Cut(header, " ")
			switch strings.ToLower(scheme) {
			case "bearer":
				actor, err = auth.Bearer(r.Context(), strings.TrimSpace(value))
			case "basic":
				email, password, ok := r.BasicAuth()
				if !ok {
					err = operation.ErrInvalidCredentials
					break
				}
				actor, err = auth.Basic(r.Context(), email, password)
			default:
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				resource.WriteError(w, r, err)
				return
			}

			ctx := operation.WithActor(r.Context(), actor)
			ctx = utilities.WithLogger(ctx, utilities.LoggerFrom(ctx).With("actor_id", actor.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Deps is everything the routes need.
type Deps struct {
	Logger *zap.SugaredLogger
	TM     *database.TxManager
	Hasher credential.PasswordHasher
	Signer *credential.TokenSigner
	IDs    *utilities.IDGenerator
	// Auth defaults to a token.Authenticator over TM.
	Auth Authenticator
}

// RegisterRoutes mounts every resource on a ServeMux and wraps it in the
// middleware chain.
func RegisterRoutes(deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	d := resource.NewDispatcher(deps.TM)
	for _, res := range lexicon.Resources() {
		d.Mount(mux, res)
	}
	user.NewHandler(deps.Hasher).Mount(mux, d)
	token.NewHandler(deps.Hasher, deps.Signer).Mount(mux, d)

	auth := deps.Auth
	if auth == nil {
		auth = token.NewAuthenticator(deps.TM, deps.Hasher, deps.Signer)
	}

	var handler http.Handler = mux
	handler = AuthMiddleware(auth)(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware()(handler)
	handler = RequestIDMiddleware(deps.Logger, deps.IDs)(handler)
	return handler
}
