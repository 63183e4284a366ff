package rbac

import (
	"log/slog"
	"net/http"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

// DecisionObserver counts authorization decisions; satisfied by
// observability.Metrics.
type DecisionObserver interface {
	ObserveDecision(allowed bool)
}

// Middleware wires authorization helpers for HTTP handlers. Authentication
// failures surface before any rbac logic runs.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
	Observer DecisionObserver
}

// RequireAuthenticated ensures the request carries a principal.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.PrincipalFromContext(r.Context()); !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission ensures the current principal holds the given
// app/action capability, resolved through the engine.
func (m Middleware) RequirePermission(app catalog.App, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			allowed, err := m.Resolver.HasPermission(r.Context(), principal.UserID, app, action, "")
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("require permission", slog.String("app", string(app)), slog.String("action", action), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if m.Observer != nil {
				m.Observer.ObserveDecision(allowed)
			}
			if !allowed {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireMinLevel gates endpoints that map to a hierarchy rank rather than
// a single permission.
func (m Middleware) RequireMinLevel(minLevel int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			level, err := m.Resolver.Level(r.Context(), principal.UserID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("require min level", slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			allowed := level >= minLevel
			if m.Observer != nil {
				m.Observer.ObserveDecision(allowed)
			}
			if !allowed {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
