package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

type countingObserver struct {
	allow, deny int
}

func (c *countingObserver) ObserveDecision(allowed bool) {
	if allowed {
		c.allow++
	} else {
		c.deny++
	}
}

func requestAs(userID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != "" {
		ctx := shared.ContextWithPrincipal(r.Context(), shared.Principal{UserID: userID})
		r = r.WithContext(ctx)
	}
	return r
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthenticated(t *testing.T) {
	m := Middleware{}
	handler := m.RequireAuthenticated(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs(""))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-1"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission(t *testing.T) {
	snap := testSnapshot(t)
	store := &stubStore{roles: map[string]string{
		"user-admin":  "role-admin",
		"user-editor": "role-editor",
	}}
	obs := &countingObserver{}
	m := Middleware{Resolver: NewResolver(snap, store, nil, nil), Observer: obs}
	handler := m.RequirePermission(catalog.AppAccess, "manage_users")(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs(""))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-editor"))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-admin"))
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, 1, obs.allow)
	require.Equal(t, 1, obs.deny)
}

func TestRequirePermissionSuperBypasses(t *testing.T) {
	snap := testSnapshot(t)
	store := &stubStore{roles: map[string]string{"user-root": "role-super"}}
	m := Middleware{Resolver: NewResolver(snap, store, nil, nil)}

	// Gate on a capability no catalog row describes; the super role still
	// passes.
	handler := m.RequirePermission(catalog.App("warehouse"), "demolish")(okHandler())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-root"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireMinLevel(t *testing.T) {
	snap := testSnapshot(t)
	store := &stubStore{roles: map[string]string{
		"user-admin":  "role-admin",
		"user-editor": "role-editor",
	}}
	m := Middleware{Resolver: NewResolver(snap, store, nil, nil)}
	handler := m.RequireMinLevel(80)(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-editor"))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-admin"))
	require.Equal(t, http.StatusOK, w.Code)
}
