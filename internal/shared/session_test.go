package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "rhino_session", time.Hour, false)
}

func TestLoadWithoutCookieCreatesNewSession(t *testing.T) {
	sm := newTestManager(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), r)
	require.NoError(t, err)
	require.Empty(t, sess.UserID())
	require.Empty(t, sess.ID)
}

func TestCommitRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("user-1", "a@example.com")

	w := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, w, sess))
	require.NotEmpty(t, sess.ID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "rhino_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, r)
	require.NoError(t, err)
	require.Equal(t, "user-1", loaded.UserID())
	require.Equal(t, "a@example.com", loaded.Email())
}

func TestCommitCleanSessionWritesNothing(t *testing.T) {
	sm := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), w, sess))
	require.Empty(t, w.Result().Cookies())
}

func TestDestroyClearsCookieAndState(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("user-1", "a@example.com")
	w := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, w, sess))
	cookie := w.Result().Cookies()[0]

	sm.Destroy(sess)
	w2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, w2, sess))
	cleared := w2.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Negative(t, cleared[0].MaxAge)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	loaded, err := sm.Load(ctx, r)
	require.NoError(t, err)
	require.Empty(t, loaded.UserID())
}
