package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubReader struct {
	query string
	limit int
}

func (s *stubReader) Recent(ctx context.Context, query string, limit int) ([]Entry, error) {
	s.query = query
	s.limit = limit
	return nil, nil
}

func TestRecentAppliesDefaultLimit(t *testing.T) {
	reader := &stubReader{}
	svc := NewService(reader)

	_, err := svc.Recent(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, defaultLimit, reader.limit)
}

func TestRecentCapsLimit(t *testing.T) {
	reader := &stubReader{}
	svc := NewService(reader)

	_, err := svc.Recent(context.Background(), Filter{Limit: 10_000})
	require.NoError(t, err)
	require.Equal(t, maxLimit, reader.limit)

	_, err = svc.Recent(context.Background(), Filter{Limit: 50})
	require.NoError(t, err)
	require.Equal(t, 50, reader.limit)
}

func TestRecentTrimsQuery(t *testing.T) {
	reader := &stubReader{}
	svc := NewService(reader)

	_, err := svc.Recent(context.Background(), Filter{Query: "  role_change  "})
	require.NoError(t, err)
	require.Equal(t, "role_change", reader.query)
}

func TestRecentWithoutRepository(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Recent(context.Background(), Filter{})
	require.Error(t, err)
}
