package audit

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultLimit = 200
	maxLimit     = 500
)

// ReaderRepository provides query access to stored entries.
type ReaderRepository interface {
	Recent(ctx context.Context, query string, limit int) ([]Entry, error)
}

// Service coordinates audit trail reads.
type Service struct {
	repo ReaderRepository
}

// NewService builds Service instance.
func NewService(repo ReaderRepository) *Service {
	return &Service{repo: repo}
}

// Recent returns the newest entries first, capped at the configured limit.
func (s *Service) Recent(ctx context.Context, filter Filter) ([]Entry, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.repo.Recent(ctx, strings.TrimSpace(filter.Query), limit)
}
