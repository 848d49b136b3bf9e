package compute

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedService memoizes successful results by request.
type CachedService struct {
	next  Service
	cache *lru.Cache[Request, string]
}

// Cached wraps next with an LRU cache holding up to size results. Errors are
// never cached.
func Cached(next Service, size int) (*CachedService, error) {
	cache, err := lru.New[Request, string](size)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &CachedService{next: next, cache: cache}, nil
}

func (s *CachedService) Compute(ctx context.Context, req Request) (string, error) {
	if text, ok := s.cache.Get(req); ok {
		return text, nil
	}
	text, err := s.next.Compute(ctx, req)
	if err != nil {
		return "", err
	}
	s.cache.Add(req, text)
	return text, nil
}

// Len returns the number of cached results.
func (s *CachedService) Len() int { return s.cache.Len() }
