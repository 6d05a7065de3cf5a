package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/backend"
	"github.com/rockman-logistics/staffdesk/pkg/apperror"
	"golang.org/x/sync/singleflight"
)

// CatalogService serves goods categories from a short-lived cache of the
// backend's catalog
type CatalogService struct {
	backend Backend
	guard   *SessionGuard
	ttl     time.Duration
	now     func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	categories []entity.GoodsCategory
	byID       map[int64]entity.GoodsCategory
	fetchedAt  time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(backend Backend, guard *SessionGuard, ttl time.Duration) *CatalogService {
	return &CatalogService{
		backend: backend,
		guard:   guard,
		ttl:     ttl,
		now:     time.Now,
	}
}

// List returns all active categories
func (s *CatalogService) List(ctx context.Context, sess *StaffSession) ([]entity.GoodsCategory, error) {
	if categories, ok := s.cached(); ok {
		return categories, nil
	}
	if err := s.refresh(ctx, sess); err != nil {
		return nil, err
	}
	categories, _ := s.cached()
	return categories, nil
}

// Get returns the category with id. An unknown id refreshes the catalog once
// before it is reported missing.
func (s *CatalogService) Get(ctx context.Context, sess *StaffSession, id int64) (*entity.GoodsCategory, error) {
	if _, ok := s.cached(); ok {
		if c, found := s.lookup(id); found {
			return c, nil
		}
	}
	if err := s.refresh(ctx, sess); err != nil {
		return nil, err
	}
	if c, found := s.lookup(id); found {
		return c, nil
	}
	return nil, apperror.NewNotFoundError("Category")
}

// Invalidate drops the cache.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

func (s *CatalogService) cached() ([]entity.GoodsCategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchedAt.IsZero() || s.now().Sub(s.fetchedAt) > s.ttl {
		return nil, false
	}
	out := make([]entity.GoodsCategory, len(s.categories))
	copy(out, s.categories)
	return out, true
}

func (s *CatalogService) lookup(id int64) (*entity.GoodsCategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &c, true
}

// refresh loads the catalog once for concurrent callers. A caller that joined
// someone else's flight and got back a token or context failure fetches again
// with its own token, so only the session whose token was rejected is ended.
func (s *CatalogService) refresh(ctx context.Context, sess *StaffSession) error {
	led := false
	_, err, _ := s.group.Do("categories", func() (any, error) {
		led = true
		return nil, s.fetch(ctx, sess.Token)
	})
	if err != nil && !led && borrowedFailure(err) {
		err = s.fetch(ctx, sess.Token)
	}
	return s.guard.Fail(ctx, sess, err, "Error loading categories. Please try again.")
}

func (s *CatalogService) fetch(ctx context.Context, token string) error {
	categories, err := s.backend.ListCategories(ctx, token)
	if err != nil {
		return err
	}

	byID := make(map[int64]entity.GoodsCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	s.mu.Lock()
	s.categories = categories
	s.byID = byID
	s.fetchedAt = s.now()
	s.mu.Unlock()
	return nil
}

func borrowedFailure(err error) bool {
	return errors.Is(err, backend.ErrUnauthorized) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
