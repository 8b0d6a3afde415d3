package service

import (
	"context"
	"time"

	"shopapi/internal/cache"
	"shopapi/internal/patch"
	"shopapi/internal/repository"
)

// DefaultItemCacheTTL is how long a record read by id stays cached.
const DefaultItemCacheTTL = 5 * time.Minute

// ItemService exposes CRUD over one resource collection.
type ItemService[T any] interface {
	Create(ctx context.Context, item *T) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context) ([]T, error)
	Patch(ctx context.Context, id string, ops []patch.Operation) (patch.UpdateResult, error)
	Delete(ctx context.Context, id string) (repository.DeleteResult, error)
}

type itemService[T any] struct {
	name    string
	repo    repository.ItemRepository[T]
	applier *patch.Applier
	cache   *cache.Client
	ttl     time.Duration
}

// NewItemService builds an ItemService. name prefixes cache keys.
func NewItemService[T any](name string, repo repository.ItemRepository[T], applier *patch.Applier, cache *cache.Client, ttl time.Duration) ItemService[T] {
	if ttl <= 0 {
		ttl = DefaultItemCacheTTL
	}
	return &itemService[T]{
		name:    name,
		repo:    repo,
		applier: applier,
		cache:   cache,
		ttl:     ttl,
	}
}

func (s *itemService[T]) cacheKey(id string) string {
	return s.name + ":" + id
}

func (s *itemService[T]) Create(ctx context.Context, item *T) error {
	return s.repo.Create(ctx, item)
}

// Get retrieves a record by ID with caching.
func (s *itemService[T]) Get(ctx context.Context, id string) (*T, error) {
	var cached T
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	// The version is read before the store so a write that lands in between
	// keeps this read from filling the cache.
	version, cacheable := s.cache.Version(ctx, s.cacheKey(id))
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cache.SetJSONIfVersion(ctx, s.cacheKey(id), version, item, s.ttl)
	}
	return item, nil
}

func (s *itemService[T]) List(ctx context.Context) ([]T, error) {
	return s.repo.List(ctx)
}

// Patch applies ops to the record id. A missing record is reported through
// zero counts.
func (s *itemService[T]) Patch(ctx context.Context, id string, ops []patch.Operation) (patch.UpdateResult, error) {
	res, err := s.applier.Apply(ctx, s.repo, id, ops)
	if err != nil {
		return patch.UpdateResult{}, err
	}
	if res.MatchedCount > 0 {
		s.cache.Invalidate(ctx, s.cacheKey(id))
	}
	return res, nil
}

func (s *itemService[T]) Delete(ctx context.Context, id string) (repository.DeleteResult, error) {
	res, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return repository.DeleteResult{}, err
	}
	if res.DeletedCount > 0 {
		s.cache.Invalidate(ctx, s.cacheKey(id))
	}
	return res, nil
}
