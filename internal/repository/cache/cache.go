package cache

import (
	"context"
	"fmt"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/pkg/metrics"
)

// ListFunc loads one page of a resource from its source.
type ListFunc[T any] func(ctx context.Context, params model.ListParams) (*model.ListResponse[T], error)

// GetFunc loads a single record from its source.
type GetFunc[T any] func(ctx context.Context, id string) (*T, error)

// ResourceCache is a read-through cache of one upstream resource. Pages are
// keyed by their normalized list params; records fetched through a page
// also serve GetByID until they expire.
type ResourceCache[T model.Resource] struct {
	name    string
	list    ListFunc[T]
	get     GetFunc[T]
	store   *gocache.Cache
	metrics *metrics.Metrics
}

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func New[T model.Resource](name string, list ListFunc[T], get GetFunc[T], cfg Config, m *metrics.Metrics) *ResourceCache[T] {
	if cfg.TTL <= 0 {
		cfg.TTL = gocache.NoExpiration
	}
	return &ResourceCache[T]{
		name:    name,
		list:    list,
		get:     get,
		store:   gocache.New(cfg.TTL, cfg.CleanupInterval),
		metrics: m,
	}
}

func (c *ResourceCache[T]) Name() string { return c.name }

// Fetch returns the page for params, loading it on a miss.
func (c *ResourceCache[T]) Fetch(ctx context.Context, params model.ListParams) (*model.ListResponse[T], error) {
	params = params.Normalize()
	key := listKey(params)

	if cached, ok := c.store.Get(key); ok {
		c.observe("hit")
		return clonePage(cached.(*model.ListResponse[T])), nil
	}
	c.observe("miss")

	page, err := c.list(ctx, params)
	if err != nil {
		return nil, err
	}

	c.store.SetDefault(key, page)
	for _, item := range page.Items {
		c.store.SetDefault(itemKey(item.ResourceID()), item)
	}
	return clonePage(page), nil
}

// GetByID returns a single record, loading it on a miss.
func (c *ResourceCache[T]) GetByID(ctx context.Context, id string) (*T, error) {
	key := itemKey(id)

	if cached, ok := c.store.Get(key); ok {
		c.observe("hit")
		item := cached.(T)
		return &item, nil
	}
	c.observe("miss")

	item, err := c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store.SetDefault(key, *item)
	return item, nil
}

// Clear drops every cached page and record.
func (c *ResourceCache[T]) Clear() {
	c.store.Flush()
}

// Len returns the number of live entries.
func (c *ResourceCache[T]) Len() int {
	return c.store.ItemCount()
}

func (c *ResourceCache[T]) observe(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(c.name, result).Inc()
	}
}

func listKey(p model.ListParams) string {
	return fmt.Sprintf("list:%d:%d:%s:%s:%s:%q", p.Page, p.PageSize, p.Field, p.Dir, p.Status, p.SearchTerm)
}

func itemKey(id string) string {
	return "item:" + id
}

func clonePage[T any](page *model.ListResponse[T]) *model.ListResponse[T] {
	out := *page
	out.Items = slices.Clone(page.Items)
	return &out
}
