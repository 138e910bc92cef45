package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/pkg/metrics"
)

type source struct {
	lists []model.ListParams
	gets  []string
	err   error
}

func (s *source) list(_ context.Context, params model.ListParams) (*model.ListResponse[model.Document], error) {
	s.lists = append(s.lists, params)
	if s.err != nil {
		return nil, s.err
	}
	return &model.ListResponse[model.Document]{
		Items: []model.Document{{ID: int64(params.Page), Title: "doc " + strconv.Itoa(params.Page)}},
		Total: 30,
		Page:  params.Page,
		Pages: 3,
	}, nil
}

func (s *source) get(_ context.Context, id string) (*model.Document, error) {
	s.gets = append(s.gets, id)
	if s.err != nil {
		return nil, s.err
	}
	n, _ := strconv.ParseInt(id, 10, 64)
	return &model.Document{ID: n, Title: "single"}, nil
}

func newCache(src *source, ttl time.Duration) (*ResourceCache[model.Document], *metrics.Metrics) {
	m := metrics.New("test")
	return New[model.Document]("documents", src.list, src.get, Config{TTL: ttl, CleanupInterval: time.Minute}, m), m
}

func TestFetch_ReadThroughByNormalizedParams(t *testing.T) {
	src := &source{}
	c, m := newCache(src, time.Minute)
	ctx := context.Background()

	first, err := c.Fetch(ctx, model.ListParams{Pagination: model.Pagination{Page: 1}})
	require.NoError(t, err)
	// Same page once normalized: page size defaults, search is trimmed.
	second, err := c.Fetch(ctx, model.ListParams{Pagination: model.Pagination{Page: 1, PageSize: model.DefaultPageSize}, SearchTerm: "  "})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, src.lists, 1)
	assert.Equal(t, model.DefaultPageSize, src.lists[0].PageSize)

	_, err = c.Fetch(ctx, model.ListParams{Pagination: model.Pagination{Page: 2}})
	require.NoError(t, err)
	assert.Len(t, src.lists, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("documents", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("documents", "miss")))
}

func TestFetch_ReturnsCopies(t *testing.T) {
	src := &source{}
	c, _ := newCache(src, time.Minute)

	page, err := c.Fetch(context.Background(), model.ListParams{})
	require.NoError(t, err)
	page.Items[0].Title = "mutated"

	again, err := c.Fetch(context.Background(), model.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "doc 1", again.Items[0].Title)
}

func TestGetByID_ServedFromListedItems(t *testing.T) {
	src := &source{}
	c, _ := newCache(src, time.Minute)

	_, err := c.Fetch(context.Background(), model.ListParams{Pagination: model.Pagination{Page: 2}})
	require.NoError(t, err)

	doc, err := c.GetByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "doc 2", doc.Title)
	assert.Empty(t, src.gets)

	doc, err = c.GetByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "single", doc.Title)
	assert.Equal(t, []string{"7"}, src.gets)
}

func TestClear(t *testing.T) {
	src := &source{}
	c, _ := newCache(src, time.Minute)

	_, err := c.Fetch(context.Background(), model.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())

	_, err = c.Fetch(context.Background(), model.ListParams{})
	require.NoError(t, err)
	assert.Len(t, src.lists, 2)
}

func TestTTLExpiry(t *testing.T) {
	src := &source{}
	c, _ := newCache(src, 20*time.Millisecond)

	_, err := c.Fetch(context.Background(), model.ListParams{})
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	_, err = c.Fetch(context.Background(), model.ListParams{})
	require.NoError(t, err)
	assert.Len(t, src.lists, 2)
}

func TestErrorsAreNotCached(t *testing.T) {
	src := &source{err: errors.New("upstream down")}
	c, _ := newCache(src, time.Minute)

	_, err := c.Fetch(context.Background(), model.ListParams{})
	assert.Error(t, err)
	_, err = c.GetByID(context.Background(), "1")
	assert.Error(t, err)

	src.err = nil
	_, err = c.Fetch(context.Background(), model.ListParams{})
	require.NoError(t, err)
	assert.Len(t, src.lists, 2)
}
