package resource

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwalitptl/travel-console/internal/model"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/table"
)

// Source is where a resource's pages come from, usually a ResourceCache.
type Source[T any] interface {
	Fetch(ctx context.Context, params model.ListParams) (*model.ListResponse[T], error)
	GetByID(ctx context.Context, id string) (*T, error)
	Clear()
}

// Page is one fetched page adapted to the table's pagination state.
type Page[T any] struct {
	Items      []T
	Params     model.ListParams
	Pagination table.Pagination
}

// Intent is a user interaction with the table: a page button, the page
// size selector, a header click or the search box.
type Intent struct {
	Kind  string `form:"action"`
	Value string `form:"value"`
}

const (
	IntentPage     = "page"
	IntentPrevious = "prev"
	IntentNext     = "next"
	IntentPageSize = "page_size"
	IntentSort     = "sort"
	IntentSearch   = "search"
)

// Result is a rendered table plus the params that produced it, which the
// page sends back with its next interaction.
type Result struct {
	View   table.View       `json:"view"`
	Params model.ListParams `json:"params"`
}

// Service serves table views of one upstream resource.
type Service[T model.Resource] struct {
	name         string
	source       Source[T]
	columns      []table.Column[T]
	emptyMessage string
}

func NewService[T model.Resource](name string, source Source[T], columns []table.Column[T]) *Service[T] {
	return &Service[T]{
		name:         name,
		source:       source,
		columns:      columns,
		emptyMessage: fmt.Sprintf("No %s found", strings.ReplaceAll(name, "_", " ")),
	}
}

func (s *Service[T]) Name() string { return s.name }

func (s *Service[T]) Columns() []table.Column[T] { return s.columns }

// Page fetches params' page. A page past the end is clamped to the last
// page and fetched again.
func (s *Service[T]) Page(ctx context.Context, params model.ListParams) (*Page[T], error) {
	params = s.normalize(params)

	resp, err := s.source.Fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	last := max(pageCount(resp, params.PageSize), 1)
	if params.Page > last {
		params.Page = last
		if resp, err = s.source.Fetch(ctx, params); err != nil {
			return nil, err
		}
	}

	return &Page[T]{
		Items:  resp.Items,
		Params: params,
		Pagination: table.Pagination{
			CurrentPage: params.Page,
			TotalPages:  pageCount(resp, params.PageSize),
			PageSize:    params.PageSize,
			TotalItems:  resp.Total,
		},
	}, nil
}

// normalize bounds params and drops a sort field that is not a sortable
// column, so only known keys ever reach the travel API.
func (s *Service[T]) normalize(params model.ListParams) model.ListParams {
	if params.Field != "" {
		known := false
		for _, c := range s.columns {
			if c.Key == params.Field && c.Sortable {
				known = true
				break
			}
		}
		if !known {
			params.Field = ""
		}
	}
	return params.Normalize()
}

func pageCount[T any](resp *model.ListResponse[T], pageSize int) int {
	if resp.Pages > 0 {
		return resp.Pages
	}
	return table.TotalPages(resp.Total, pageSize)
}

func (s *Service[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.source.GetByID(ctx, id)
}

// Invalidate drops everything cached for this resource.
func (s *Service[T]) Invalidate() {
	s.source.Clear()
}

// View fetches params' page, applies intent through the table's callbacks
// and renders the resulting page.
func (s *Service[T]) View(ctx context.Context, params model.ListParams, intent *Intent, actions table.ActionsFunc[T]) (*Result, error) {
	page, err := s.Page(ctx, params)
	if err != nil {
		return nil, err
	}

	if intent != nil && intent.Kind != "" {
		next, changed, err := s.apply(page, *intent)
		if err != nil {
			return nil, err
		}
		if changed {
			if page, err = s.Page(ctx, next); err != nil {
				return nil, err
			}
		}
	}

	return &Result{
		View:   s.Table(page, actions).Render(),
		Params: page.Params,
	}, nil
}

// MaxExportPages bounds how many upstream pages one export may read.
const MaxExportPages = 50

// ExportView renders every row matching params' filters and sort, reading
// the source page by page at the maximum page size.
func (s *Service[T]) ExportView(ctx context.Context, params model.ListParams) (table.View, error) {
	params = s.normalize(params)
	params.PageSize = model.MaxPageSize

	var items []T
	for page := 1; page <= MaxExportPages; page++ {
		params.Page = page
		resp, err := s.source.Fetch(ctx, params)
		if err != nil {
			return table.View{}, err
		}
		items = append(items, resp.Items...)
		if len(resp.Items) == 0 || page >= pageCount(resp, params.PageSize) {
			break
		}
	}

	t := table.New(s.columns, items)
	t.EmptyMessage = s.emptyMessage
	t.SetSortState(sortState(params))
	return t.Render(), nil
}

// Skeleton renders the loading state of params' page without fetching.
func (s *Service[T]) Skeleton(params model.ListParams) *Result {
	params = s.normalize(params)
	t := table.New(s.columns, nil)
	t.Loading = true
	t.Pagination = &table.Pagination{CurrentPage: params.Page, PageSize: params.PageSize}
	t.SetSortState(sortState(params))
	t.Search(params.SearchTerm)
	return &Result{View: t.Render(), Params: params}
}

// Table builds the table for a fetched page.
func (s *Service[T]) Table(page *Page[T], actions table.ActionsFunc[T]) *table.Table[T] {
	t := table.New(s.columns, page.Items)
	t.Actions = actions
	t.EmptyMessage = s.emptyMessage
	t.RowKey = func(row T) string { return row.ResourceID() }
	pagination := page.Pagination
	t.Pagination = &pagination
	t.SetSortState(sortState(page.Params))
	t.Search(page.Params.SearchTerm)
	return t
}

// apply replays intent on a table over page and returns the params the
// callbacks asked for.
func (s *Service[T]) apply(page *Page[T], intent Intent) (model.ListParams, bool, error) {
	next := page.Params
	changed := false

	t := s.Table(page, nil)
	t.Pagination.OnPageChange = func(p int) {
		next.Page = p
		changed = true
	}
	t.Pagination.OnPageSizeChange = func(size int) {
		next.PageSize = size
		next.Page = 1
		changed = true
	}
	t.OnSort = func(st table.SortState) {
		next.Field = st.Key
		next.Dir = string(st.Direction)
		next.Page = 1
		changed = true
	}
	t.OnSearch = func(term string) {
		next.SearchTerm = term
		next.Page = 1
		changed = true
	}

	switch intent.Kind {
	case IntentPage:
		p, err := strconv.Atoi(intent.Value)
		if err != nil {
			return next, false, apperrors.BadRequest("invalid page", err)
		}
		t.GoToPage(p)
	case IntentPrevious:
		t.Previous()
	case IntentNext:
		t.Next()
	case IntentPageSize:
		size, err := strconv.Atoi(intent.Value)
		if err != nil || size <= 0 || size > model.MaxPageSize {
			return next, false, apperrors.BadRequest(fmt.Sprintf("page size must be between 1 and %d", model.MaxPageSize), err)
		}
		t.SetPageSize(size)
	case IntentSort:
		if _, err := t.Sort(intent.Value); err != nil {
			return next, false, apperrors.BadRequest("invalid sort column", err)
		}
	case IntentSearch:
		t.Search(strings.TrimSpace(intent.Value))
	default:
		return next, false, apperrors.BadRequest(fmt.Sprintf("unknown table action %q", intent.Kind), nil)
	}

	return next, changed && next != page.Params, nil
}

func sortState(params model.ListParams) table.SortState {
	if params.Field == "" {
		return table.SortState{}
	}
	return table.SortState{Key: params.Field, Direction: table.ParseDirection(params.Dir)}
}
