// Package table is a generic list renderer shared by every console page. It
// tracks UI state (sort indicator, search box, paging buttons) and reports user
// intent through callbacks; fetching and ordering data stays with the caller.
package table

import (
	"errors"
	"fmt"
	"slices"
)

const (
	DefaultSkeletonRows = 5
	DefaultEmptyMessage = "No data available"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotSortable   = errors.New("column is not sortable")
	ErrUnknownAction = errors.New("unknown action")
	ErrRowOutOfRange = errors.New("row out of range")
)

// Table renders Data under Columns.
type Table[T any] struct {
	Columns      []Column[T]
	Data         []T
	Actions      ActionsFunc[T]
	Pagination   *Pagination
	Loading      bool
	EmptyMessage string
	RowKey       func(T) string

	OnSort     func(SortState)
	OnSearch   func(term string)
	OnRowClick func(row T)

	sort   SortState
	search string
}

// New creates a table over data.
func New[T any](columns []Column[T], data []T) *Table[T] {
	return &Table[T]{
		Columns: columns,
		Data:    data,
	}
}

// SortState returns the current sort indicator.
func (t *Table[T]) SortState() SortState {
	return t.sort
}

// SetSortState restores an indicator, e.g. from request parameters, without
// invoking callbacks.
func (t *Table[T]) SetSortState(s SortState) {
	t.sort = s
}

// Sort handles a click on the header of column key. With OnSort set the table
// only moves the indicator and delegates ordering; otherwise it orders Data
// itself using the column comparator.
func (t *Table[T]) Sort(key string) (SortState, error) {
	col, ok := t.column(key)
	if !ok {
		return t.sort, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if !col.Sortable {
		return t.sort, fmt.Errorf("%w: %s", ErrNotSortable, key)
	}

	t.sort = t.sort.Toggle(key)

	if t.OnSort != nil {
		t.OnSort(t.sort)
		return t.sort, nil
	}

	if col.Compare != nil {
		desc := t.sort.Direction == Desc
		slices.SortStableFunc(t.Data, func(a, b T) int {
			if desc {
				return col.Compare(b, a)
			}
			return col.Compare(a, b)
		})
	}
	return t.sort, nil
}

// Search records the raw term and forwards it. No filtering happens here.
func (t *Table[T]) Search(term string) {
	t.search = term
	if t.OnSearch != nil {
		t.OnSearch(term)
	}
}

// SearchTerm returns the current search box value.
func (t *Table[T]) SearchTerm() string {
	return t.search
}

// GoToPage invokes OnPageChange when page is within [1, TotalPages] and the
// table is not loading. It reports whether the callback fired.
func (t *Table[T]) GoToPage(page int) bool {
	p := t.Pagination
	if p == nil || p.OnPageChange == nil || t.Loading {
		return false
	}
	if page < 1 || page > p.TotalPages {
		return false
	}
	p.OnPageChange(page)
	return true
}

// Previous moves one page back.
func (t *Table[T]) Previous() bool {
	if t.Pagination == nil {
		return false
	}
	return t.GoToPage(t.Pagination.CurrentPage - 1)
}

// Next moves one page forward.
func (t *Table[T]) Next() bool {
	if t.Pagination == nil {
		return false
	}
	return t.GoToPage(t.Pagination.CurrentPage + 1)
}

// SetPageSize forwards a page size change. Resetting to the first page is the
// consumer's job.
func (t *Table[T]) SetPageSize(size int) bool {
	p := t.Pagination
	if p == nil || p.OnPageSizeChange == nil || size <= 0 {
		return false
	}
	p.OnPageSizeChange(size)
	return true
}

// Dispatch delivers a click. Action clicks stop propagation before the action
// runs, so the row handler only sees plain row clicks.
func (t *Table[T]) Dispatch(ev *ClickEvent) error {
	if ev.Row < 0 || ev.Row >= len(t.Data) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, ev.Row)
	}
	row := t.Data[ev.Row]

	if ev.Action != "" {
		action, ok := t.action(row, ev.Action)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAction, ev.Action)
		}
		ev.StopPropagation()
		if action.OnClick != nil {
			action.OnClick(row)
		}
	}

	if !ev.Stopped() && t.OnRowClick != nil {
		t.OnRowClick(row)
	}
	return nil
}

// ClickAction is shorthand for dispatching an action click on row.
func (t *Table[T]) ClickAction(row int, label string) error {
	return t.Dispatch(&ClickEvent{Row: row, Action: label})
}

// ClickRow is shorthand for dispatching a plain row click.
func (t *Table[T]) ClickRow(row int) error {
	return t.Dispatch(&ClickEvent{Row: row})
}

// Render builds the view model. Loading pre-empts data: it always yields
// PageSize (or DefaultSkeletonRows) skeleton rows.
func (t *Table[T]) Render() View {
	v := View{
		Headers: make([]Header, 0, len(t.Columns)),
		Search:  t.search,
	}

	for _, c := range t.Columns {
		h := Header{Key: c.Key, Label: c.Header, Sortable: c.Sortable}
		if t.sort.Active() && t.sort.Key == c.Key {
			h.Direction = t.sort.Direction
		}
		v.Headers = append(v.Headers, h)
	}
	if t.sort.Active() {
		s := t.sort
		v.Sort = &s
	}
	v.HasActions = t.Actions != nil

	switch {
	case t.Loading:
		n := DefaultSkeletonRows
		if t.Pagination != nil && t.Pagination.PageSize > 0 {
			n = t.Pagination.PageSize
		}
		v.Rows = make([]Row, n)
		for i := range v.Rows {
			v.Rows[i] = Row{Index: i, Cells: make([]string, len(t.Columns)), Skeleton: true}
		}
	case len(t.Data) == 0:
		msg := t.EmptyMessage
		if msg == "" {
			msg = DefaultEmptyMessage
		}
		span := len(t.Columns)
		if v.HasActions {
			span++
		}
		v.Rows = []Row{{Empty: true, ColSpan: span, Message: msg}}
	default:
		v.Rows = make([]Row, 0, len(t.Data))
		for i, row := range t.Data {
			v.Rows = append(v.Rows, t.renderRow(i, row))
		}
	}

	if p := t.Pagination; p != nil {
		v.Pager = &Pager{
			CurrentPage:  p.CurrentPage,
			TotalPages:   p.TotalPages,
			PageSize:     p.PageSize,
			TotalItems:   p.TotalItems,
			Pages:        PageWindow(p.CurrentPage, p.TotalPages),
			Ellipsis:     Ellipsis(p.TotalPages),
			PrevDisabled: t.Loading || p.CurrentPage <= 1,
			NextDisabled: t.Loading || p.CurrentPage >= p.TotalPages,
		}
	}

	return v
}

func (t *Table[T]) renderRow(i int, row T) Row {
	r := Row{Index: i, Cells: make([]string, len(t.Columns))}
	if t.RowKey != nil {
		r.Key = t.RowKey(row)
	}
	for j, c := range t.Columns {
		r.Cells[j] = c.cell(row)
	}
	if t.Actions != nil {
		for _, a := range t.Actions(row) {
			r.Actions = append(r.Actions, ActionView{Label: a.Label, Icon: a.Icon, Variant: a.Variant})
		}
	}
	return r
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (t *Table[T]) action(row T, label string) (Action[T], bool) {
	if t.Actions == nil {
		return Action[T]{}, false
	}
	for _, a := range t.Actions(row) {
		if a.Label == label {
			return a, true
		}
	}
	return Action[T]{}, false
}
