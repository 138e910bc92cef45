package table

import (
	"cmp"
	"fmt"
	"time"
)

// Column binds one field of a row to a header, an optional renderer and an
// optional ordering. Fields are read through typed selectors, never by name.
type Column[T any] struct {
	Key      string
	Header   string
	Value    func(T) any
	Render   func(T) string
	Sortable bool
	Compare  func(a, b T) int
}

// Field builds a sortable column over a totally ordered field.
func Field[T any, V cmp.Ordered](key, header string, get func(T) V) Column[T] {
	return Column[T]{
		Key:      key,
		Header:   header,
		Value:    func(row T) any { return get(row) },
		Sortable: true,
		Compare:  func(a, b T) int { return cmp.Compare(get(a), get(b)) },
	}
}

// TimeField builds a sortable column over a timestamp rendered with layout.
func TimeField[T any](key, header string, get func(T) time.Time, layout string) Column[T] {
	return Column[T]{
		Key:    key,
		Header: header,
		Value:  func(row T) any { return get(row) },
		Render: func(row T) string {
			ts := get(row)
			if ts.IsZero() {
				return ""
			}
			return ts.Format(layout)
		},
		Sortable: true,
		Compare:  func(a, b T) int { return get(a).Compare(get(b)) },
	}
}

// Text builds a display-only column.
func Text[T any](key, header string, get func(T) string) Column[T] {
	return Column[T]{
		Key:    key,
		Header: header,
		Value:  func(row T) any { return get(row) },
	}
}

// WithRender returns a copy of the column using fn as its cell formatter.
func (c Column[T]) WithRender(fn func(T) string) Column[T] {
	c.Render = fn
	return c
}

// Unsortable returns a copy of the column with sorting disabled.
func (c Column[T]) Unsortable() Column[T] {
	c.Sortable = false
	return c
}

func (c Column[T]) cell(row T) string {
	if c.Render != nil {
		return c.Render(row)
	}
	if c.Value == nil {
		return ""
	}
	v := c.Value(row)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
