package table

// Action is a row-level menu entry.
type Action[T any] struct {
	Label   string
	Icon    string
	Variant string
	OnClick func(row T)
}

// ActionsFunc computes the action menu of a single row, which lets callers gate
// entries on row state or on the acting user.
type ActionsFunc[T any] func(row T) []Action[T]

// Static shares one action set across every row.
func Static[T any](actions ...Action[T]) ActionsFunc[T] {
	return func(T) []Action[T] { return actions }
}

// ClickEvent is a click inside the table body. An empty Action means the row
// itself was clicked.
type ClickEvent struct {
	Row    int
	Action string

	stopped bool
}

// StopPropagation keeps the event from reaching the row click handler.
func (e *ClickEvent) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether propagation was stopped.
func (e *ClickEvent) Stopped() bool {
	return e.stopped
}
