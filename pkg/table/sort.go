package table

import "strings"

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc"/"desc" in any case and defaults to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// SortState is the active sort indicator. The zero value means unsorted.
type SortState struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Active reports whether any column is sorted.
func (s SortState) Active() bool {
	return s.Key != ""
}

// Toggle returns the state after a click on key: the same key flips between
// asc and desc and never returns to unsorted; another key starts at asc.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && s.Direction == Asc {
		return SortState{Key: key, Direction: Desc}
	}
	return SortState{Key: key, Direction: Asc}
}
