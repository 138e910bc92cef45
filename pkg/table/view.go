package table

// View is the rendered table handed to the page.
type View struct {
	Headers    []Header   `json:"headers"`
	Rows       []Row      `json:"rows"`
	HasActions bool       `json:"has_actions"`
	Sort       *SortState `json:"sort,omitempty"`
	Search     string     `json:"search,omitempty"`
	Pager      *Pager     `json:"pagination,omitempty"`
}

type Header struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Sortable  bool      `json:"sortable"`
	Direction Direction `json:"direction,omitempty"`
}

// Row is either a data row, a skeleton row or the single no-data row.
type Row struct {
	Index    int          `json:"index"`
	Key      string       `json:"key,omitempty"`
	Cells    []string     `json:"cells,omitempty"`
	Actions  []ActionView `json:"actions,omitempty"`
	Skeleton bool         `json:"skeleton,omitempty"`
	Empty    bool         `json:"empty,omitempty"`
	ColSpan  int          `json:"col_span,omitempty"`
	Message  string       `json:"message,omitempty"`
}

type ActionView struct {
	Label   string `json:"label"`
	Icon    string `json:"icon,omitempty"`
	Variant string `json:"variant,omitempty"`
}

type Pager struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	PageSize     int   `json:"page_size"`
	TotalItems   int   `json:"total_items"`
	Pages        []int `json:"pages"`
	Ellipsis     bool  `json:"ellipsis"`
	PrevDisabled bool  `json:"prev_disabled"`
	NextDisabled bool  `json:"next_disabled"`
}
