package paging

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Params is bound from the page and page_size query parameters.
type Params struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize clamps zero or out of range values.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

func (p Params) Limit() int { return p.PageSize }

type Result[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

func NewResult[T any](items []T, count int64, p Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Count: count, Page: p.Page, PageSize: p.PageSize, Results: items}
}

// Map converts every item of r with fn.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := make([]U, 0, len(r.Results))
	for _, it := range r.Results {
		out = append(out, fn(it))
	}
	return Result[U]{Count: r.Count, Page: r.Page, PageSize: r.PageSize, Results: out}
}
