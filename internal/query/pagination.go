package query

const (
	DefaultOffset = 0
	DefaultLimit  = 10
	MinLimit      = 1
	MaxLimit      = 9999
)

type Pagination struct {
	Offset int
	Limit  int
}

// Paginate applies defaults to absent values and clamps the rest.
// Out-of-range input is corrected, never rejected.
func Paginate(offset, limit *int) Pagination {
	p := Pagination{Offset: DefaultOffset, Limit: DefaultLimit}
	if offset != nil {
		p.Offset = *offset
	}
	if limit != nil {
		p.Limit = *limit
	}
	return p.Clamp()
}

func (p Pagination) Clamp() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	switch {
	case p.Limit < MinLimit:
		p.Limit = MinLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}
