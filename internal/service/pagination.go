package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page  int
	Limit int
}

// Page describes the slice of a listing that was returned.
type Page struct {
	Page  int
	Limit int
	Total int
	Pages int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.Limit
}

func newPage(req PageRequest, total int) Page {
	pages := 0
	if total > 0 {
		pages = (total + req.Limit - 1) / req.Limit
	}
	return Page{Page: req.Page, Limit: req.Limit, Total: total, Pages: pages}
}
