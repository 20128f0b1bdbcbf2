package domain

// DefaultPerPage is the fixed page size for every paginated listing.
const DefaultPerPage = 15

// PageMeta describes one page of a listing. LastPage is always >= 1 so an
// empty result set still has a valid page 1.
type PageMeta struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// NewPageMeta clamps the requested page into [1, last_page] and computes the
// page bounds from the total row count. Invalid pages never error.
func NewPageMeta(total, perPage, page int) PageMeta {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}
	return PageMeta{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		LastPage:    lastPage,
	}
}

// Offset is the row offset for this page.
func (m PageMeta) Offset() int {
	return (m.CurrentPage - 1) * m.PerPage
}
