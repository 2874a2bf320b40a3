package model

// Page is the REST collection envelope. Page numbers are one-based.
type Page[T any] struct {
	Result      []T  `json:"result"`
	CurrentPage int  `json:"currentPage"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
	FirstPage   int  `json:"firstPage"`
	LastPage    *int `json:"lastPage"`
	PerPage     int  `json:"perPage"`
	TotalItems  int  `json:"totalItems"`
}

// Info converts the REST page metadata to the GraphQL page_info shape.
func (p Page[T]) Info() PageInfo {
	info := NewPageInfo(p.CurrentPage, p.PerPage, p.TotalItems)
	if p.NextPage != nil {
		info.HasNextPage = true
	}
	if p.PrevPage != nil {
		info.HasPreviousPage = true
	}
	return info
}

// PageInfo is the GraphQL pagination block. CurrentPage is one-based.
type PageInfo struct {
	CurrentPage     int  `json:"current_page"`
	PerPage         int  `json:"per_page"`
	TotalItems      int  `json:"total_items"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
	StartItem       int  `json:"start_item"`
	EndItem         int  `json:"end_item"`
}

// PagedItems is the GraphQL `{items, page_info}` list shape.
type PagedItems[T any] struct {
	Items    []T       `json:"items"`
	PageInfo *PageInfo `json:"page_info"`
}

// NewPageInfo derives page metadata for a one-based page of perPage items
// out of totalItems.
func NewPageInfo(currentPage, perPage, totalItems int) PageInfo {
	if currentPage < 1 {
		currentPage = 1
	}
	info := PageInfo{
		CurrentPage: currentPage,
		PerPage:     perPage,
		TotalItems:  totalItems,
	}
	if perPage <= 0 || totalItems <= 0 {
		return info
	}

	info.TotalPages = (totalItems-1)/perPage + 1
	info.HasNextPage = currentPage < info.TotalPages
	info.HasPreviousPage = currentPage > 1

	if currentPage <= info.TotalPages {
		info.StartItem = (currentPage-1)*perPage + 1
		info.EndItem = info.StartItem - 1 + min(perPage, totalItems-info.StartItem+1)
	}
	return info
}
