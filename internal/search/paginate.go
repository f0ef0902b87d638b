package search

// Pagination is the metadata accompanying one page of results. Field
// names match the JSON contract consumed by the storefront.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Paginate slices items into the requested page. A page past the end
// yields an empty slice with correct metadata, never an error. page and
// pageSize are assumed already normalized (>= 1).
func Paginate[T any](items []T, page, pageSize int) ([]T, Pagination) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	totalCount := len(items)
	totalPages := (totalCount + pageSize - 1) / pageSize

	meta := Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Limit:       pageSize,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}

	start := (page - 1) * pageSize
	if start >= totalCount {
		return []T{}, meta
	}
	end := start + pageSize
	if end > totalCount {
		end = totalCount
	}
	return items[start:end], meta
}
