package order

// Pagination mirrors what the order-history client renders.
type Pagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

func paginate(total int, page int, limit int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}
