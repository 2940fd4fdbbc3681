package usecase

// ページングの応答部分。totalPages = ceil(total/limit)
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// page/limitの最低限チェック（default: page=1, limit=10, 上限100）
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 10
	}
	if page < 1 {
		return 0, 0, NewValidationError("pagination", "invalid page")
	}
	if limit < 1 || limit > 100 {
		return 0, 0, NewValidationError("pagination", "invalid limit")
	}
	return page, limit, nil
}
