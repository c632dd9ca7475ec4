package model

import "math"

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewMeta(page int, limit int, total int) Meta {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// PageOffset returns how many items precede page at the given limit. ok is
// false when that count does not fit in an int64.
func PageOffset(page int, limit int) (offset int64, ok bool) {
	if page < 1 || limit < 1 {
		return 0, true
	}
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return 0, false
	}
	return int64(page-1) * int64(limit), true
}
