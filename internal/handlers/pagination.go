package handlers

import (
	"errors"
	"strconv"
)

var errInvalidPagination = errors.New("page and limit must be positive integers")

const maxPageSize = 100

// parsePaginationParams returns ok=false when neither page nor limit is
// given, in which case the full list is returned.
func parsePaginationParams(pageStr, limitStr string) (page, limit int, ok bool, err error) {
	if pageStr == "" && limitStr == "" {
		return 0, 0, false, nil
	}

	page, limit = 1, 20
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, false, errInvalidPagination
		}
		page = p
	}
	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return 0, 0, false, errInvalidPagination
		}
		limit = l
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, true, nil
}

// pageBounds returns the [start, end) slice bounds of page within total.
func pageBounds(total, page, limit int) (int, int) {
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return start, end
}
