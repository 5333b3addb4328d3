// Package util has small helpers shared by the HTTP handlers.
package util

// Page converts 1-based page/size query values into an offset and limit.
// Out-of-range input falls back to the first page of twenty.
func Page(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}
