// Package store persists products. Every implementation applies the same
// listing predicates: case-insensitive substring match on name or sku,
// soft-deleted rows excluded, newest first with id as tiebreaker.
package store

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no live product has the requested id.
var ErrNotFound = errors.New("record not found")

// Query selects one page of products.
type Query struct {
	Search   string
	Page     int // 1-based
	PageSize int
}

// Offset returns the number of rows to skip for q.Page. It saturates at
// math.MaxInt instead of overflowing, so a huge page lands past the end.
func (q Query) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

func (q Query) term() string {
	return strings.ToLower(strings.TrimSpace(q.Search))
}
