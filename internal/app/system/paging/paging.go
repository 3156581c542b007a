// Package paging implements fixed-size page-number pagination for list
// endpoints. Page numbers are 1-based; the page size is fixed and not
// client-controllable.
package paging

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of documents per page for paged lists.
const PageSize = 10

// ParsePage extracts the "page" query parameter (1-based).
// Returns 1 if absent or invalid.
func ParsePage(r *http.Request) int {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Skip returns the number of documents to skip for the given page.
func Skip(page int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * PageSize)
}

// ApplyToFind configures FindOptions with a stable sort, skip, and limit
// for the given page. Sorting by _id keeps pages consistent between
// requests as long as no documents are inserted in between.
func ApplyToFind(find *options.FindOptions, page int) *options.FindOptions {
	return find.
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(Skip(page)).
		SetLimit(int64(PageSize))
}
