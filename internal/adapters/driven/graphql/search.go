package graphql

import (
	"context"
	"errors"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// pageInfo is the paging block of a LIS search connection.
type pageInfo struct {
	CurrentPage *int  `json:"currentPage"`
	PageSize    *int  `json:"pageSize"`
	NumResults  *int  `json:"numResults"`
	NumPages    *int  `json:"numPages"`
	HasNextPage *bool `json:"hasNextPage"`
}

// connection is the shape every LIS search field resolves to.
type connection[W any] struct {
	Results  []W       `json:"results"`
	PageInfo *pageInfo `json:"pageInfo"`
}

// variables maps the non-empty form fields of kind plus paging to query
// variables.
func variables(kind domain.SearchKind, req domain.SearchRequest, pageSize int) map[string]any {
	vars := make(map[string]any)
	for _, field := range kind.FormFields() {
		if v := req.Get(field); v != "" {
			vars[field] = v
		}
	}
	vars["page"] = req.Page()
	if pageSize > 0 {
		vars["pageSize"] = pageSize
	}
	return vars
}

// runSearch sends q and converts the connection found by pick into a
// paginated result. GraphQL errors become data errors; any results
// delivered alongside them are kept.
func runSearch[D, W, T any](
	ctx context.Context,
	client *Client,
	q Query,
	vars map[string]any,
	pick func(D) *connection[W],
	convert func(W) T,
) (domain.PaginatedSearchResult[T], error) {
	var data D
	err := client.Do(ctx, q, vars, &data)

	var result domain.PaginatedSearchResult[T]
	var respErr *ResponseError
	switch {
	case errors.As(err, &respErr):
		result.Errors = respErr.Messages
	case err != nil:
		return result, err
	}

	conn := pick(data)
	if conn == nil {
		return result, nil
	}
	result.Results = make([]T, len(conn.Results))
	for i, w := range conn.Results {
		result.Results[i] = convert(w)
	}
	if info := conn.PageInfo; info != nil {
		result.PageSize = info.PageSize
		result.NumResults = info.NumResults
		result.NumPages = info.NumPages
		result.HasNext = info.HasNextPage
	}
	return result, nil
}
