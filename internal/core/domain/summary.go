package domain

import "fmt"

// FormatResultsSummary renders the result-count line shown above a result
// table, e.g. "21-30 of 214 results". It returns "" when count is zero.
// pageSize and numResults may be nil when the source did not report them.
func FormatResultsSummary(page, count int, pageSize, numResults *int) string {
	if count <= 0 {
		return ""
	}
	if page < 1 {
		page = 1
	}

	switch {
	case pageSize != nil && *pageSize > 0:
		start := (page-1)*(*pageSize) + 1
		end := start + count - 1
		if numResults != nil {
			return fmt.Sprintf("%d-%d of %d %s", start, end, *numResults, pluralResults(*numResults))
		}
		return fmt.Sprintf("%d-%d %s", start, end, pluralResults(end))
	case numResults != nil:
		return fmt.Sprintf("%d of %d %s", count, *numResults, pluralResults(*numResults))
	default:
		return fmt.Sprintf("%d %s", count, pluralResults(count))
	}
}

func pluralResults(n int) string {
	if n == 1 {
		return "result"
	}
	return "results"
}
