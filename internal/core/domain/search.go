package domain

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
)

// PageParameter is the request field carrying the page number.
const PageParameter = "page"

// FormField is one name/value pair of a submitted search form.
type FormField struct {
	Name  string
	Value string
}

// FormFields is a raw form submission. Order is preserved and names may repeat.
type FormFields []FormField

// FormFieldsFromMap builds form fields from a map in sorted name order.
func FormFieldsFromMap(m map[string]string) FormFields {
	names := slices.Sorted(maps.Keys(m))
	fields := make(FormFields, 0, len(names))
	for _, name := range names {
		fields = append(fields, FormField{Name: name, Value: m[name]})
	}
	return fields
}

// SearchRequest is the parsed, validated representation of a submitted
// search form: field name to value.
type SearchRequest map[string]string

// Clone returns a copy of the request.
func (r SearchRequest) Clone() SearchRequest {
	if r == nil {
		return SearchRequest{}
	}
	return maps.Clone(r)
}

// Get returns the value of a field, or "" if absent.
func (r SearchRequest) Get(name string) string {
	return r[name]
}

// Has reports whether the field is present and non-empty.
func (r SearchRequest) Has(name string) bool {
	return r[name] != ""
}

// NonEmpty returns a copy without empty fields.
func (r SearchRequest) NonEmpty() SearchRequest {
	out := make(SearchRequest, len(r))
	for k, v := range r {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Page returns the requested page number, defaulting to 1.
func (r SearchRequest) Page() int {
	page, err := strconv.Atoi(r[PageParameter])
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// WithPage returns a copy of the request with the page field set.
func (r SearchRequest) WithPage(page int) SearchRequest {
	out := r.Clone()
	out[PageParameter] = strconv.Itoa(page)
	return out
}

// WithoutPage returns a copy of the request with the page field removed.
func (r SearchRequest) WithoutPage() SearchRequest {
	out := r.Clone()
	delete(out, PageParameter)
	return out
}

// Values converts the request to URL query values.
func (r SearchRequest) Values() url.Values {
	values := make(url.Values, len(r))
	for k, v := range r {
		values.Set(k, v)
	}
	return values
}

// Encode serialises the request as a query string with sorted keys.
func (r SearchRequest) Encode() string {
	return r.Values().Encode()
}

// RequestFromValues builds a request from URL query values.
// Only the first value of each key is kept.
func RequestFromValues(values url.Values) SearchRequest {
	out := make(SearchRequest, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}

// ParseRequest parses a raw query string into a request.
func ParseRequest(rawQuery string) (SearchRequest, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return RequestFromValues(values), nil
}

// RequiredGroups lists field groups that justify an automatic search.
// A search fires if every field of at least one group is present.
type RequiredGroups [][]string

// SatisfiedBy reports whether any group is fully present in params.
func (g RequiredGroups) SatisfiedBy(params SearchRequest) bool {
	for _, group := range g {
		if len(group) == 0 {
			continue
		}
		satisfied := true
		for _, field := range group {
			if !params.Has(field) {
				satisfied = false
				break
			}
		}
		if satisfied {
			return true
		}
	}
	return false
}

// SearchResult is the value a search function resolves with.
type SearchResult[T any] struct {
	// Results holds the matched entities.
	Results []T `json:"results"`

	// Errors lists data errors reported by the source.
	Errors []string `json:"errors,omitempty"`
}

// PaginatedSearchResult adds optional paging metadata.
// Nil fields were not reported by the source.
type PaginatedSearchResult[T any] struct {
	SearchResult[T]

	PageSize   *int  `json:"pageSize,omitempty"`
	HasNext    *bool `json:"hasNext,omitempty"`
	NumResults *int  `json:"numResults,omitempty"`
	NumPages   *int  `json:"numPages,omitempty"`
}

// NextPageExists returns HasNext, or falls back to "results non-empty"
// when the source did not say. The fallback is wrong for a full last
// page; it is kept for compatibility with sources that omit hasNext.
func (r PaginatedSearchResult[T]) NextPageExists() bool {
	if r.HasNext != nil {
		return *r.HasNext
	}
	return len(r.Results) > 0
}

// DownloadResult is the value a download function resolves with.
type DownloadResult struct {
	Errors []string `json:"errors,omitempty"`

	// Path is where the download was written, if anywhere.
	Path string `json:"path,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }
