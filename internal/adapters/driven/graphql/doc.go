// Package graphql provides search and download functions backed by the
// LIS GraphQL API.
//
// Client sends validated query documents with a rate limit, retries and
// an optional bearer token. GeneSearcher and TraitSearcher implement
// driven.Searcher; Downloader pages through every result of a search
// and writes a TSV file.
package graphql
