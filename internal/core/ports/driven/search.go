package driven

import (
	"context"
	"time"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// Searcher is the search function supplied by the embedding site.
// The context is the abort signal: it is cancelled when the request is
// superseded. Implementations should honour it but controllers do not
// rely on it.
type Searcher[T any] interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[T], error)
}

// SearcherFunc adapts a plain function to a Searcher.
type SearcherFunc[T any] func(ctx context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[T], error)

// Search calls f(ctx, req).
func (f SearcherFunc[T]) Search(ctx context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[T], error) {
	return f(ctx, req)
}

// Downloader is the optional download function supplied by the embedding site.
type Downloader interface {
	Download(ctx context.Context, req domain.SearchRequest) (domain.DownloadResult, error)
}

// DownloaderFunc adapts a plain function to a Downloader.
type DownloaderFunc func(ctx context.Context, req domain.SearchRequest) (domain.DownloadResult, error)

// Download calls f(ctx, req).
func (f DownloaderFunc) Download(ctx context.Context, req domain.SearchRequest) (domain.DownloadResult, error) {
	return f(ctx, req)
}

// SearchMetrics records request outcomes. Optional.
type SearchMetrics interface {
	// ObserveRequest records one finished request.
	// op is "search" or "download".
	ObserveRequest(controller, op string, outcome domain.Outcome, elapsed time.Duration)
}
