package graphql

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/logger"
)

const (
	// DefaultDownloadConcurrency bounds page fetches in flight.
	DefaultDownloadConcurrency = 4

	// DefaultMaxDownloadPages bounds downloads whose source reports no
	// page count.
	DefaultMaxDownloadPages = 1000
)

// Downloader writes every page of a search to a TSV file laid out by a
// table configuration.
type Downloader[T any] struct {
	kind        domain.SearchKind
	searcher    driven.Searcher[T]
	table       domain.TableConfig
	dir         string
	concurrency int
	maxPages    int
	now         func() time.Time
	log         *logger.Logger
}

var _ driven.Downloader = (*Downloader[domain.Gene])(nil)

// NewDownloader creates a downloader writing into dir.
func NewDownloader[T any](
	kind domain.SearchKind,
	searcher driven.Searcher[T],
	table domain.TableConfig,
	dir string,
) *Downloader[T] {
	return &Downloader[T]{
		kind:        kind,
		searcher:    searcher,
		table:       table,
		dir:         dir,
		concurrency: DefaultDownloadConcurrency,
		maxPages:    DefaultMaxDownloadPages,
		now:         time.Now,
		log:         logger.For("download/" + kind.String()),
	}
}

// Download fetches all pages of req and writes them to a new file.
// Data errors from any page abort the download and are reported in the
// result; no file is written.
func (d *Downloader[T]) Download(ctx context.Context, req domain.SearchRequest) (domain.DownloadResult, error) {
	first, err := d.searcher.Search(ctx, req.WithPage(1))
	if err != nil {
		return domain.DownloadResult{}, fmt.Errorf("page 1: %w", err)
	}
	if len(first.Errors) > 0 {
		return domain.DownloadResult{Errors: first.Errors}, nil
	}

	var pages [][]T
	if n, ok := pageCount(first); ok {
		pages, err = d.fetchConcurrent(ctx, req, first, min(n, d.maxPages))
	} else {
		pages, err = d.fetchSequential(ctx, req, first)
	}
	if err != nil {
		var dataErr *domain.DataError
		if errors.As(err, &dataErr) {
			return domain.DownloadResult{Errors: dataErr.Messages}, nil
		}
		return domain.DownloadResult{}, err
	}

	path, err := d.write(pages)
	if err != nil {
		return domain.DownloadResult{}, err
	}
	return domain.DownloadResult{Path: path}, nil
}

// pageCount returns the number of pages the source reported, directly
// or through its result and page size counts.
func pageCount[T any](r domain.PaginatedSearchResult[T]) (int, bool) {
	if r.NumPages != nil {
		return *r.NumPages, true
	}
	if r.NumResults != nil && r.PageSize != nil && *r.PageSize > 0 {
		return (*r.NumResults + *r.PageSize - 1) / *r.PageSize, true
	}
	return 0, false
}

func (d *Downloader[T]) fetchConcurrent(
	ctx context.Context, req domain.SearchRequest, first domain.PaginatedSearchResult[T], n int,
) ([][]T, error) {
	pages := make([][]T, max(n, 1))
	pages[0] = first.Results
	d.log.Debug("fetching %d pages", n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for page := 2; page <= n; page++ {
		g.Go(func() error {
			result, err := d.searcher.Search(gctx, req.WithPage(page))
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			if len(result.Errors) > 0 {
				return &domain.DataError{Messages: result.Errors}
			}
			pages[page-1] = result.Results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (d *Downloader[T]) fetchSequential(
	ctx context.Context, req domain.SearchRequest, first domain.PaginatedSearchResult[T],
) ([][]T, error) {
	pages := [][]T{first.Results}
	current := first
	for page := 2; current.NextPageExists() && page <= d.maxPages; page++ {
		result, err := d.searcher.Search(ctx, req.WithPage(page))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(result.Errors) > 0 {
			return nil, &domain.DataError{Messages: result.Errors}
		}
		if len(result.Results) == 0 {
			break
		}
		pages = append(pages, result.Results)
		current = result
	}
	return pages, nil
}

// write stores pages in a new TSV file, renaming it into place once
// complete.
func (d *Downloader[T]) write(pages [][]T) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	name := fmt.Sprintf("lis-%s-%s.tsv", d.kind, d.now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(d.dir, name)

	tmp, err := os.CreateTemp(d.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	w.Comma = '\t'
	rows := 0
	if err := w.Write(d.table.Headers()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, page := range pages {
		for _, result := range page {
			row, err := d.table.Row(result)
			if err != nil {
				tmp.Close()
				return "", fmt.Errorf("row %d: %w", rows+1, err)
			}
			if err := w.Write(row); err != nil {
				tmp.Close()
				return "", fmt.Errorf("write row %d: %w", rows+1, err)
			}
			rows++
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("flush download file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close download file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename download file: %w", err)
	}

	d.log.Debug("wrote %d rows to %s", rows, path)
	return path, nil
}
