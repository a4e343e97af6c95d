package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/legumeinfo/lis-search/internal/adapters/driven/config/file"
	"github.com/legumeinfo/lis-search/internal/adapters/driven/graphql"
	"github.com/legumeinfo/lis-search/internal/adapters/driven/metrics"
	"github.com/legumeinfo/lis-search/internal/adapters/driven/querystring"
	"github.com/legumeinfo/lis-search/internal/adapters/driven/storage/memory"
	"github.com/legumeinfo/lis-search/internal/adapters/driven/storage/sqlite"
	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
	"github.com/legumeinfo/lis-search/internal/core/services"
)

// Wire builds the production services rooted at dir. An empty dir means
// ~/.lis-search.
func Wire(dir string) (*Services, error) {
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		dir = d
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	s := &Services{
		Settings:  settingsService,
		Locations: make(map[domain.SearchKind]driving.Location),
	}

	var history driven.HistoryStore
	if settings.History.Persist {
		db, err := sqlite.NewStore(filepath.Join(dir, "data"))
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		history = db.HistoryStore()
	} else {
		history = memory.NewHistoryStore()
	}
	s.History = history

	client, err := graphql.NewClient(settings.API)
	if err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}

	collector := metrics.NewCollector(version)
	s.Metrics = collector.Handler()

	stores := make(map[domain.SearchKind]*querystring.Store)
	for _, kind := range domain.SearchKinds() {
		store := querystring.NewStore(kind, nil)
		store.SetHistoryStore(history)
		if err := store.AttachLocation(querystring.LocationPath(dir, kind)); err != nil {
			s.Close() //nolint:errcheck
			return nil, err
		}
		stores[kind] = store
		s.Locations[kind] = store
		s.closers = append(s.closers, store.Close)
	}

	if settings.History.WatchLocation {
		s.Watch = func(ctx context.Context) error {
			var errs []error
			for _, store := range stores {
				errs = append(errs, store.Watch(ctx))
			}
			return errors.Join(errs...)
		}
	}

	geneSettings := settings.Search(domain.SearchKindGenes)
	genes := graphql.NewGeneSearcher(client, geneSettings.PageSize)
	geneController := services.NewPaginatedSearchController[domain.Gene](
		domain.SearchKindGenes.String(), genes, stores[domain.SearchKindGenes], geneSettings.Required)
	geneController.SetDownloader(graphql.NewDownloader[domain.Gene](
		domain.SearchKindGenes, genes, geneSettings.Table, downloadDir(settings, dir)))
	geneController.SetMetrics(collector)
	s.Genes = geneController

	traitSettings := settings.Search(domain.SearchKindTraits)
	traits := graphql.NewTraitSearcher(client, traitSettings.PageSize)
	traitController := services.NewPaginatedSearchController[domain.Trait](
		domain.SearchKindTraits.String(), traits, stores[domain.SearchKindTraits], traitSettings.Required)
	traitController.SetDownloader(graphql.NewDownloader[domain.Trait](
		domain.SearchKindTraits, traits, traitSettings.Table, downloadDir(settings, dir)))
	traitController.SetMetrics(collector)
	s.Traits = traitController

	return s, nil
}

func downloadDir(settings *domain.AppSettings, dir string) string {
	if settings.Download.Dir != "" {
		return settings.Download.Dir
	}
	return filepath.Join(dir, "downloads")
}
