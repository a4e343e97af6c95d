package graphql

import (
	"context"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
)

var _ driven.Searcher[domain.Trait] = (*TraitSearcher)(nil)

var traitSearchQuery = MustParseQuery(`
query TraitSearch($genus: String, $species: String, $name: String, $page: Int, $pageSize: Int) {
  traitSearch(genus: $genus, species: $species, name: $name, page: $page, pageSize: $pageSize) {
    results {
      identifier
      name
      description
      organism { genus species }
      qtlStudy { identifier }
      gwas { identifier }
    }
    pageInfo { currentPage pageSize numResults numPages hasNextPage }
  }
}`)

type studyRef struct {
	Identifier string `json:"identifier"`
}

type traitWire struct {
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Organism    *struct {
		Genus   string `json:"genus"`
		Species string `json:"species"`
	} `json:"organism"`
	QTLStudy *studyRef `json:"qtlStudy"`
	GWAS     *studyRef `json:"gwas"`
}

type traitData struct {
	TraitSearch *connection[traitWire] `json:"traitSearch"`
}

func (w traitWire) trait() domain.Trait {
	t := domain.Trait{
		Identifier:  w.Identifier,
		Name:        w.Name,
		Description: w.Description,
	}
	if w.Organism != nil {
		t.Genus = w.Organism.Genus
		t.Species = w.Organism.Species
	}
	switch {
	case w.QTLStudy != nil:
		t.StudyType = "QTL"
		t.StudyName = w.QTLStudy.Identifier
	case w.GWAS != nil:
		t.StudyType = "GWAS"
		t.StudyName = w.GWAS.Identifier
	}
	return t
}

// TraitSearcher searches LIS traits.
type TraitSearcher struct {
	client   *Client
	pageSize int
}

// NewTraitSearcher creates a trait searcher.
func NewTraitSearcher(client *Client, pageSize int) *TraitSearcher {
	return &TraitSearcher{client: client, pageSize: pageSize}
}

// Search runs one page of a trait search.
func (s *TraitSearcher) Search(ctx context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[domain.Trait], error) {
	return runSearch(ctx, s.client, traitSearchQuery,
		variables(domain.SearchKindTraits, req, s.pageSize),
		func(d traitData) *connection[traitWire] { return d.TraitSearch },
		traitWire.trait,
	)
}
