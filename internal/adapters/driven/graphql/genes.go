package graphql

import (
	"context"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
)

var _ driven.Searcher[domain.Gene] = (*GeneSearcher)(nil)

var geneSearchQuery = MustParseQuery(`
query GeneSearch(
  $genus: String, $species: String, $strain: String,
  $identifier: String, $name: String, $description: String, $family: String,
  $page: Int, $pageSize: Int
) {
  geneSearch(
    genus: $genus, species: $species, strain: $strain,
    identifier: $identifier, name: $name, description: $description,
    geneFamilyIdentifier: $family, page: $page, pageSize: $pageSize
  ) {
    results {
      identifier
      name
      description
      genus
      species
      strain
      geneFamilyAssignments { geneFamily { identifier } }
      locations { chromosomeIdentifier start end strand }
    }
    pageInfo { currentPage pageSize numResults numPages hasNextPage }
  }
}`)

type geneWire struct {
	Identifier            string `json:"identifier"`
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Genus                 string `json:"genus"`
	Species               string `json:"species"`
	Strain                string `json:"strain"`
	GeneFamilyAssignments []struct {
		GeneFamily struct {
			Identifier string `json:"identifier"`
		} `json:"geneFamily"`
	} `json:"geneFamilyAssignments"`
	Locations []struct {
		ChromosomeIdentifier string `json:"chromosomeIdentifier"`
		Start                int    `json:"start"`
		End                  int    `json:"end"`
		Strand               string `json:"strand"`
	} `json:"locations"`
}

type geneData struct {
	GeneSearch *connection[geneWire] `json:"geneSearch"`
}

func (w geneWire) gene() domain.Gene {
	g := domain.Gene{
		Identifier:  w.Identifier,
		Name:        w.Name,
		Description: w.Description,
		Genus:       w.Genus,
		Species:     w.Species,
		Strain:      w.Strain,
	}
	if len(w.GeneFamilyAssignments) > 0 {
		g.GeneFamily = w.GeneFamilyAssignments[0].GeneFamily.Identifier
	}
	for _, loc := range w.Locations {
		g.Locations = append(g.Locations, domain.Location{
			Chromosome: loc.ChromosomeIdentifier,
			Start:      loc.Start,
			End:        loc.End,
			Strand:     loc.Strand,
		})
	}
	return g
}

// GeneSearcher searches LIS genes.
type GeneSearcher struct {
	client   *Client
	pageSize int
}

// NewGeneSearcher creates a gene searcher requesting pageSize results
// per page. A pageSize of 0 leaves the server default.
func NewGeneSearcher(client *Client, pageSize int) *GeneSearcher {
	return &GeneSearcher{client: client, pageSize: pageSize}
}

// Search runs one page of a gene search.
func (s *GeneSearcher) Search(ctx context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[domain.Gene], error) {
	return runSearch(ctx, s.client, geneSearchQuery,
		variables(domain.SearchKindGenes, req, s.pageSize),
		func(d geneData) *connection[geneWire] { return d.GeneSearch },
		geneWire.gene,
	)
}
