package domain

import "time"

const unknownDescription = "Unknown"

// DefaultEndpoint is the public LIS GraphQL endpoint.
const DefaultEndpoint = "https://graphql.lis.ncgr.org/"

// APISettings holds GraphQL API client configuration.
type APISettings struct {
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string

	// Token is an optional bearer token.
	Token string

	// Rate is the maximum number of requests per second.
	Rate float64

	// MaxRetries bounds retries of failed requests.
	MaxRetries int

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration
}

// IsConfigured returns true if an endpoint is set.
func (a APISettings) IsConfigured() bool {
	return a.Endpoint != ""
}

// SearchSettings holds the configuration of one search kind.
type SearchSettings struct {
	// Required lists the field groups that justify an automatic search.
	Required RequiredGroups

	// Table lays out the result table.
	Table TableConfig

	// PageSize is the number of results requested per page.
	PageSize int
}

// HistorySettings holds navigation history configuration.
type HistorySettings struct {
	// Persist stores query string history in the metadata database.
	Persist bool

	// WatchLocation treats edits to the location file by other
	// processes as navigation.
	WatchLocation bool
}

// DownloadSettings holds download configuration.
type DownloadSettings struct {
	// Dir is where downloaded result files are written.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	API      APISettings
	Searches map[SearchKind]SearchSettings
	History  HistorySettings
	Download DownloadSettings
}

// Search returns the settings for a kind, falling back to defaults.
func (s AppSettings) Search(kind SearchKind) SearchSettings {
	if ss, ok := s.Searches[kind]; ok {
		return ss
	}
	return DefaultSearchSettings(kind)
}

// DefaultSearchSettings returns the built-in configuration of a kind.
func DefaultSearchSettings(kind SearchKind) SearchSettings {
	switch kind {
	case SearchKindGenes:
		return SearchSettings{
			Required: RequiredGroups{{"genus"}, {"species"}, {"identifier"}, {"name"}, {"description"}, {"family"}},
			Table: TableConfig{
				Attributes: []string{"identifier", "name", "genus", "species", "description"},
				Header: map[string]string{
					"identifier":  "Identifier",
					"name":        "Name",
					"genus":       "Genus",
					"species":     "Species",
					"description": "Description",
				},
				ColumnClasses: map[string]string{"description": "truncate"},
			},
			PageSize: 10,
		}
	case SearchKindTraits:
		return SearchSettings{
			Required: RequiredGroups{{"genus"}, {"species"}, {"name"}},
			Table: TableConfig{
				Attributes: []string{"name", "genus", "species", "studyType", "studyName"},
				Header: map[string]string{
					"name":      "Name",
					"genus":     "Genus",
					"species":   "Species",
					"studyType": "Study type",
					"studyName": "Study",
				},
			},
			PageSize: 10,
		}
	default:
		return SearchSettings{PageSize: 10}
	}
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	searches := make(map[SearchKind]SearchSettings)
	for _, kind := range SearchKinds() {
		searches[kind] = DefaultSearchSettings(kind)
	}
	return AppSettings{
		API: APISettings{
			Endpoint:   DefaultEndpoint,
			Rate:       5,
			MaxRetries: 3,
			Timeout:    30 * time.Second,
		},
		Searches: searches,
		History: HistorySettings{
			Persist:       true,
			WatchLocation: true,
		},
	}
}

// HistoryEntry is one persisted query string navigation.
type HistoryEntry struct {
	ID        string
	Kind      SearchKind
	Query     string
	CreatedAt time.Time
}
