package driving

import "github.com/legumeinfo/lis-search/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEndpoint updates the GraphQL endpoint.
	SetEndpoint(endpoint string) error

	// SetRequiredGroups updates the required field groups of a search kind.
	SetRequiredGroups(kind domain.SearchKind, groups domain.RequiredGroups) error

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
