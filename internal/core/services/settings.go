package services

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAPIEndpoint   = "api.endpoint"
	keyAPIToken      = "api.token"
	keyAPIRate       = "api.rate"
	keyAPIMaxRetries = "api.max_retries"
	keyAPITimeout    = "api.timeout"

	keyHistoryPersist = "history.persist"
	keyHistoryWatch   = "history.watch_location"
	keyDownloadDir    = "download.dir"

	// Per-kind keys live under "search.<kind>.".
	keySearchRequired    = "required"
	keySearchAttributes  = "result_attributes"
	keySearchTableHeader = "table_header"
	keySearchColumnClass = "table_column_classes"
	keySearchPageSize    = "page_size"
)

func searchKey(kind domain.SearchKind, name string) string {
	return "search." + kind.String() + "." + name
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Absent or malformed
// values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		API: domain.APISettings{
			Endpoint:   s.getString(keyAPIEndpoint, defaults.API.Endpoint),
			Token:      s.configStore.GetString(keyAPIToken),
			Rate:       s.getPositiveFloat(keyAPIRate, defaults.API.Rate),
			MaxRetries: s.getInt(keyAPIMaxRetries, defaults.API.MaxRetries),
			Timeout:    s.getDuration(keyAPITimeout, defaults.API.Timeout),
		},
		Searches: make(map[domain.SearchKind]domain.SearchSettings),
		History: domain.HistorySettings{
			Persist:       s.getBool(keyHistoryPersist, defaults.History.Persist),
			WatchLocation: s.getBool(keyHistoryWatch, defaults.History.WatchLocation),
		},
		Download: domain.DownloadSettings{
			Dir: s.getString(keyDownloadDir, defaults.Download.Dir),
		},
	}

	for _, kind := range domain.SearchKinds() {
		settings.Searches[kind] = s.getSearch(kind, defaults.Search(kind))
	}

	return settings, nil
}

func (s *SettingsService) getSearch(kind domain.SearchKind, def domain.SearchSettings) domain.SearchSettings {
	ss := def

	if v, ok := s.configStore.Get(searchKey(kind, keySearchRequired)); ok {
		if groups, ok := toGroups(v); ok {
			ss.Required = groups
		}
	}
	if attrs := s.configStore.GetStringSlice(searchKey(kind, keySearchAttributes)); len(attrs) > 0 {
		ss.Table.Attributes = attrs
	}
	if header := s.configStore.GetStringMap(searchKey(kind, keySearchTableHeader)); header != nil {
		ss.Table.Header = header
	}
	if classes := s.configStore.GetStringMap(searchKey(kind, keySearchColumnClass)); classes != nil {
		ss.Table.ColumnClasses = classes
	}
	if size := s.configStore.GetInt(searchKey(kind, keySearchPageSize)); size > 0 {
		ss.PageSize = size
	}

	return ss
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save API settings
	if err := s.configStore.Set(keyAPIEndpoint, settings.API.Endpoint); err != nil {
		return fmt.Errorf("save api endpoint: %w", err)
	}
	if err := s.configStore.Set(keyAPIToken, settings.API.Token); err != nil {
		return fmt.Errorf("save api token: %w", err)
	}
	if err := s.configStore.Set(keyAPIRate, settings.API.Rate); err != nil {
		return fmt.Errorf("save api rate: %w", err)
	}
	if err := s.configStore.Set(keyAPIMaxRetries, settings.API.MaxRetries); err != nil {
		return fmt.Errorf("save api max_retries: %w", err)
	}
	if err := s.configStore.Set(keyAPITimeout, settings.API.Timeout.String()); err != nil {
		return fmt.Errorf("save api timeout: %w", err)
	}

	// Save per-kind search settings
	for kind, ss := range settings.Searches {
		groups := make([][]string, len(ss.Required))
		copy(groups, ss.Required)
		if err := s.configStore.Set(searchKey(kind, keySearchRequired), groups); err != nil {
			return fmt.Errorf("save %s required: %w", kind, err)
		}
		if err := s.configStore.Set(searchKey(kind, keySearchAttributes), ss.Table.Attributes); err != nil {
			return fmt.Errorf("save %s result_attributes: %w", kind, err)
		}
		if len(ss.Table.Header) > 0 {
			if err := s.configStore.Set(searchKey(kind, keySearchTableHeader), ss.Table.Header); err != nil {
				return fmt.Errorf("save %s table_header: %w", kind, err)
			}
		}
		if len(ss.Table.ColumnClasses) > 0 {
			if err := s.configStore.Set(searchKey(kind, keySearchColumnClass), ss.Table.ColumnClasses); err != nil {
				return fmt.Errorf("save %s table_column_classes: %w", kind, err)
			}
		}
		if err := s.configStore.Set(searchKey(kind, keySearchPageSize), ss.PageSize); err != nil {
			return fmt.Errorf("save %s page_size: %w", kind, err)
		}
	}

	// Save history and download settings
	if err := s.configStore.Set(keyHistoryPersist, settings.History.Persist); err != nil {
		return fmt.Errorf("save history persist: %w", err)
	}
	if err := s.configStore.Set(keyHistoryWatch, settings.History.WatchLocation); err != nil {
		return fmt.Errorf("save history watch_location: %w", err)
	}
	if settings.Download.Dir != "" {
		if err := s.configStore.Set(keyDownloadDir, settings.Download.Dir); err != nil {
			return fmt.Errorf("save download dir: %w", err)
		}
	}

	return nil
}

// SetEndpoint updates the GraphQL endpoint.
func (s *SettingsService) SetEndpoint(endpoint string) error {
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}
	return s.configStore.Set(keyAPIEndpoint, endpoint)
}

// SetRequiredGroups updates the required field groups of a search kind.
func (s *SettingsService) SetRequiredGroups(kind domain.SearchKind, groups domain.RequiredGroups) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, kind)
	}
	if err := validateGroups(kind, groups); err != nil {
		return err
	}
	value := make([][]string, len(groups))
	copy(value, groups)
	return s.configStore.Set(searchKey(kind, keySearchRequired), value)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if err := validateEndpoint(settings.API.Endpoint); err != nil {
		errs = append(errs, err)
	}
	if settings.API.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%w: api.max_retries must not be negative", domain.ErrInvalidInput))
	}
	for _, kind := range domain.SearchKinds() {
		if err := validateGroups(kind, settings.Search(kind).Required); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: api.endpoint is not set", domain.ErrInvalidInput)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: api.endpoint: %v", domain.ErrInvalidInput, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.endpoint must be an http(s) URL: %q", domain.ErrInvalidInput, endpoint)
	}
	return nil
}

func validateGroups(kind domain.SearchKind, groups domain.RequiredGroups) error {
	for i, group := range groups {
		if len(group) == 0 {
			return fmt.Errorf("%w: %s required group %d is empty", domain.ErrInvalidInput, kind, i)
		}
		for _, field := range group {
			if field == "" || field == domain.PageParameter {
				return fmt.Errorf("%w: %s required group %d has invalid field %q",
					domain.ErrInvalidInput, kind, i, field)
			}
		}
	}
	return nil
}

// toGroups converts a stored array of arrays. TOML decodes it as
// []any of []any; in-memory stores may hold [][]string.
func toGroups(v any) (domain.RequiredGroups, bool) {
	switch groups := v.(type) {
	case domain.RequiredGroups:
		return groups, true
	case [][]string:
		return groups, true
	case []any:
		out := make(domain.RequiredGroups, 0, len(groups))
		for _, g := range groups {
			items, ok := g.([]any)
			if !ok {
				return nil, false
			}
			group := make([]string, 0, len(items))
			for _, item := range items {
				str, ok := item.(string)
				if !ok {
					return nil, false
				}
				group = append(group, str)
			}
			out = append(out, group)
		}
		return out, true
	default:
		return nil, false
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getPositiveFloat(key string, defaultVal float64) float64 {
	if val := s.configStore.GetFloat(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
