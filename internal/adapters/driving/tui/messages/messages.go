// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// StateChanged is sent when a search controller's state changed.
// Views read the controller snapshot when they receive it.
type StateChanged struct {
	Kind domain.SearchKind
}

// Op names a controller operation started by the TUI.
type Op string

// Controller operations.
const (
	OpSubmit   Op = "submit"
	OpPage     Op = "page"
	OpAuto     Op = "auto"
	OpDownload Op = "download"
)

// ActionDone is sent when a controller operation returned.
type ActionDone struct {
	Kind domain.SearchKind
	Op   Op
	Err  error
}

// KindChanged is sent when the active search kind changes.
type KindChanged struct {
	Kind domain.SearchKind
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search form and results view.
	ViewSearch ViewType = iota
	// ViewSettings is the settings view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
