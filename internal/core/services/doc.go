// Package services implements the driving port interfaces.
//
// SearchController and PaginatedSearchController run the lifecycle of a
// search form. Each request gets a new generation from a CancelToken;
// only the newest generation may change state, so a slow response that
// arrives after a newer request is dropped. SettingsService reads and
// writes application settings through a driven ConfigStore.
//
// Services are pure Go with no CGO or external dependencies.
package services
