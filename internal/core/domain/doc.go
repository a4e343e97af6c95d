// Package domain defines the core types of the LIS search controllers.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchRequest: the parsed form submission driving one search
//   - SearchResult / PaginatedSearchResult: the shape a search function returns
//   - SearchState / PageState / Snapshot: controller state seen by renderers
//   - Gene / Trait: the LIS entities returned by the bundled searches
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
