// Package querystring provides the QueryStringStore adapter: an
// in-process model of a browser location.
//
// The Store keeps the current query string and a back/forward history.
// SetParameters pushes a new location silently; Back, Forward and
// Navigate are external navigations and notify subscribers.
//
// A Store can mirror its location to a file. Writes the Store makes
// itself are recognised and ignored; edits made by anything else (for
// example another lis-search process) are followed as external
// navigation when the file is watched.
//
// Locations set by SetParameters or Navigate are optionally recorded in
// a driven.HistoryStore. Back and Forward are not recorded.
package querystring
