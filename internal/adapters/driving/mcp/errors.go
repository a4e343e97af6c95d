// Package mcp provides an MCP (Model Context Protocol) server adapter for lis-search.
// It lets AI assistants run paginated LIS searches and read search history.
package mcp

import "errors"

// ErrMissingSearchController is returned when no search controller is provided.
var ErrMissingSearchController = errors.New("mcp: at least one search controller is required")

// ErrSuperseded is returned when a tool call was overtaken by a newer
// request to the same controller.
var ErrSuperseded = errors.New("mcp: search superseded by a newer request")
