package tui

import "errors"

// ErrMissingSearchController is returned when no search controller is provided.
var ErrMissingSearchController = errors.New("tui: at least one search controller is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
