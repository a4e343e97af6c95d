package domain

import (
	"errors"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown search kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrAborted indicates a request was superseded by a newer one.
	// It is swallowed at the controller boundary and never shown to users.
	ErrAborted = errors.New("aborted")

	// ErrNoRequest indicates a page change was requested before any
	// search request had been accepted.
	ErrNoRequest = errors.New("no search request accepted yet")

	// Configuration Errors.

	// ErrConfiguration is the parent of all caller-configuration mistakes.
	ErrConfiguration = errors.New("configuration error")

	// ErrNoSearchFunction indicates the controller was built without a searcher.
	ErrNoSearchFunction = &configError{msg: "no search function provided"}

	// ErrNoDownloadFunction indicates Download was called without a downloader.
	ErrNoDownloadFunction = &configError{msg: "no download function provided"}
)

type configError struct {
	msg string
}

func (e *configError) Error() string { return e.msg }

func (e *configError) Unwrap() error { return ErrConfiguration }

// DataErrorSeparator joins the messages of a DataError.
const DataErrorSeparator = "\n"

// DataError is reported when a search function resolved but listed
// errors in its payload. It is surfaced to the user, never returned.
type DataError struct {
	Messages []string
}

func (e *DataError) Error() string {
	return strings.Join(e.Messages, DataErrorSeparator)
}

// TransportError wraps a search or download failure that was not an abort.
// It is surfaced to the user and returned to the caller.
type TransportError struct {
	// Op is the operation that failed ("search" or "download").
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAborted reports whether err marks a superseded request.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}
