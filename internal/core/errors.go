package core

import (
	"errors"
	"fmt"
)

// FetchError reports that the feed could not be retrieved: a non-success
// HTTP status, an empty body or a transport failure.
type FetchError struct {
	StatusCode int    // HTTP status, 0 when no response was received
	Message    string // Human-readable description
	Err        error  // Underlying cause, if any
}

func (e *FetchError) Error() string {
	if e.Err != nil && e.Message == "" {
		return "fetch feed: " + e.Err.Error()
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports that the CSV text could not be tokenized at all.
// Per-row problems never produce a ParseError.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Failed to parse CSV: %s: %v", e.Message, e.Err)
	}
	return "Failed to parse CSV: " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrFeedTooLarge is returned when a feed exceeds the configured byte limit.
var ErrFeedTooLarge = errors.New("feed exceeds maximum size")

// IsLoadFailure reports whether err aborts a whole load, which is the case
// for fetch failures and catastrophic parse failures alike.
func IsLoadFailure(err error) bool {
	var fe *FetchError
	var pe *ParseError
	return errors.As(err, &fe) || errors.As(err, &pe)
}
