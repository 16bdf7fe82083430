package core

// error_messages.go maps load and row errors to user-facing messages with
// codes for support reference.
//
// # Fetch Errors (FETCH001-FETCH099)
//
//	FETCH001 - The job feed returned an error status
//	           Action: Check that the feed URL is public and try again
//	FETCH002 - The job feed is empty
//	           Action: Make sure the feed has a header row and at least one job
//	FETCH003 - The job feed could not be reached
//	           Action: Check your connection and try again
//	FETCH004 - No job feed is configured
//	           Action: Set JOBS_CSV_URL to the address of a CSV feed
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - The job feed is not valid CSV
//	CSV002 - The job feed is too large
//	CSV003 - The job feed has no header row
//
// # Row Validation Errors (VAL001-VAL099)
//
//	VAL001 - Title is required
//	VAL002 - Company is required
//	VAL003 - Minimum salary is greater than maximum salary
//	VAL004 - A field holds a value outside its allowed set
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application log for the
// technical error when users report ERR000.
//
// Typed errors (*FetchError, *ParseError, ValidationError) are classified
// first. Anything else is matched case-insensitively against errorPatterns,
// first match wins.

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgFetchStatus = UserMessage{
		Message: "The job feed returned an error",
		Action:  "Check that the feed URL is public and try again",
		Code:    "FETCH001",
	}
	msgFetchEmpty = UserMessage{
		Message: "The job feed is empty",
		Action:  "Make sure the feed has a header row and at least one job",
		Code:    "FETCH002",
	}
	msgFetchNetwork = UserMessage{
		Message: "The job feed could not be reached",
		Action:  "Check your connection and try again",
		Code:    "FETCH003",
	}
	msgNoSource = UserMessage{
		Message: "No job feed is configured",
		Action:  "Set JOBS_CSV_URL to the address of a CSV feed",
		Code:    "FETCH004",
	}
	msgInvalidCSV = UserMessage{
		Message: "The job feed is not valid CSV",
		Action:  "Ensure the feed is comma-separated with a header row",
		Code:    "CSV001",
	}
	msgTooLarge = UserMessage{
		Message: "The job feed is too large",
		Action:  "Split the feed or raise FETCH_MAX_BYTES",
		Code:    "CSV002",
	}
	msgNoHeader = UserMessage{
		Message: "The job feed has no header row",
		Action:  "Add a header row naming the columns (title, company, ...)",
		Code:    "CSV003",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps error text (case-insensitive) to user messages.
// Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "no csv url configured", msg: msgNoSource},
	{pattern: "csv file is empty", msg: msgFetchEmpty},
	{pattern: "failed to fetch csv", msg: msgFetchStatus},
	{pattern: "feed exceeds maximum size", msg: msgTooLarge},
	{pattern: "no header row", msg: msgNoHeader},
	{pattern: "failed to parse csv", msg: msgInvalidCSV},
	{pattern: "network error", msg: msgFetchNetwork},
	{pattern: "connection refused", msg: msgFetchNetwork},
	{pattern: "no such host", msg: msgFetchNetwork},
	{pattern: "context deadline exceeded", msg: msgFetchNetwork},
	{pattern: "timeout", msg: msgFetchNetwork},

	{
		pattern: "title is required",
		msg: UserMessage{
			Message: "Title is required",
			Action:  "Fill in the title column for every job",
			Code:    "VAL001",
		},
	},
	{
		pattern: "company is required",
		msg: UserMessage{
			Message: "Company is required",
			Action:  "Fill in the company column for every job",
			Code:    "VAL002",
		},
	},
	{
		pattern: "minimum salary cannot be greater",
		msg: UserMessage{
			Message: "Minimum salary is greater than maximum salary",
			Action:  "Swap or correct the salary columns",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid job data",
		msg: UserMessage{
			Message: "A field holds a value outside its allowed set",
			Action:  "Check the row against the feed column reference",
			Code:    "VAL004",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.StatusCode >= http.StatusBadRequest:
			msg := msgFetchStatus
			msg.Message = fmt.Sprintf("%s (HTTP %d)", msg.Message, fe.StatusCode)
			return msg
		case errors.Is(err, ErrFeedTooLarge):
			return msgTooLarge
		}
	}

	var pe *ParseError
	if errors.As(err, &pe) && !errors.Is(err, ErrFeedTooLarge) {
		if strings.Contains(pe.Message, "no header row") {
			return msgNoHeader
		}
		return msgInvalidCSV
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if fe != nil {
		return msgFetchNetwork
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
