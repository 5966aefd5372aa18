// Package core provides the business logic for turning raw reference tables
// into grid payloads.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When a page fails to show a grid, the code in the response identifies why.
//
// Error codes are grouped by category:
//
// # Data Source Errors (SRC001-SRC099)
//
//	SRC001 - Source not found: The data behind this tab is missing
//	         Action: Check that the data file or table exists
//	         Patterns: "data source not found"
//
//	SRC002 - Source unreadable: The data behind this tab could not be read
//	         Action: Check the file format and server logs
//	         Patterns: "data source unreadable"
//
//	SRC003 - Unknown page: The requested page does not exist
//	         Action: Verify the page name is correct
//	         Patterns: "unknown page"
//
//	SRC004 - No data: No data source could be loaded
//	         Action: Check the catalog and data directory
//	         Patterns: "no data sources loaded"
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Row not found: The selected row does not exist
//	         Action: Reload the grid and try again
//	         Patterns: "row not found"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Action: Please try again later
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again later
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Data Source Errors (SRC001-SRC004)
	// =========================================================================
	{
		pattern: "no data sources loaded",
		msg: UserMessage{
			Message: "No data could be loaded",
			Action:  "Check the catalog and data directory",
			Code:    "SRC004",
		},
	},
	{
		pattern: "data source not found",
		msg: UserMessage{
			Message: "The data behind this tab is missing",
			Action:  "Check that the data file or table exists",
			Code:    "SRC001",
		},
	},
	{
		pattern: "data source unreadable",
		msg: UserMessage{
			Message: "The data behind this tab could not be read",
			Action:  "Check the file format and server logs",
			Code:    "SRC002",
		},
	},
	{
		pattern: "unknown page",
		msg: UserMessage{
			Message: "The requested page does not exist",
			Action:  "Verify the page name is correct",
			Code:    "SRC003",
		},
	},

	// =========================================================================
	// Row Errors (ROW001)
	// =========================================================================
	{
		pattern: "row not found",
		msg: UserMessage{
			Message: "The selected row does not exist",
			Action:  "Reload the grid and try again",
			Code:    "ROW001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again later",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("lookup: %w", core.ErrRowNotFound)
//	msg := MapError(err)
//	// msg.Code == "ROW001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
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

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
