package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Operators quote the code; support looks it up here.
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - Unsupported file type: only .csv, .tsv, .tab and .txt are read
//	PARSE002 - Binary content: the file is a spreadsheet or archive, not text
//	PARSE003 - Empty file: no header row was found
//
// # Import Session Errors (IMP001-IMP099)
//
//	IMP001 - File too large
//	IMP002 - Too many concurrent imports
//	IMP003 - Import session not found or expired
//	IMP004 - Import blocked by unmapped required fields
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Unknown canonical field
//	MAP002 - Unknown source column
//
// # Duplicate Errors (DUP001-DUP099)
//
//	DUP001 - No duplicate at the given row
//	DUP002 - Invalid resolution
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key
//	DB002 - Unique constraint
//	DB003 - Foreign key
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request body or parameter
//	REQ002 - No file in the upload
//	REQ003 - Request cancelled
//	REQ004 - Request timed out
//
// # Rate Limiting (RATE001) and Default (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones. When a user
// reports ERR000, check the application log for the original error.

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

var errorPatterns = []errorPattern{
	// =========================================================================
	// Parse Errors (PARSE001-PARSE003)
	// =========================================================================
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Export the roster as CSV or TSV and upload it again",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "binary content",
		msg: UserMessage{
			Message: "The file is not plain delimited text",
			Action:  "Save spreadsheets as CSV before uploading",
			Code:    "PARSE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row and client rows",
			Code:    "PARSE003",
		},
	},

	// =========================================================================
	// Import Session Errors (IMP001-IMP004)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the roster into smaller files",
			Code:    "IMP001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the roster into smaller files",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "import session not found",
		msg: UserMessage{
			Message: "Import session not found",
			Action:  "The import may have expired. Please upload the file again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "import is blocked",
		msg: UserMessage{
			Message: "Required fields are not mapped to any column",
			Action:  "Map a column to every required field before committing",
			Code:    "IMP004",
		},
	},

	// =========================================================================
	// Mapping Errors (MAP001-MAP002)
	// =========================================================================
	{
		pattern: "unknown canonical field",
		msg: UserMessage{
			Message: "That field does not exist",
			Action:  "Choose one of the fields listed by /api/fields",
			Code:    "MAP001",
		},
	},
	{
		pattern: "unknown source column",
		msg: UserMessage{
			Message: "That column is not in the uploaded file",
			Action:  "Use a header exactly as it appears in the file",
			Code:    "MAP002",
		},
	},

	// =========================================================================
	// Duplicate Errors (DUP001-DUP002)
	// =========================================================================
	{
		pattern: "duplicate not found",
		msg: UserMessage{
			Message: "No duplicate exists for that row",
			Action:  "Refresh the import report and try again",
			Code:    "DUP001",
		},
	},
	{
		pattern: "invalid resolution",
		msg: UserMessage{
			Message: "Unknown duplicate resolution",
			Action:  "Use skip, overwrite or unresolved",
			Code:    "DUP002",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB007)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A client with this ID already exists",
			Action:  "Upload the file again to refresh duplicate detection",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Upload the file again to refresh duplicate detection",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ004)
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body and parameters",
			Code:    "REQ001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Attach the roster in the \"file\" form field",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ004",
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
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
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

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
