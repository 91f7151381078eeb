package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source file not found          Patterns: "source file not found"
//	SRC002 - Unsupported file format        Patterns: "unsupported file format"
//	SRC003 - File too large                 Patterns: "source file too large", "request body too large"
//	SRC004 - Sheet not found                Patterns: "sheet not found"
//	SRC005 - No file provided               Patterns: "no file provided"
//	SRC006 - Unreadable file                Patterns: "read csv", "open workbook", "read sheet"
//
// # Merge Errors (KEY001-KEY099)
//
//	KEY001 - No key column                  Patterns: "unresolvable key"
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Stored data unreadable         Patterns: "storage read failure"
//	STO002 - Stored data not saved          Patterns: "storage write failure"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Import busy                    Patterns: "another import is in progress"
//	IMP002 - Import not found               Patterns: "import not found"
//	IMP003 - Request cancelled              Patterns: "context canceled"
//	IMP004 - Request timeout                Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests             Patterns: "rate limit"
//
// # Default (ERR000)
//
// Fallback when no pattern matches; check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Source errors
	{
		pattern: "source file not found",
		msg: UserMessage{
			Message: "The spreadsheet to import was not found",
			Action:  "Check the configured source path or upload the file instead",
			Code:    "SRC001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .xlsx, .xlsm or .csv file",
			Code:    "SRC002",
		},
	},
	{
		pattern: "source file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum size",
			Action:  "Split the file into smaller parts",
			Code:    "SRC003",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum size",
			Action:  "Split the file into smaller parts",
			Code:    "SRC003",
		},
	},
	{
		pattern: "sheet not found",
		msg: UserMessage{
			Message: "The configured sheet does not exist in the workbook",
			Action:  "Check the sheet name or leave it empty to use the first sheet",
			Code:    "SRC004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a spreadsheet to upload",
			Code:    "SRC005",
		},
	},
	{
		pattern: "read csv",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Save the file again as CSV (UTF-8) or Excel workbook and retry",
			Code:    "SRC006",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Save the file again as CSV (UTF-8) or Excel workbook and retry",
			Code:    "SRC006",
		},
	},
	{
		pattern: "read sheet",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Save the file again as CSV (UTF-8) or Excel workbook and retry",
			Code:    "SRC006",
		},
	},

	// Merge errors
	{
		pattern: "unresolvable key",
		msg: UserMessage{
			Message: "No key column could be chosen because the first row has no columns",
			Action:  "Make sure the first row of the sheet holds column headers",
			Code:    "KEY001",
		},
	},

	// Storage errors
	{
		pattern: "storage read failure",
		msg: UserMessage{
			Message: "The stored records could not be read",
			Action:  "Nothing was changed. Check the storage backend and try again",
			Code:    "STO001",
		},
	},
	{
		pattern: "storage write failure",
		msg: UserMessage{
			Message: "The merged records could not be saved",
			Action:  "The previous records are unchanged. Please try again",
			Code:    "STO002",
		},
	},

	// Import errors
	{
		pattern: "another import is in progress",
		msg: UserMessage{
			Message: "Another import is in progress",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "import not found",
		msg: UserMessage{
			Message: "Import not found",
			Action:  "Only recent imports are kept; check the import list",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "IMP004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
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

// FormatUserError renders an error as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
