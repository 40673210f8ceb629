// Package core provides the tabular cleaning and conversion pipeline.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users can quote the code to support staff for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Unsupported type: only .csv and .xlsx files are accepted
//	          Action: Save the file as CSV or Excel (.xlsx) and upload it again
//	          Match: *FormatError
//
//	FILE002 - Invalid CSV: the file could not be parsed as CSV
//	          Action: Ensure the file is comma-separated with a header row
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: the file contains unreadable characters
//	          Action: Save the file as UTF-8
//	          Patterns: "encoding error", "invalid utf"
//
//	FILE004 - No file: no file was selected
//	          Action: Select one or more files to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: the file has no header row
//	          Action: Upload a file with a header row
//	          Match: ErrEmptyFile
//
//	FILE006 - File too large
//	          Action: Split the file into smaller files
//	          Match: ErrFileTooLarge; Patterns: "file too large", "request body too large"
//
// # Workbook Errors (XLS001)
//
//	XLS001 - Unreadable workbook: the Excel file is corrupt or not .xlsx
//	         Action: Re-save the workbook in Excel as .xlsx
//	         Patterns: "invalid workbook"
//
// # Export Errors (EXP001)
//
//	EXP001 - Export failed
//	         Action: Try the other format or contact support
//	         Match: *SerializationError
//
// # Column Errors (COL001)
//
//	COL001 - Unknown column
//	         Action: Reload the page and pick columns again
//	         Match: ErrUnknownColumn
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Too many files in one upload
//	UPL002 - System busy: too many uploads in progress
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//
// # Form Errors (FORM001)
//
//	FORM001 - Submitted per-file options could not be read
//	          Action: Reload the page and try again
//	          Patterns: "invalid form"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check the logs for the
// technical error, which carries the request ID.
//
// Typed errors are matched first with errors.As / errors.Is. Remaining
// errors are matched case-insensitively with strings.Contains; the first
// matching pattern wins, so specific patterns come before general ones.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUnsupported = UserMessage{
		Message: "Unsupported file type",
		Action:  "Save the file as CSV or Excel (.xlsx) and upload it again",
		Code:    "FILE001",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row",
		Code:    "FILE005",
	}
	msgTooLarge = UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller files",
		Code:    "FILE006",
	}
	msgExport = UserMessage{
		Message: "The file could not be converted",
		Action:  "Try the other format or contact support",
		Code:    "EXP001",
	}
	msgUnknownColumn = UserMessage{
		Message: "A selected column does not exist in this file",
		Action:  "Reload the page and pick columns again",
		Code:    "COL001",
	}
	msgTooManyFiles = UserMessage{
		Message: "Too many files in one upload",
		Action:  "Upload fewer files at a time",
		Code:    "UPL001",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that carry no type.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "The Excel file could not be read",
			Action:  "Re-save the workbook in Excel as .xlsx",
			Code:    "XLS001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains unreadable characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid utf",
		msg: UserMessage{
			Message: "File contains unreadable characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select one or more CSV or Excel files to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The submitted options could not be read",
			Action:  "Reload the page and try again",
			Code:    "FORM001",
		},
	},
	{pattern: "file too large", msg: msgTooLarge},
	{pattern: "request body too large", msg: msgTooLarge},
	{pattern: "too many concurrent", msg: msgBusy},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := DetectFormat("data.txt")
//	msg := MapError(err)
//	// msg.Code == "FILE001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		fe *FormatError
		se *SerializationError
	)
	switch {
	case errors.As(err, &fe):
		msg := msgUnsupported
		if fe.Ext != "" {
			msg.Message = fmt.Sprintf("Unsupported file type: %s", fe.Ext)
		}
		return msg
	case errors.Is(err, ErrEmptyFile):
		return msgEmptyFile
	case errors.Is(err, ErrFileTooLarge):
		return msgTooLarge
	case errors.As(err, &se):
		return msgExport
	case errors.Is(err, ErrUnknownColumn):
		return msgUnknownColumn
	case errors.Is(err, ErrTooManyFiles):
		return msgTooManyFiles
	case errors.Is(err, ErrTooManyUploads):
		return msgBusy
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
