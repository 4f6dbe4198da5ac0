package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference. Patterns are matched case-insensitively
// with strings.Contains; the first matching pattern wins, so more specific
// patterns come before general ones.
//
// Code ranges:
//
//	FILE001-FILE099  upload and parsing
//	REL001-REL099    relations and the store
//	QRY001-QRY099    filter/aggregate interactions
//	ERR000           fallback

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
	// Upload and parsing (FILE001-FILE099)
	// =========================================================================
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a CSV, XLSX, JSON, or Parquet file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file or raise UPLOAD_MAX_FILE_SIZE",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse csv file",
		msg: UserMessage{
			Message: "The file could not be parsed as CSV",
			Action:  "Check the file is comma-separated with a header row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "parse xlsx file",
		msg: UserMessage{
			Message: "The file could not be parsed as a spreadsheet",
			Action:  "Check the file is a valid .xlsx workbook",
			Code:    "FILE004",
		},
	},
	{
		pattern: "parse xls file",
		msg: UserMessage{
			Message: "Legacy .xls workbooks are not supported",
			Action:  "Re-save the workbook as .xlsx and upload again",
			Code:    "FILE004",
		},
	},
	{
		pattern: "parse json file",
		msg: UserMessage{
			Message: "The file could not be parsed as tabular JSON",
			Action:  "Provide an array of records or an object of column arrays",
			Code:    "FILE005",
		},
	},
	{
		pattern: "parse parquet file",
		msg: UserMessage{
			Message: "The file could not be parsed as Parquet",
			Action:  "Check the file is a flat-schema Parquet file",
			Code:    "FILE006",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a file to upload",
			Code:    "FILE007",
		},
	},
	{
		pattern: "upload session not found",
		msg: UserMessage{
			Message: "The upload session has expired",
			Action:  "Upload the file again",
			Code:    "FILE008",
		},
	},

	// =========================================================================
	// Relations and the store (REL001-REL099)
	// =========================================================================
	{
		pattern: "invalid relation name",
		msg: UserMessage{
			Message: "The table name contains invalid characters",
			Action:  "Use letters, digits, and underscores, starting with a letter",
			Code:    "REL001",
		},
	},
	{
		pattern: "relation not found",
		msg: UserMessage{
			Message: "The selected table does not exist",
			Action:  "Pick a table from the list or load one first",
			Code:    "REL002",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The data file is busy",
			Action:  "Please try again in a moment",
			Code:    "REL003",
		},
	},
	{
		pattern: "unable to open database",
		msg: UserMessage{
			Message: "The data file could not be opened",
			Action:  "Check STORE_PATH points to a writable location",
			Code:    "REL004",
		},
	},

	// =========================================================================
	// Filter/aggregate interactions (QRY001-QRY099)
	// =========================================================================
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "The selected column does not exist in this table",
			Action:  "Pick a column from the current table",
			Code:    "QRY001",
		},
	},
	{
		pattern: "unknown group-by column",
		msg: UserMessage{
			Message: "The group-by column does not exist in this table",
			Action:  "Pick a column from the current table",
			Code:    "QRY001",
		},
	},
	{
		pattern: "unknown target column",
		msg: UserMessage{
			Message: "The aggregate column does not exist in this table",
			Action:  "Pick a column from the current table",
			Code:    "QRY001",
		},
	},
	{
		pattern: "unknown aggregation function",
		msg: UserMessage{
			Message: "The aggregation function is not recognized",
			Action:  "Use sum, mean, count, max, or min",
			Code:    "QRY002",
		},
	},
	{
		pattern: "unknown chart type",
		msg: UserMessage{
			Message: "The chart type is not recognized",
			Action:  "Use bar, line, area, or pie",
			Code:    "QRY003",
		},
	},

	// =========================================================================
	// Request lifecycle
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "QRY010",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller file or a narrower filter",
			Code:    "QRY011",
		},
	},
}

// defaultUserMessage is returned when no pattern matches.
var defaultUserMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again; check the server log for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}
	return defaultUserMessage
}

// FormatUserError renders a UserMessage as a single line, for the CLI.
func FormatUserError(msg UserMessage) string {
	if msg.Action == "" {
		return fmt.Sprintf("%s [%s]", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s: %s [%s]", msg.Message, msg.Action, msg.Code)
}
