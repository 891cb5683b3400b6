package engine

// messages.go maps run failures to user-facing messages with codes for
// support reference. Codes are grouped by stage:
//
//	LOAD001  Unknown format          Use csv, excel, json or auto
//	LOAD002  Unsupported extension   Rename the file or set the format explicitly
//	LOAD003  Source not found        Check the path and file permissions
//	LOAD004  Empty source            Provide a file with a header row
//	LOAD005  Malformed source        Fix the reported row or cell
//	CLEAN001 Missing column          Add the listed columns to the source
//	CLEAN002 Unresolved nulls        Fill the column or declare a default
//	CLEAN003 Contract violation      Fix the contract or the column types
//	CLEAN004 Cleaning step failed    Check the logs for the failing step
//	META001  Metadata failed         Report the problem; the table is malformed
//	ERR000   Unknown error           Check the logs
//
// Load failures are refined by matching the detail text case-insensitively;
// the first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// Message is a failure rendered for people.
type Message struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Action string `json:"action"`
}

type errorPattern struct {
	pattern string
	msg     Message
}

var kindMessages = map[Kind]Message{
	KindUnknownFormat: {
		Code:   "LOAD001",
		Title:  "The requested format is not supported",
		Action: "Use one of csv, excel, json, or auto",
	},
	KindUnsupportedExtension: {
		Code:   "LOAD002",
		Title:  "The file format cannot be inferred from its extension",
		Action: "Rename the file to .csv, .tsv, .xlsx or .json, or set the format explicitly",
	},
	KindLoad: {
		Code:   "LOAD005",
		Title:  "The source file could not be read",
		Action: "Fix the reported row or cell and try again",
	},
	KindMissingColumn: {
		Code:   "CLEAN001",
		Title:  "Required columns are missing",
		Action: "Add the listed columns to the source file",
	},
	KindUnresolvedNull: {
		Code:   "CLEAN002",
		Title:  "A required column has missing or invalid values",
		Action: "Fill the listed column or declare a default for it in the contract",
	},
	KindContractViolation: {
		Code:   "CLEAN003",
		Title:  "The dataset does not match its contract",
		Action: "Check the contract definition and the column types in the source",
	},
	KindStep: {
		Code:   "CLEAN004",
		Title:  "A cleaning step failed",
		Action: "Check the logs for the failing step",
	},
	KindMetadata: {
		Code:   "META001",
		Title:  "Metadata could not be computed",
		Action: "The cleaned table is malformed; please report this",
	},
}

// loadPatterns refine KindLoad by the loader's reason.
var loadPatterns = []errorPattern{
	{
		pattern: "no such file",
		msg: Message{
			Code:   "LOAD003",
			Title:  "The source file was not found",
			Action: "Check the path and file permissions",
		},
	},
	{
		pattern: "file does not exist",
		msg: Message{
			Code:   "LOAD003",
			Title:  "The source file was not found",
			Action: "Check the path and file permissions",
		},
	},
	{
		pattern: "permission denied",
		msg: Message{
			Code:   "LOAD003",
			Title:  "The source file was not found",
			Action: "Check the path and file permissions",
		},
	},
	{
		pattern: "empty file",
		msg: Message{
			Code:   "LOAD004",
			Title:  "The source file is empty",
			Action: "Provide a file with a header row",
		},
	},
	{
		pattern: "no records",
		msg: Message{
			Code:   "LOAD004",
			Title:  "The source file is empty",
			Action: "Provide a file with a header row",
		},
	},
	{
		pattern: "is empty",
		msg: Message{
			Code:   "LOAD004",
			Title:  "The source file is empty",
			Action: "Provide a file with a header row",
		},
	},
}

// defaultMessage is returned for errors that are not run failures (ERR000).
var defaultMessage = Message{
	Code:   "ERR000",
	Title:  "An unexpected error occurred",
	Action: "Check the logs for details",
}

// Describe converts an error returned by Run into a user-facing message.
// A nil error yields the zero Message.
func Describe(err error) Message {
	if err == nil {
		return Message{}
	}
	var f *Failure
	if !errors.As(err, &f) {
		return defaultMessage
	}

	if f.Kind == KindLoad {
		detail := strings.ToLower(f.Detail)
		for _, p := range loadPatterns {
			if strings.Contains(detail, p.pattern) {
				return p.msg
			}
		}
	}
	if msg, ok := kindMessages[f.Kind]; ok {
		return msg
	}
	return defaultMessage
}

// FormatUserError renders err as "Title (Code: X). Action".
func FormatUserError(err error) string {
	msg := Describe(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Title, msg.Code, msg.Action)
}
