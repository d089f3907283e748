package sfl

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Issue levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// Issue is one validation finding. Line is the 1-based line number in the
// source file where the header is line 1; it is zero for file-level issues
// such as a missing column.
type Issue struct {
	Column  string `json:"column"`
	Message string `json:"message"`
	Line    int    `json:"line (1-based)"`
	Value   string `json:"value"`
	Level   string `json:"level"`
}

func fileIssue(column, message string) Issue {
	return Issue{Column: column, Message: message, Level: LevelError}
}

func rowIssue(column, message string, line int, value string) Issue {
	return Issue{Column: column, Message: message, Line: line, Value: value, Level: LevelError}
}

func warningIssue(column, message string) Issue {
	return Issue{Column: column, Message: message, Level: LevelWarning}
}

// HasBlockingIssues reports whether any issue is error-level.
func HasBlockingIssues(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Level == LevelError {
			return true
		}
	}

	return false
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteIssuesJSON writes issues as an indented JSON array. When firstOnly is
// set, only the first issue of each distinct message is written; repeated
// findings in a large file usually share one cause.
func WriteIssuesJSON(w io.Writer, issues []Issue, firstOnly bool) error {
	selected := selectIssues(issues, firstOnly)

	encoded, marshalErr := json.MarshalIndent(selected, "", "  ")
	if marshalErr != nil {
		return marshalErr
	}

	if _, writeErr := w.Write(encoded); writeErr != nil {
		return writeErr
	}

	_, writeErr := io.WriteString(w, "\n")

	return writeErr
}

// issueTSVColumns is the column order of the tabular issue report,
// matching the sorted key order of the JSON form.
var issueTSVColumns = []string{"column", "level", "line (1-based)", "message", "value"}

// WriteIssuesTSV writes issues as a left-aligned, space-padded tab-separated
// table. firstOnly behaves as in WriteIssuesJSON.
func WriteIssuesTSV(w io.Writer, issues []Issue, firstOnly bool) error {
	selected := selectIssues(issues, firstOnly)

	rows := make([][]string, 0, len(selected)+1)
	rows = append(rows, issueTSVColumns)

	for _, issue := range selected {
		line := ""
		if issue.Line > 0 {
			line = fmt.Sprintf("%d", issue.Line)
		}

		rows = append(rows, []string{issue.Column, issue.Level, line, issue.Message, issue.Value})
	}

	widths := make([]int, len(issueTSVColumns))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for _, row := range rows {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		}

		if _, writeErr := fmt.Fprintln(w, strings.Join(padded, "\t")); writeErr != nil {
			return writeErr
		}
	}

	return nil
}

func selectIssues(issues []Issue, firstOnly bool) []Issue {
	if !firstOnly {
		return issues
	}

	seen := make(map[string]struct{}, len(issues))
	selected := make([]Issue, 0, len(issues))

	for _, issue := range issues {
		if _, dup := seen[issue.Message]; dup {
			continue
		}

		seen[issue.Message] = struct{}{}
		selected = append(selected, issue)
	}

	return selected
}
