package templatesync

import (
	"fmt"
	"unicode/utf8"
)

const (
	truncationSuffixConstant = "..."
	summaryTemplateConstant  = "written=%d skipped=%d failed=%d"
)

// DefaultFailurePreviewLength bounds failure text surfaced for content writes.
const DefaultFailurePreviewLength = 500

// FileFailure records a path that could not be synchronized.
type FileFailure struct {
	Path    string
	Message string
}

// SyncResult accumulates the outcome of one synchronization call.
type SyncResult struct {
	Written []string
	Skipped []string
	Failed  []FileFailure
}

// RecordWritten appends a written path.
func (result *SyncResult) RecordWritten(writtenPath string) {
	result.Written = append(result.Written, writtenPath)
}

// RecordSkipped appends a skipped path.
func (result *SyncResult) RecordSkipped(skippedPath string) {
	result.Skipped = append(result.Skipped, skippedPath)
}

// RecordFailure appends a failure, truncating its message to maximumLength runes.
func (result *SyncResult) RecordFailure(failedPath string, failure error, maximumLength int) {
	result.Failed = append(result.Failed, FileFailure{Path: failedPath, Message: TruncateMessage(failure.Error(), maximumLength)})
}

// Summary renders the written, skipped and failed counts.
func (result SyncResult) Summary() string {
	return fmt.Sprintf(summaryTemplateConstant, len(result.Written), len(result.Skipped), len(result.Failed))
}

// TruncateMessage shortens message to at most maximumLength runes, marking the cut with an ellipsis.
func TruncateMessage(message string, maximumLength int) string {
	if maximumLength <= 0 || utf8.RuneCountInString(message) <= maximumLength {
		return message
	}
	suffixLength := utf8.RuneCountInString(truncationSuffixConstant)
	if maximumLength <= suffixLength {
		return string([]rune(message)[:maximumLength])
	}
	return string([]rune(message)[:maximumLength-suffixLength]) + truncationSuffixConstant
}
