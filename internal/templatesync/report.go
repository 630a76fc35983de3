package templatesync

import "github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"

const (
	writtenLineTemplateConstant   = "written: %s\n"
	plannedLineTemplateConstant   = "would write: %s\n"
	skippedLineTemplateConstant   = "skipped (exists): %s\n"
	unchangedLineTemplateConstant = "unchanged: %s\n"
	deletedLineTemplateConstant   = "deleted: %s\n"
	failedLineTemplateConstant    = "failed: %s: %s\n"
	warningLineTemplateConstant   = "warning: %s\n"
	summaryLineTemplateConstant   = "%s\n"
)

// WriteReport prints one line per written, skipped and failed path followed by the summary.
// With planned set, written paths are reported as pending writes.
func WriteReport(reporter utils.Reporter, result SyncResult, planned bool) {
	writeReport(reporter, result, planned, nil)
}

// WriteRemoteReport prints deletions and warnings of a remote sync ahead of the regular report.
// Skipped paths whose content already matched the branch are reported as unchanged.
func WriteRemoteReport(reporter utils.Reporter, result RemoteResult) {
	for _, deletedPath := range result.Deleted {
		reporter.Printf(deletedLineTemplateConstant, deletedPath)
	}
	for _, warning := range result.Warnings {
		reporter.Printf(warningLineTemplateConstant, warning)
	}

	unchangedPaths := make(map[string]struct{}, len(result.Unchanged))
	for _, unchangedPath := range result.Unchanged {
		unchangedPaths[unchangedPath] = struct{}{}
	}
	writeReport(reporter, result.SyncResult, false, unchangedPaths)
}

func writeReport(reporter utils.Reporter, result SyncResult, planned bool, unchangedPaths map[string]struct{}) {
	writtenTemplate := writtenLineTemplateConstant
	if planned {
		writtenTemplate = plannedLineTemplateConstant
	}
	for _, writtenPath := range result.Written {
		reporter.Printf(writtenTemplate, writtenPath)
	}
	for _, skippedPath := range result.Skipped {
		if _, unchanged := unchangedPaths[skippedPath]; unchanged {
			reporter.Printf(unchangedLineTemplateConstant, skippedPath)
			continue
		}
		reporter.Printf(skippedLineTemplateConstant, skippedPath)
	}
	for _, failure := range result.Failed {
		reporter.Printf(failedLineTemplateConstant, failure.Path, failure.Message)
	}
	reporter.Printf(summaryLineTemplateConstant, result.Summary())
}
