package templatesync_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

func TestWriteRemoteReport(testInstance *testing.T) {
	testCases := []struct {
		name           string
		result         templatesync.RemoteResult
		expectedOutput string
	}{
		{
			name: "unchanged_and_existing_paths_labelled_apart",
			result: templatesync.RemoteResult{
				SyncResult: templatesync.SyncResult{
					Written: []string{testWorkflowPathConstant},
					Skipped: []string{".github/workflows/same.yml", testIndexPathConstant},
				},
				Unchanged: []string{".github/workflows/same.yml"},
			},
			expectedOutput: "written: .github/workflows/ci.yml\n" +
				"unchanged: .github/workflows/same.yml\n" +
				"skipped (exists): index.html\n" +
				"written=1 skipped=2 failed=0\n",
		},
		{
			name: "deletions_and_warnings_first",
			result: templatesync.RemoteResult{
				SyncResult: templatesync.SyncResult{Skipped: []string{testWorkflowPathConstant}},
				Deleted:    []string{".github/workflows/stale.yml"},
				Unchanged:  []string{testWorkflowPathConstant},
				Warnings:   []string{"pages configuration failed"},
			},
			expectedOutput: "deleted: .github/workflows/stale.yml\n" +
				"warning: pages configuration failed\n" +
				"unchanged: .github/workflows/ci.yml\n" +
				"written=0 skipped=1 failed=0\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			templatesync.WriteRemoteReport(utils.NewWriterReporter(outputBuffer), testCase.result)
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}

func TestWriteReportPlanned(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	result := templatesync.SyncResult{Written: []string{testWorkflowPathConstant}, Skipped: []string{testIndexPathConstant}}

	templatesync.WriteReport(utils.NewWriterReporter(outputBuffer), result, true)

	require.Equal(testInstance, "would write: .github/workflows/ci.yml\nskipped (exists): index.html\nwritten=1 skipped=1 failed=0\n", outputBuffer.String())
}
