package utils_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

func TestWriterReporterFlushesBufferedWriters(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	bufferedWriter := bufio.NewWriter(destination)

	reporter := utils.NewWriterReporter(bufferedWriter)
	reporter.Printf("written=%d skipped=%d failed=%d\n", 2, 1, 0)

	require.Equal(testInstance, "written=2 skipped=1 failed=0\n", destination.String())
}

func TestWriterReporterDiscardsWithoutWriter(testInstance *testing.T) {
	reporter := utils.NewWriterReporter(nil)
	require.NotPanics(testInstance, func() {
		reporter.Printf("written: %s\n", ".github/workflows/ci.yml")
	})
}
