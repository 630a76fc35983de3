package templatesync_test

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testArchivePrefixConstant      = "template-main"
	testWorkflowPathConstant       = ".github/workflows/ci.yml"
	testWorkflowContentConstant    = "name: CI"
	testIndexPathConstant          = "index.html"
	testIndexContentConstant       = "<html>t</html>"
	testExistingIndexConstant      = "<html>old</html>"
	testRegularFileModeConstant    = fs.FileMode(0o644)
	testExecutableFileModeConstant = fs.FileMode(0o755)
)

type archiveFixtureEntry struct {
	name    string
	content string
	mode    fs.FileMode
}

// buildArchive writes entries in the given order. Names ending in a slash become directory markers.
func buildArchive(testInstance *testing.T, entries ...archiveFixtureEntry) []byte {
	testInstance.Helper()

	buffer := &bytes.Buffer{}
	writer := zip.NewWriter(buffer)
	for _, entry := range entries {
		header := &zip.FileHeader{Name: entry.name, Method: zip.Deflate}
		mode := entry.mode
		if mode == 0 {
			mode = testRegularFileModeConstant
		}
		if len(entry.name) > 0 && entry.name[len(entry.name)-1] == '/' {
			mode = fs.ModeDir | fs.FileMode(0o755)
		}
		header.SetMode(mode)
		fileWriter, createError := writer.CreateHeader(header)
		require.NoError(testInstance, createError)
		_, writeError := fileWriter.Write([]byte(entry.content))
		require.NoError(testInstance, writeError)
	}
	require.NoError(testInstance, writer.Close())
	return buffer.Bytes()
}

func templateFile(relativePath string, content string) archiveFixtureEntry {
	return archiveFixtureEntry{name: testArchivePrefixConstant + "/" + relativePath, content: content}
}

func templateDirectory(relativePath string) archiveFixtureEntry {
	if len(relativePath) == 0 {
		return archiveFixtureEntry{name: testArchivePrefixConstant + "/"}
	}
	return archiveFixtureEntry{name: testArchivePrefixConstant + "/" + relativePath + "/"}
}

// scenarioArchive holds the workflow and landing page used across the example scenarios.
func scenarioArchive(testInstance *testing.T) []byte {
	testInstance.Helper()
	return buildArchive(testInstance,
		templateDirectory(""),
		templateDirectory(".github"),
		templateDirectory(".github/workflows"),
		templateFile(testWorkflowPathConstant, testWorkflowContentConstant),
		templateFile(testIndexPathConstant, testIndexContentConstant),
	)
}
