package templatesync_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	testReadmePathConstant    = "README.md"
	testReadmeContentConstant = "# Template"
	testScriptPathConstant    = ".github/scripts/setup.sh"
	testScriptContentConstant = "#!/bin/sh"
)

func TestOpenArchiveIndexesEntriesUnderPrefix(testInstance *testing.T) {
	archiveBytes := buildArchive(testInstance,
		templateDirectory(""),
		templateFile(testReadmePathConstant, testReadmeContentConstant),
		templateDirectory(".github"),
		templateFile(testWorkflowPathConstant, testWorkflowContentConstant),
		archiveFixtureEntry{name: testArchivePrefixConstant + "/" + testScriptPathConstant, content: testScriptContentConstant, mode: testExecutableFileModeConstant},
		archiveFixtureEntry{name: "other-main/stray.txt", content: "stray"},
		templateFile("../escape.txt", "escape"),
	)

	archive, openError := templatesync.OpenArchive(archiveBytes)
	require.NoError(testInstance, openError)
	require.Equal(testInstance, testArchivePrefixConstant, archive.Prefix())

	entryPaths := make([]string, 0)
	for _, entry := range archive.Entries() {
		entryPaths = append(entryPaths, entry.Path)
	}
	require.Equal(testInstance, []string{testReadmePathConstant, testWorkflowPathConstant, testScriptPathConstant}, entryPaths)

	content, resolveError := archive.Resolve(testWorkflowPathConstant)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testWorkflowContentConstant, string(content))

	scriptEntry, found := archive.Lookup(testScriptPathConstant)
	require.True(testInstance, found)
	require.True(testInstance, scriptEntry.Executable())

	readmeEntry, found := archive.Lookup("/" + testReadmePathConstant)
	require.False(testInstance, found)
	require.Empty(testInstance, readmeEntry.Path)

	_, missingError := archive.Resolve("missing.yml")
	require.ErrorIs(testInstance, missingError, templatesync.ErrEntryNotFound)

	githubEntries := archive.EntriesUnder(templatesync.ManagedDirectoryGitHub)
	require.Len(testInstance, githubEntries, 2)
	require.Equal(testInstance, testWorkflowPathConstant, githubEntries[0].Path)
	require.Equal(testInstance, testScriptPathConstant, githubEntries[1].Path)
}

func TestOpenArchiveRejectsUnusableInput(testInstance *testing.T) {
	testCases := []struct {
		name         string
		archiveBytes func(*testing.T) []byte
	}{
		{
			name:         "not_a_zip",
			archiveBytes: func(*testing.T) []byte { return []byte("plain text") },
		},
		{
			name:         "empty_bytes",
			archiveBytes: func(*testing.T) []byte { return nil },
		},
		{
			name: "directories_only",
			archiveBytes: func(testInstance *testing.T) []byte {
				return buildArchive(testInstance, templateDirectory(""), templateDirectory(".github"))
			},
		},
		{
			name: "no_top_level_directory",
			archiveBytes: func(testInstance *testing.T) []byte {
				return buildArchive(testInstance, archiveFixtureEntry{name: testReadmePathConstant, content: testReadmeContentConstant})
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			archive, openError := templatesync.OpenArchive(testCase.archiveBytes(testInstance))
			require.Nil(testInstance, archive)
			var invalidArchiveError templatesync.InvalidArchiveError
			require.ErrorAs(testInstance, openError, &invalidArchiveError)
		})
	}
}

func TestOpenArchiveUsesFirstTopLevelDirectory(testInstance *testing.T) {
	archiveBytes := buildArchive(testInstance,
		archiveFixtureEntry{name: "second-main/"},
		templateFile(testReadmePathConstant, testReadmeContentConstant),
		archiveFixtureEntry{name: "second-main/" + testReadmePathConstant, content: "other"},
	)

	archive, openError := templatesync.OpenArchive(archiveBytes)
	require.NoError(testInstance, openError)
	require.Equal(testInstance, testArchivePrefixConstant, archive.Prefix())

	content, resolveError := archive.Resolve(testReadmePathConstant)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testReadmeContentConstant, string(content))
	require.Len(testInstance, archive.Entries(), 1)
}
