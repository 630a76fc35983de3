package presets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/presets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	testCatalogFileNameConstant = "presets.yaml"
	testCustomCatalogConstant   = `presets:
  - name: reviewers
    use_remote: true
    workflows:
      - pr-review.yml
    prompts:
      - review.md
    agents:
      - reviewer.md
`
)

func TestDefaultCatalogListsBuiltInPresets(testInstance *testing.T) {
	catalog, catalogError := presets.DefaultCatalog()
	require.NoError(testInstance, catalogError)
	require.Equal(testInstance, []string{"basic", "full-remote", "gemini-cli", "imagen", "pr-review", "release"}, catalog.Names())

	summaries := catalog.Summaries()
	require.Len(testInstance, summaries, 6)
	require.Equal(testInstance, presets.Summary{Name: "basic", Description: "Basic workflows for new repositories"}, summaries[0])

	reviewPreset, lookupError := catalog.Lookup("pr-review")
	require.NoError(testInstance, lookupError)
	require.True(testInstance, reviewPreset.UseRemote)
	require.Equal(testInstance, []string{"pr-review-kozaki-remote.yml", "pr-review-onizuka-remote.yml", "pr-review-yukimura-remote.yml"}, reviewPreset.Workflows)
}

func TestCatalogLookupUnknownPreset(testInstance *testing.T) {
	catalog, catalogError := presets.DefaultCatalog()
	require.NoError(testInstance, catalogError)

	_, lookupError := catalog.Lookup("nightly")
	var unknownPresetError presets.UnknownPresetError
	require.ErrorAs(testInstance, lookupError, &unknownPresetError)
	require.Equal(testInstance, "nightly", unknownPresetError.Name)
	require.Equal(testInstance, "unknown preset 'nightly'. Available presets: basic, full-remote, gemini-cli, imagen, pr-review, release", lookupError.Error())
}

func TestPresetGroups(testInstance *testing.T) {
	catalogPath := filepath.Join(testInstance.TempDir(), testCatalogFileNameConstant)
	require.NoError(testInstance, os.WriteFile(catalogPath, []byte(testCustomCatalogConstant), 0o644))

	catalog, catalogError := presets.LoadCatalog(catalogPath)
	require.NoError(testInstance, catalogError)

	preset, lookupError := catalog.Lookup("reviewers")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, "No description", preset.Description)
	require.Equal(testInstance, []templatesync.NamedFileGroup{
		{
			Names:                []string{"pr-review.yml"},
			CandidateDirectories: []string{templatesync.RemoteWorkflowsDirectory, templatesync.WorkflowsDirectory},
			DestinationDirectory: templatesync.WorkflowsDirectory,
		},
		{
			Names:                []string{"review.md"},
			CandidateDirectories: []string{templatesync.PromptsDirectory},
			DestinationDirectory: templatesync.PromptsDirectory,
		},
		{
			Names:                []string{"reviewer.md"},
			CandidateDirectories: []string{templatesync.AgentsDirectory},
			DestinationDirectory: templatesync.AgentsDirectory,
		},
	}, preset.Groups())
}

func TestLoadCatalogFailures(testInstance *testing.T) {
	testCases := []struct {
		name           string
		content        *string
		expectedReason string
	}{
		{name: "missing_file", expectedReason: "preset catalog not found"},
		{name: "invalid_yaml", content: stringPointer("presets: [unterminated"), expectedReason: "preset catalog invalid"},
		{name: "no_presets", content: stringPointer("presets: []\n"), expectedReason: "preset catalog defines no presets"},
		{name: "duplicate_names", content: stringPointer("presets:\n  - name: a\n    workflows: [a.yml]\n  - name: a\n    workflows: [b.yml]\n"), expectedReason: "duplicate preset a"},
		{name: "empty_workflows", content: stringPointer("presets:\n  - name: a\n"), expectedReason: "preset a lists no workflows"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			catalogPath := filepath.Join(testInstance.TempDir(), testCatalogFileNameConstant)
			if testCase.content != nil {
				require.NoError(testInstance, os.WriteFile(catalogPath, []byte(*testCase.content), 0o644))
			}

			_, catalogError := presets.LoadCatalog(catalogPath)
			var unavailableError presets.ConfigurationUnavailableError
			require.ErrorAs(testInstance, catalogError, &unavailableError)
			require.Equal(testInstance, testCase.expectedReason, unavailableError.Reason)
			require.Equal(testInstance, catalogPath, unavailableError.Source)
		})
	}

	_, emptyPathError := presets.LoadCatalog("  ")
	require.ErrorIs(testInstance, emptyPathError, presets.ErrCatalogPathRequired)
}

func stringPointer(value string) *string {
	return &value
}
