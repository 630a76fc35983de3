package tests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationInfoMessageConstant                   = "\"msg\":\"gemini-actions-lab CLI executed\""
	integrationDebugMessageConstant                  = "\"msg\":\"gemini-actions-lab CLI diagnostics\""
	integrationLogLevelEnvKeyConstant                = "GALAB_COMMON_LOG_LEVEL"
	integrationConfigFileNameConstant                = "config.yaml"
	integrationConfigTemplateConstant                = "common:\n  log_level: %s\n"
	integrationDefaultCaseNameConstant               = "default_info"
	integrationConfigCaseNameConstant                = "config_debug"
	integrationEnvironmentCaseNameConstant           = "environment_error"
	integrationDebugLevelConstant                    = "debug"
	integrationErrorLevelConstant                    = "error"
	integrationCommandTimeout                        = 60 * time.Second
	integrationConfigFlagTemplateConstant            = "--config=%s"
	integrationEnvironmentAssignmentTemplateConstant = "%s=%s"
	integrationSubtestNameTemplateConstant           = "%d_%s"
	integrationHelpUsagePrefixConstant               = "Usage:"
	integrationHelpDescriptionSnippetConstant        = "gemini-actions-lab copies GitHub Actions workflows"
	integrationPresetFileNameConstant                = "presets.yaml"
	integrationPresetFileContentConstant             = "presets:\n  - name: reviewers\n    description: Review workflows only\n    workflows:\n      - gemini-pr-review.yml\n"
)

func integrationRepositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()

	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(currentWorkingDirectory)
}

func TestCLIIntegrationLogLevels(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		configurationLevel   string
		environmentLevel     string
		expectedInfoVisible  bool
		expectedDebugVisible bool
	}{
		{
			name:                 integrationDefaultCaseNameConstant,
			expectedInfoVisible:  true,
			expectedDebugVisible: false,
		},
		{
			name:                 integrationConfigCaseNameConstant,
			configurationLevel:   integrationDebugLevelConstant,
			expectedInfoVisible:  true,
			expectedDebugVisible: true,
		},
		{
			name:                 integrationEnvironmentCaseNameConstant,
			environmentLevel:     integrationErrorLevelConstant,
			expectedInfoVisible:  false,
			expectedDebugVisible: false,
		},
	}

	repositoryRootDirectory := integrationRepositoryRoot(testInstance)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			arguments := []string{"run", "."}
			var extraEnvironment []string

			if len(testCase.configurationLevel) > 0 {
				configurationPath := filepath.Join(subtest.TempDir(), integrationConfigFileNameConstant)
				configurationContent := fmt.Sprintf(integrationConfigTemplateConstant, testCase.configurationLevel)
				require.NoError(subtest, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))
				arguments = append(arguments, fmt.Sprintf(integrationConfigFlagTemplateConstant, configurationPath))
			}

			if len(testCase.environmentLevel) > 0 {
				extraEnvironment = append(extraEnvironment, fmt.Sprintf(integrationEnvironmentAssignmentTemplateConstant, integrationLogLevelEnvKeyConstant, testCase.environmentLevel))
			}

			outputText := runIntegrationCommand(subtest, repositoryRootDirectory, integrationCommandTimeout, arguments, extraEnvironment...)

			if testCase.expectedInfoVisible {
				require.Contains(subtest, outputText, integrationInfoMessageConstant)
			} else {
				require.NotContains(subtest, outputText, integrationInfoMessageConstant)
			}

			if testCase.expectedDebugVisible {
				require.Contains(subtest, outputText, integrationDebugMessageConstant)
			} else {
				require.NotContains(subtest, outputText, integrationDebugMessageConstant)
			}
		})
	}
}

func TestCLIIntegrationDisplaysHelpWhenNoArgumentsProvided(testInstance *testing.T) {
	outputText := runIntegrationCommand(testInstance, integrationRepositoryRoot(testInstance), integrationCommandTimeout, []string{"run", "."})

	require.Contains(testInstance, outputText, integrationHelpUsagePrefixConstant)
	require.Contains(testInstance, outputText, integrationHelpDescriptionSnippetConstant)
}

func TestCLIIntegrationListsPresets(testInstance *testing.T) {
	presetFilePath := filepath.Join(testInstance.TempDir(), integrationPresetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(presetFilePath, []byte(integrationPresetFileContentConstant), 0o600))

	testCases := []struct {
		name          string
		arguments     []string
		expectedLines []string
	}{
		{
			name:          "embedded_catalog",
			arguments:     []string{"run", ".", "workflows", "presets"},
			expectedLines: []string{"basic: ", "pr-review: "},
		},
		{
			name:          "preset_file",
			arguments:     []string{"run", ".", "workflows", "presets", "--preset-file", presetFilePath},
			expectedLines: []string{"reviewers: Review workflows only"},
		},
	}

	repositoryRootDirectory := integrationRepositoryRoot(testInstance)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtest *testing.T) {
			outputText := filterStructuredOutput(runIntegrationCommand(subtest, repositoryRootDirectory, integrationCommandTimeout, testCase.arguments))
			for _, expectedLine := range testCase.expectedLines {
				require.Contains(subtest, outputText, expectedLine)
			}
		})
	}
}
