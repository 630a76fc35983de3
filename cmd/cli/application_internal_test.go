package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/cmd/cli/workflows"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = `common:
  log_level: warn
  log_format: console
tools:
  workflows:
    template_repository: owner/templates
    extra_files:
      - .gitignore
  history:
    limit: 10
`
	testHistoryRecentLimitEnvironmentConstant = "GALAB_TOOLS_HISTORY_RECENT_LIMIT"
)

func writeTestConfiguration(testInstance *testing.T) string {
	testInstance.Helper()

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))
	return configurationPath
}

func TestInitializeConfigurationAppliesEmbeddedDefaults(testInstance *testing.T) {
	testInstance.Chdir(testInstance.TempDir())

	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.False(testInstance, application.humanReadableLoggingEnabled())
	require.Equal(testInstance, workflows.DefaultTemplateRepository, application.configuration.Tools.Workflows.TemplateRepository)
	require.Equal(testInstance, ".", application.configuration.Tools.Workflows.Destination)
	require.Equal(testInstance, "pr-review", application.configuration.Tools.Presets.Preset)
	require.Equal(testInstance, ".env", application.configuration.Tools.Secrets.EnvironmentFile)
	require.Equal(testInstance, 50, application.configuration.Tools.History.Limit)
	require.Equal(testInstance, 30, application.configuration.Tools.History.LookbackDays)
}

func TestInitializeConfigurationReadsConfigurationFile(testInstance *testing.T) {
	configurationPath := writeTestConfiguration(testInstance)
	testInstance.Setenv(testHistoryRecentLimitEnvironmentConstant, "5")

	application := NewApplication()
	application.configurationFilePath = configurationPath
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.True(testInstance, application.humanReadableLoggingEnabled())
	require.Equal(testInstance, "owner/templates", application.configuration.Tools.Workflows.TemplateRepository)
	require.Equal(testInstance, []string{".gitignore"}, application.configuration.Tools.Workflows.ExtraFiles)
	require.Equal(testInstance, 10, application.configuration.Tools.History.Limit)
	require.Equal(testInstance, 5, application.configuration.Tools.History.RecentLimit)
	require.Equal(testInstance, workflows.DefaultTemplateRepository, application.configuration.Tools.Docs.TemplateRepository)

	metadata, available := utils.ExecutionMetadataFromContext(application.rootCommand.Context())
	require.True(testInstance, available)
	require.Equal(testInstance, configurationPath, metadata.ConfigurationFilePath)
}

func TestInitializeConfigurationFlagOverrides(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		flagValues            map[string]string
		expectedLogLevel      string
		expectedHumanReadable bool
	}{
		{
			name:                  "configuration_file_values",
			flagValues:            map[string]string{},
			expectedLogLevel:      "warn",
			expectedHumanReadable: true,
		},
		{
			name:                  "log_level_flag",
			flagValues:            map[string]string{logLevelFlagNameConstant: "debug"},
			expectedLogLevel:      "debug",
			expectedHumanReadable: true,
		},
		{
			name:                  "log_format_flag",
			flagValues:            map[string]string{logFormatFlagNameConstant: "structured"},
			expectedLogLevel:      "warn",
			expectedHumanReadable: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			application := NewApplication()
			application.configurationFilePath = writeTestConfiguration(subtest)
			for flagName, flagValue := range testCase.flagValues {
				require.NoError(subtest, application.rootCommand.PersistentFlags().Set(flagName, flagValue))
			}

			require.NoError(subtest, application.initializeConfiguration(application.rootCommand))
			require.Equal(subtest, testCase.expectedLogLevel, application.configuration.Common.LogLevel)
			require.Equal(subtest, testCase.expectedHumanReadable, application.humanReadableLoggingEnabled())
		})
	}
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeTestConfiguration(testInstance)
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.Error(testInstance, initializationError)
	require.Contains(testInstance, initializationError.Error(), "unable to create logger")
}

func TestNewApplicationRegistersCommandGroups(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := make([]string, 0)
	for _, command := range application.rootCommand.Commands() {
		registeredNames = append(registeredNames, command.Name())
	}

	for _, expectedName := range []string{"workflows", "docs", "secrets", "branches", "tags", "setup", "repos"} {
		require.Contains(testInstance, registeredNames, expectedName)
	}
}

func TestGitHubHostIsTrimmed(testInstance *testing.T) {
	application := &Application{logger: zap.NewNop()}
	application.configuration.Common.GitHubHost = "  github.example.com "

	require.Equal(testInstance, "github.example.com", application.gitHubHost())
}

func TestSyncLoggerInstanceIgnoresNilLogger(testInstance *testing.T) {
	application := &Application{}
	require.NoError(testInstance, application.syncLoggerInstance(nil))
}
