package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/cmd/cli/docs"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/cmd/cli/workflows"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/branches"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/secrets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/setup"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/tags"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

const (
	applicationNameConstant                 = "gemini-actions-lab"
	applicationShortDescriptionConstant     = "Keep repositories in sync with the Gemini Actions Lab templates"
	applicationLongDescriptionConstant      = "gemini-actions-lab copies GitHub Actions workflows, prompts, agent documents and secrets from a template repository into local checkouts or hosted repositories, and prepares their branches and tags."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonGitHubHostConfigKeyConstant       = commonConfigurationKeyConstant + ".github_host"
	environmentPrefixConstant               = "GALAB"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "gemini-actions-lab CLI executed"
	rootCommandDebugMessageConstant         = "gemini-actions-lab CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	toolsConfigurationKeyConstant           = "tools"
	workflowsConfigurationKeyConstant       = toolsConfigurationKeyConstant + ".workflows"
	presetsConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".presets"
	docsConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".docs"
	secretsConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".secrets"
	branchesConfigurationKeyConstant        = toolsConfigurationKeyConstant + ".branches"
	tagsConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".tags"
	setupConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".setup"
	historyConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".history"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging and GitHub settings shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`
	GitHubHost string `mapstructure:"github_host"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Workflows workflows.CommandConfiguration `mapstructure:"workflows"`
	Presets   workflows.PresetConfiguration  `mapstructure:"presets"`
	Docs      docs.CommandConfiguration      `mapstructure:"docs"`
	Secrets   secrets.CommandConfiguration   `mapstructure:"secrets"`
	Branches  branches.CommandConfiguration  `mapstructure:"branches"`
	Tags      tags.CommandConfiguration      `mapstructure:"tags"`
	Setup     setup.CommandConfiguration     `mapstructure:"setup"`
	History   history.CommandConfiguration   `mapstructure:"history"`
}

// CommandBuilder builds one command group of the application.
type CommandBuilder interface {
	Build() (*cobra.Command, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultSearchPaths(applicationNameConstant),
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	for _, builder := range application.commandBuilders() {
		command, buildError := builder.Build()
		if buildError == nil {
			cobraCommand.AddCommand(command)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

func (application *Application) commandBuilders() []CommandBuilder {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	repositoryRecorder := history.Recorder{
		ConfigurationProvider: func() history.CommandConfiguration {
			return application.configuration.Tools.History
		},
	}

	return []CommandBuilder{
		&workflows.CommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider: func() workflows.CommandConfiguration {
				return application.configuration.Tools.Workflows
			},
			PresetConfigurationProvider: func() workflows.PresetConfiguration {
				return application.configuration.Tools.Presets
			},
			GitHubHostProvider: application.gitHubHost,
			RepositoryRecorder: repositoryRecorder,
		},
		&docs.CommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider: func() docs.CommandConfiguration {
				return application.configuration.Tools.Docs
			},
			GitHubHostProvider: application.gitHubHost,
			RepositoryRecorder: repositoryRecorder,
		},
		&secrets.CommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider: func() secrets.CommandConfiguration {
				return application.configuration.Tools.Secrets
			},
			GitHubHostProvider: application.gitHubHost,
			RepositoryRecorder: repositoryRecorder,
		},
		&branches.CommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider: func() branches.CommandConfiguration {
				return application.configuration.Tools.Branches
			},
			GitHubHostProvider: application.gitHubHost,
			RepositoryRecorder: repositoryRecorder,
		},
		&tags.CommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider: func() tags.CommandConfiguration {
				return application.configuration.Tools.Tags
			},
			GitHubHostProvider: application.gitHubHost,
			RepositoryRecorder: repositoryRecorder,
		},
		&setup.CommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider: func() setup.CommandConfiguration {
				return application.configuration.Tools.Setup
			},
			GitHubHostProvider: application.gitHubHost,
			RepositoryRecorder: repositoryRecorder,
		},
		&history.CommandBuilder{
			LoggerProvider:               loggerProvider,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			ConfigurationProvider: func() history.CommandConfiguration {
				return application.configuration.Tools.History
			},
			GitHubHostProvider: application.gitHubHost,
		},
	}
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) defaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:   string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:  string(utils.LogFormatStructured),
		commonGitHubHostConfigKeyConstant: "",
	}

	defaultGroups := []map[string]any{
		workflows.DefaultConfigurationValues(workflowsConfigurationKeyConstant),
		workflows.DefaultPresetConfigurationValues(presetsConfigurationKeyConstant),
		docs.DefaultConfigurationValues(docsConfigurationKeyConstant),
		secrets.DefaultConfigurationValues(secretsConfigurationKeyConstant),
		branches.DefaultConfigurationValues(branchesConfigurationKeyConstant),
		tags.DefaultConfigurationValues(tagsConfigurationKeyConstant),
		setup.DefaultConfigurationValues(setupConfigurationKeyConstant),
		history.DefaultConfigurationValues(historyConfigurationKeyConstant),
	}
	for _, defaultGroup := range defaultGroups {
		for configurationKey, configurationValue := range defaultGroup {
			defaultValues[configurationKey] = configurationValue
		}
	}

	return defaultValues
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, application.defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.ParseLogLevel(application.configuration.Common.LogLevel),
		utils.ParseLogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := utils.WithExecutionMetadata(command.Context(), utils.ExecutionMetadata{
			ConfigurationFilePath: application.configurationMetadata.ConfigFileUsed,
			GitHubHost:            application.gitHubHost(),
		})
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) gitHubHost() string {
	return strings.TrimSpace(application.configuration.Common.GitHubHost)
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
