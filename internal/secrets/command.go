package secrets

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/dependencies"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
	pathutils "github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils/path"
)

const (
	groupUseConstant                       = "secrets"
	groupShortDescriptionConstant          = "Manage GitHub Actions secrets"
	groupLongDescriptionConstant           = "secrets groups commands that manage the Actions secrets of a GitHub repository."
	syncCommandUseConstant                 = "sync"
	syncCommandShortDescriptionConstant    = "Store .env values as Actions secrets"
	syncCommandLongDescriptionConstant     = "sync reads a .env file, encrypts each selected value with the repository public key and stores it as an Actions secret."
	commandExecutionErrorTemplateConstant  = "secrets sync failed: %w"
	unexpectedArgumentsMessageConstant     = "secrets sync does not accept positional arguments"
	flagRepositoryNameConstant             = "repo"
	flagRepositoryDescriptionConstant      = "Target repository in owner/name form"
	flagEnvironmentFileNameConstant        = "env-file"
	flagEnvironmentFileDescriptionConstant = "Path to the .env file"
	flagIncludeNameConstant                = "include"
	flagIncludeDescriptionConstant         = "Only sync these variable names (repeatable)"
	flagExcludeNameConstant                = "exclude"
	flagExcludeDescriptionConstant         = "Skip these variable names (repeatable)"
	flagDryRunNameConstant                 = "dry-run"
	flagDryRunDescriptionConstant          = "List the secrets that would be updated without uploading"
	headerTemplateConstant                 = "Secrets sync for %s from %s\n"
	noVariablesMessageConstant             = "No variables selected\n"
	updatedLineTemplateConstant            = "updated: %s\n"
	plannedLineTemplateConstant            = "would update: %s\n"
	failedLineTemplateConstant             = "failed: %s: %s\n"
	summaryLineTemplateConstant            = "%s\n"
)

var (
	errUnexpectedArguments       = errors.New(unexpectedArgumentsMessageConstant)
	secretsHomeDirectoryExpander = pathutils.NewHomeExpander()
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current secrets configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the secrets command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	GitHubHostProvider           func() string
	Executor                     githubcli.GitHubCommandExecutor
	RandomSource                 io.Reader
	RepositoryRecorder           history.RepositoryRecorder
}

// Build constructs the secrets command with its sync subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	syncCommand := &cobra.Command{
		Use:   syncCommandUseConstant,
		Short: syncCommandShortDescriptionConstant,
		Long:  syncCommandLongDescriptionConstant,
		RunE:  builder.runSync,
	}

	syncCommand.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	syncCommand.Flags().String(flagEnvironmentFileNameConstant, "", flagEnvironmentFileDescriptionConstant)
	syncCommand.Flags().StringSlice(flagIncludeNameConstant, nil, flagIncludeDescriptionConstant)
	syncCommand.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeDescriptionConstant)
	syncCommand.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	groupCommand.AddCommand(syncCommand)

	return groupCommand, nil
}

func (builder *CommandBuilder) runSync(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}
	if len(configuration.Repository) == 0 {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, ErrRepositoryRequired)
	}

	repository, repositoryError := githubcli.ParseRepository(configuration.Repository)
	if repositoryError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, repositoryError)
	}

	variables, loadError := LoadEnvironmentFile(configuration.EnvironmentFile, secretsHomeDirectoryExpander)
	if loadError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, loadError)
	}
	selectedVariables := Filter(variables, configuration.Include, configuration.Exclude)

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	reporter.Printf(headerTemplateConstant, repository, configuration.EnvironmentFile)
	if len(selectedVariables) == 0 {
		reporter.Printf(noVariablesMessageConstant)
		return nil
	}

	logger := builder.resolveLogger()
	executor, executorError := dependencies.ResolveGitHubExecutor(builder.Executor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}

	client, clientError := dependencies.ResolveGitHubClient(executor, builder.githubHost())
	if clientError != nil {
		return clientError
	}

	service, serviceError := NewService(logger, client, builder.RandomSource)
	if serviceError != nil {
		return serviceError
	}

	result, syncError := service.Sync(command.Context(), Options{
		Repository: repository,
		Variables:  selectedVariables,
		DryRun:     configuration.DryRun,
	})
	if syncError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, syncError)
	}

	if !configuration.DryRun {
		history.RememberRepository(builder.RepositoryRecorder, logger, result.Repository)
	}

	WriteResult(reporter, result)

	return nil
}

// WriteResult prints one line per updated, planned and failed secret followed by the summary.
func WriteResult(reporter utils.Reporter, result Result) {
	for _, name := range result.Updated {
		reporter.Printf(updatedLineTemplateConstant, name)
	}
	for _, name := range result.Planned {
		reporter.Printf(plannedLineTemplateConstant, name)
	}
	for _, failure := range result.Failed {
		reporter.Printf(failedLineTemplateConstant, failure.Name, failure.Message)
	}
	reporter.Printf(summaryLineTemplateConstant, result.Summary())
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(flagRepositoryNameConstant) {
		flagValue, flagError := command.Flags().GetString(flagRepositoryNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.Repository = flagValue
	}

	if command.Flags().Changed(flagEnvironmentFileNameConstant) {
		flagValue, flagError := command.Flags().GetString(flagEnvironmentFileNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.EnvironmentFile = flagValue
	}

	if command.Flags().Changed(flagIncludeNameConstant) {
		flagValues, flagError := command.Flags().GetStringSlice(flagIncludeNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.Include = flagValues
	}

	if command.Flags().Changed(flagExcludeNameConstant) {
		flagValues, flagError := command.Flags().GetStringSlice(flagExcludeNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.Exclude = flagValues
	}

	if command.Flags().Changed(flagDryRunNameConstant) {
		flagValue, flagError := command.Flags().GetBool(flagDryRunNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.DryRun = flagValue
	}

	return configuration.sanitize(), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) githubHost() string {
	if builder.GitHubHostProvider == nil {
		return ""
	}
	return strings.TrimSpace(builder.GitHubHostProvider())
}
