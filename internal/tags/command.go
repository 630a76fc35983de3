package tags

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/dependencies"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

const (
	groupUseConstant                      = "tags"
	groupShortDescriptionConstant         = "Manage tags of a GitHub repository"
	groupLongDescriptionConstant          = "tags groups commands that operate on the tags of a GitHub repository."
	latestCommandUseConstant              = "latest"
	latestCommandShortDescriptionConstant = "Tag the tip of a branch"
	latestCommandLongDescriptionConstant  = "latest creates a lightweight tag pointing at the current tip of the branch (the default branch unless --branch is given). An existing tag is reported and left untouched."
	commandExecutionErrorTemplateConstant = "tag creation failed: %w"
	unexpectedArgumentsMessageConstant    = "tags latest does not accept positional arguments"
	flagRepositoryNameConstant            = "repo"
	flagRepositoryDescriptionConstant     = "Target repository in owner/name form"
	flagTagNameConstant                   = "tag"
	flagTagDescriptionConstant            = "Name of the tag to create"
	flagBranchNameConstant                = "branch"
	flagBranchDescriptionConstant         = "Branch whose tip is tagged"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Report the commit that would be tagged without creating the tag"
	createdLineTemplateConstant           = "tag created: %s %s@%s -> %s\n"
	plannedLineTemplateConstant           = "would tag: %s %s@%s -> %s\n"
	existingLineTemplateConstant          = "tag %s already exists in %s\n"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the tags command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitHubHostProvider           func() string
	Executor                     githubcli.GitHubCommandExecutor
	RepositoryRecorder           history.RepositoryRecorder
}

// Build constructs the tags command with its latest subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	latestCommand := &cobra.Command{
		Use:   latestCommandUseConstant,
		Short: latestCommandShortDescriptionConstant,
		Long:  latestCommandLongDescriptionConstant,
		RunE:  builder.runLatest,
	}

	latestCommand.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	latestCommand.Flags().String(flagTagNameConstant, "", flagTagDescriptionConstant)
	latestCommand.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	latestCommand.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	groupCommand.AddCommand(latestCommand)

	return groupCommand, nil
}

func (builder *CommandBuilder) runLatest(command *cobra.Command, arguments []string) error {
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
	if len(configuration.Tag) == 0 {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, ErrTagRequired)
	}

	logger := builder.resolveLogger()
	humanReadable := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
	executor, executorError := dependencies.ResolveGitHubExecutor(builder.Executor, logger, humanReadable)
	if executorError != nil {
		return executorError
	}

	host := ""
	if builder.GitHubHostProvider != nil {
		host = builder.GitHubHostProvider()
	}
	client, clientError := dependencies.ResolveGitHubClient(executor, host)
	if clientError != nil {
		return clientError
	}

	service, serviceError := NewService(ServiceDependencies{Logger: logger, Client: client})
	if serviceError != nil {
		return serviceError
	}

	result, latestError := service.Latest(command.Context(), Options{
		Repository: configuration.Repository,
		Tag:        configuration.Tag,
		Branch:     configuration.Branch,
		DryRun:     configuration.DryRun,
	})
	if latestError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, latestError)
	}

	if result.Created {
		history.RememberRepository(builder.RepositoryRecorder, logger, result.Repository)
	}

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	switch {
	case result.AlreadyExists:
		reporter.Printf(existingLineTemplateConstant, result.Tag, result.Repository)
	case result.DryRun:
		reporter.Printf(plannedLineTemplateConstant, result.Repository, result.Branch, result.ShortCommitSHA(), result.Tag)
	default:
		reporter.Printf(createdLineTemplateConstant, result.Repository, result.Branch, result.ShortCommitSHA(), result.Tag)
	}

	return nil
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	stringTargets := []struct {
		flagName string
		target   *string
	}{
		{flagName: flagRepositoryNameConstant, target: &configuration.Repository},
		{flagName: flagTagNameConstant, target: &configuration.Tag},
		{flagName: flagBranchNameConstant, target: &configuration.Branch},
	}
	for _, stringTarget := range stringTargets {
		if !command.Flags().Changed(stringTarget.flagName) {
			continue
		}
		flagValue, flagError := command.Flags().GetString(stringTarget.flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*stringTarget.target = strings.TrimSpace(flagValue)
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
