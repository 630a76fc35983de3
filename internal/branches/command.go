package branches

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
	groupUseConstant                      = "branches"
	groupShortDescriptionConstant         = "Manage branches of a GitHub repository"
	groupLongDescriptionConstant          = "branches groups commands that operate on the branches of a GitHub repository."
	syncCommandUseConstant                = "sync"
	syncCommandShortDescriptionConstant   = "Create missing branches from a base branch"
	syncCommandLongDescriptionConstant    = "sync creates every requested branch that does not exist yet, pointing it at the tip of the base branch (the default branch unless --base is given)."
	commandExecutionErrorTemplateConstant = "branch sync failed: %w"
	unexpectedArgumentsMessageConstant    = "branches sync does not accept positional arguments"
	flagRepositoryNameConstant            = "repo"
	flagRepositoryDescriptionConstant     = "Target repository in owner/name form"
	flagBranchNameConstant                = "branch"
	flagBranchDescriptionConstant         = "Branch to create (repeatable)"
	flagBaseNameConstant                  = "base"
	flagBaseDescriptionConstant           = "Branch whose tip new branches point at"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Report planned creations without creating branches"
	dryRunHeaderTemplateConstant          = "Dry run for %s (base %s)\n"
	resultHeaderTemplateConstant          = "Branch sync for %s (base %s)\n"
	createdLineTemplateConstant           = "created: %s\n"
	plannedLineTemplateConstant           = "would create: %s\n"
	skippedLineTemplateConstant           = "skipped (exists): %s\n"
	failedLineTemplateConstant            = "failed: %s: %s\n"
	summaryLineTemplateConstant           = "%s\n"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current branch sync configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the branches command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	GitHubHostProvider           func() string
	Executor                     githubcli.GitHubCommandExecutor
	RepositoryRecorder           history.RepositoryRecorder
}

// Build constructs the branches command with its sync subcommand.
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
	syncCommand.Flags().StringSlice(flagBranchNameConstant, nil, flagBranchDescriptionConstant)
	syncCommand.Flags().String(flagBaseNameConstant, "", flagBaseDescriptionConstant)
	syncCommand.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	groupCommand.AddCommand(syncCommand)

	return groupCommand, nil
}

func (builder *CommandBuilder) runSync(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
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

	service, serviceError := NewService(ServiceDependencies{Logger: logger, Client: client})
	if serviceError != nil {
		return serviceError
	}

	result, syncError := service.Sync(command.Context(), options)
	if syncError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, syncError)
	}

	if !result.DryRun {
		history.RememberRepository(builder.RepositoryRecorder, logger, result.Repository)
	}
	WriteResult(utils.NewWriterReporter(command.OutOrStdout()), result)

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	repositoryValue := configuration.Repository
	if command.Flags().Changed(flagRepositoryNameConstant) {
		flagValue, flagError := command.Flags().GetString(flagRepositoryNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		repositoryValue = strings.TrimSpace(flagValue)
	}

	branchValues := configuration.Branches
	if command.Flags().Changed(flagBranchNameConstant) {
		flagValues, flagError := command.Flags().GetStringSlice(flagBranchNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		branchValues = flagValues
	}

	baseValue := configuration.BaseBranch
	if command.Flags().Changed(flagBaseNameConstant) {
		flagValue, flagError := command.Flags().GetString(flagBaseNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		baseValue = strings.TrimSpace(flagValue)
	}

	dryRunValue := configuration.DryRun
	if command.Flags().Changed(flagDryRunNameConstant) {
		flagValue, flagError := command.Flags().GetBool(flagDryRunNameConstant)
		if flagError != nil {
			return Options{}, flagError
		}
		dryRunValue = flagValue
	}

	return Options{
		Repository: repositoryValue,
		Branches:   branchValues,
		BaseBranch: baseValue,
		DryRun:     dryRunValue,
	}, nil
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.sanitize()
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
	return builder.GitHubHostProvider()
}

// WriteResult prints the sync header, one line per branch and the summary.
func WriteResult(reporter utils.Reporter, result Result) {
	createdTemplate := createdLineTemplateConstant
	if result.DryRun {
		reporter.Printf(dryRunHeaderTemplateConstant, result.Repository, result.BaseBranch)
		createdTemplate = plannedLineTemplateConstant
	} else {
		reporter.Printf(resultHeaderTemplateConstant, result.Repository, result.BaseBranch)
	}

	for _, branchName := range result.Created {
		reporter.Printf(createdTemplate, branchName)
	}
	for _, branchName := range result.Skipped {
		reporter.Printf(skippedLineTemplateConstant, branchName)
	}
	for _, failure := range result.Failed {
		reporter.Printf(failedLineTemplateConstant, failure.Branch, failure.Message)
	}
	reporter.Printf(summaryLineTemplateConstant, result.Summary())
}
