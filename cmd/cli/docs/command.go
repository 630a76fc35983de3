package docs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/contentsync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/dependencies"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

const (
	groupUseConstant                          = "docs"
	groupShortDescriptionConstant             = "Synchronize agent guidance documents"
	groupLongDescriptionConstant              = "docs groups commands that manage the agent guidance documents kept at the root of the template repository."
	syncCommandUseConstant                    = "sync"
	syncCommandShortDescriptionConstant       = "Write template documents to a GitHub repository"
	syncCommandLongDescriptionConstant        = "sync copies AGENTS.md, Claude.md and GEMINI.md (or the files named with --file) from the template repository root to the target repository through the contents API. Existing documents are kept unless --overwrite is set."
	commandExecutionErrorTemplateConstant     = "documentation sync failed: %w"
	unexpectedArgumentsMessageConstant        = "docs sync does not accept positional arguments"
	headerTemplateConstant                    = "Documentation sync for %s from %s\n"
	dryRunHeaderTemplateConstant              = "Dry run of documentation sync for %s from %s\n"
	flagRepositoryNameConstant                = "repo"
	flagRepositoryDescriptionConstant         = "Target repository in owner/name form"
	flagBranchNameConstant                    = "branch"
	flagBranchDescriptionConstant             = "Target branch (default branch when empty)"
	flagTemplateRepositoryNameConstant        = "template-repo"
	flagTemplateRepositoryDescriptionConstant = "Template repository in owner/name form"
	flagReferenceNameConstant                 = "ref"
	flagReferenceDescriptionConstant          = "Branch, tag or commit of the template repository"
	flagFileNameConstant                      = "file"
	flagFileDescriptionConstant               = "Document to copy from the template root (repeatable)"
	flagOverwriteNameConstant                 = "overwrite"
	flagOverwriteDescriptionConstant          = "Replace documents that already exist"
	flagDryRunNameConstant                    = "dry-run"
	flagDryRunDescriptionConstant             = "Report planned writes without changing the repository"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the docs command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitHubHostProvider           func() string
	Executor                     githubcli.GitHubCommandExecutor
	RepositoryRecorder           history.RepositoryRecorder
}

// Build constructs the docs command with its sync subcommand.
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
	syncCommand.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	syncCommand.Flags().String(flagTemplateRepositoryNameConstant, "", flagTemplateRepositoryDescriptionConstant)
	syncCommand.Flags().String(flagReferenceNameConstant, "", flagReferenceDescriptionConstant)
	syncCommand.Flags().StringSlice(flagFileNameConstant, nil, flagFileDescriptionConstant)
	syncCommand.Flags().Bool(flagOverwriteNameConstant, false, flagOverwriteDescriptionConstant)
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
	if len(configuration.Repository) > 0 {
		repository, repositoryError := githubcli.ParseRepository(configuration.Repository)
		if repositoryError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, repositoryError)
		}
		configuration.Repository = repository
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

	templateService, templateServiceError := templatesync.NewService(templatesync.ServiceDependencies{Logger: logger, Downloader: client})
	if templateServiceError != nil {
		return templateServiceError
	}

	archive, archiveError := templateService.FetchArchive(command.Context(), configuration.TemplateRepository, configuration.Reference)
	if archiveError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, archiveError)
	}

	files, filesError := contentsync.DocumentationFiles(archive, configuration.Files)
	if filesError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, filesError)
	}

	contentService, contentServiceError := contentsync.NewService(logger, client)
	if contentServiceError != nil {
		return contentServiceError
	}

	result, syncError := contentService.SyncFiles(command.Context(), contentsync.Options{
		Repository:            configuration.Repository,
		Branch:                configuration.Branch,
		Files:                 files,
		Overwrite:             configuration.Overwrite,
		DryRun:                configuration.DryRun,
		CommitMessageTemplate: contentsync.DocumentationCommitMessageTemplate,
	})
	if syncError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, syncError)
	}

	if !configuration.DryRun {
		history.RememberRepository(builder.RepositoryRecorder, logger, configuration.Repository)
	}

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	headerTemplate := headerTemplateConstant
	if configuration.DryRun {
		headerTemplate = dryRunHeaderTemplateConstant
	}
	reporter.Printf(headerTemplate, configuration.Repository, configuration.TemplateRepository)
	templatesync.WriteReport(reporter, result, configuration.DryRun)

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
		{flagName: flagBranchNameConstant, target: &configuration.Branch},
		{flagName: flagTemplateRepositoryNameConstant, target: &configuration.TemplateRepository},
		{flagName: flagReferenceNameConstant, target: &configuration.Reference},
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

	if command.Flags().Changed(flagFileNameConstant) {
		flagValues, flagError := command.Flags().GetStringSlice(flagFileNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.Files = flagValues
	}

	boolTargets := []struct {
		flagName string
		target   *bool
	}{
		{flagName: flagOverwriteNameConstant, target: &configuration.Overwrite},
		{flagName: flagDryRunNameConstant, target: &configuration.DryRun},
	}
	for _, boolTarget := range boolTargets {
		if !command.Flags().Changed(boolTarget.flagName) {
			continue
		}
		flagValue, flagError := command.Flags().GetBool(boolTarget.flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*boolTarget.target = flagValue
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
