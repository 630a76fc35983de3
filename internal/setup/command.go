package setup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/branches"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/contentsync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/dependencies"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/presets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/secrets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
	pathutils "github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils/path"
)

const (
	commandUseConstant                        = "setup"
	commandShortDescriptionConstant           = "Prepare a repository from the template in one run"
	commandLongDescriptionConstant            = "setup applies a workflow preset, uploads .env values as Actions secrets, creates the main and develop branches and copies the agent guidance documents. --dry-run is passed to every step."
	commandExecutionErrorTemplateConstant     = "repository setup failed: %w"
	unexpectedArgumentsMessageConstant        = "setup does not accept positional arguments"
	flagRepositoryNameConstant                = "repo"
	flagRepositoryDescriptionConstant         = "Target repository in owner/name form"
	flagTemplateRepositoryNameConstant        = "template-repo"
	flagTemplateRepositoryDescriptionConstant = "Template repository in owner/name form"
	flagReferenceNameConstant                 = "ref"
	flagReferenceDescriptionConstant          = "Branch, tag or commit of the template repository"
	flagPresetNameConstant                    = "preset"
	flagPresetDescriptionConstant             = "Workflow preset to apply"
	flagPresetFileNameConstant                = "preset-file"
	flagPresetFileDescriptionConstant         = "YAML preset catalog replacing the built-in presets"
	flagEnvironmentFileNameConstant           = "env-file"
	flagEnvironmentFileDescriptionConstant    = "Path to the .env file"
	flagIncludeNameConstant                   = "include"
	flagIncludeDescriptionConstant            = "Only upload these variable names (repeatable)"
	flagExcludeNameConstant                   = "exclude"
	flagExcludeDescriptionConstant            = "Skip these variable names (repeatable)"
	flagBranchNameConstant                    = "branch"
	flagBranchDescriptionConstant             = "Branch to create (repeatable, defaults to main and develop)"
	flagFileNameConstant                      = "file"
	flagFileDescriptionConstant               = "Document to copy from the template root (repeatable)"
	flagOverwriteNameConstant                 = "overwrite"
	flagOverwriteDescriptionConstant          = "Replace workflows and documents that already exist"
	flagDryRunNameConstant                    = "dry-run"
	flagDryRunDescriptionConstant             = "Report every step without changing the repository"
	flagCreateBranchesNameConstant            = "create-branches"
	flagCreateBranchesDescriptionConstant     = "Create the missing branches"
	flagSyncDocumentsNameConstant             = "sync-docs"
	flagSyncDocumentsDescriptionConstant      = "Copy the agent guidance documents"
	headerTemplateConstant                    = "Repository setup for %s from %s (preset %s)\n"
	dryRunHeaderTemplateConstant              = "Dry run of repository setup for %s from %s (preset %s)\n"
	sectionTemplateConstant                   = "[%s]\n"
	workflowsSectionConstant                  = "workflows"
	secretsSectionConstant                    = "secrets"
	branchesSectionConstant                   = "branches"
	documentsSectionConstant                  = "docs"
	stepFailureTemplateConstant               = "step failed: %s: %s\n"
	completedMessageConstant                  = "Setup completed\n"
	completedWithFailuresMessageConstant      = "Setup completed with failures\n"
)

var (
	errUnexpectedArguments     = errors.New(unexpectedArgumentsMessageConstant)
	setupHomeDirectoryExpander = pathutils.NewHomeExpander()
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the setup command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitHubHostProvider           func() string
	Executor                     githubcli.GitHubCommandExecutor
	RepositoryRecorder           history.RepositoryRecorder
	RandomSource                 io.Reader
}

// Build constructs the setup command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().String(flagTemplateRepositoryNameConstant, "", flagTemplateRepositoryDescriptionConstant)
	command.Flags().String(flagReferenceNameConstant, "", flagReferenceDescriptionConstant)
	command.Flags().String(flagPresetNameConstant, "", flagPresetDescriptionConstant)
	command.Flags().String(flagPresetFileNameConstant, "", flagPresetFileDescriptionConstant)
	command.Flags().String(flagEnvironmentFileNameConstant, "", flagEnvironmentFileDescriptionConstant)
	command.Flags().StringSlice(flagIncludeNameConstant, nil, flagIncludeDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeDescriptionConstant)
	command.Flags().StringSlice(flagBranchNameConstant, nil, flagBranchDescriptionConstant)
	command.Flags().StringSlice(flagFileNameConstant, nil, flagFileDescriptionConstant)
	command.Flags().Bool(flagOverwriteNameConstant, false, flagOverwriteDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().Bool(flagCreateBranchesNameConstant, defaults.CreateBranches, flagCreateBranchesDescriptionConstant)
	command.Flags().Bool(flagSyncDocumentsNameConstant, defaults.SyncDocuments, flagSyncDocumentsDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
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

	variables, loadError := secrets.LoadEnvironmentFile(configuration.EnvironmentFile, setupHomeDirectoryExpander)
	if loadError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, loadError)
	}
	selectedVariables := secrets.Filter(variables, configuration.Include, configuration.Exclude)
	if len(selectedVariables) == 0 {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, ErrVariablesRequired)
	}

	catalog, catalogError := loadCatalog(configuration.PresetFile)
	if catalogError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, catalogError)
	}
	preset, lookupError := catalog.Lookup(configuration.Preset)
	if lookupError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, lookupError)
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.newService(logger)
	if serviceError != nil {
		return serviceError
	}

	result, runError := service.Run(command.Context(), Options{
		Repository:         repository,
		TemplateRepository: configuration.TemplateRepository,
		Reference:          configuration.Reference,
		Preset:             preset,
		Variables:          selectedVariables,
		Branches:           configuration.Branches,
		DocumentFiles:      configuration.Files,
		Overwrite:          configuration.Overwrite,
		DryRun:             configuration.DryRun,
		CreateBranches:     configuration.CreateBranches,
		SyncDocuments:      configuration.SyncDocuments,
	})
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	if !result.DryRun && result.Succeeded() {
		history.RememberRepository(builder.RepositoryRecorder, logger, result.Repository)
	}

	writeResult(utils.NewWriterReporter(command.OutOrStdout()), result, configuration.TemplateRepository)

	return nil
}

func (builder *CommandBuilder) newService(logger *zap.Logger) (*Service, error) {
	humanReadable := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
	executor, executorError := dependencies.ResolveGitHubExecutor(builder.Executor, logger, humanReadable)
	if executorError != nil {
		return nil, executorError
	}

	host := ""
	if builder.GitHubHostProvider != nil {
		host = builder.GitHubHostProvider()
	}
	client, clientError := dependencies.ResolveGitHubClient(executor, host)
	if clientError != nil {
		return nil, clientError
	}

	templateService, templateServiceError := templatesync.NewService(templatesync.ServiceDependencies{Logger: logger, Downloader: client})
	if templateServiceError != nil {
		return nil, templateServiceError
	}
	contentService, contentServiceError := contentsync.NewService(logger, client)
	if contentServiceError != nil {
		return nil, contentServiceError
	}
	secretsService, secretsServiceError := secrets.NewService(logger, client, builder.RandomSource)
	if secretsServiceError != nil {
		return nil, secretsServiceError
	}
	branchService, branchServiceError := branches.NewService(branches.ServiceDependencies{Logger: logger, Client: client})
	if branchServiceError != nil {
		return nil, branchServiceError
	}

	return NewService(ServiceDependencies{
		Logger:   logger,
		Archives: templateService,
		Files:    contentService,
		Secrets:  secretsService,
		Branches: branchService,
	})
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
		{flagName: flagTemplateRepositoryNameConstant, target: &configuration.TemplateRepository},
		{flagName: flagReferenceNameConstant, target: &configuration.Reference},
		{flagName: flagPresetNameConstant, target: &configuration.Preset},
		{flagName: flagPresetFileNameConstant, target: &configuration.PresetFile},
		{flagName: flagEnvironmentFileNameConstant, target: &configuration.EnvironmentFile},
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

	sliceTargets := []struct {
		flagName string
		target   *[]string
	}{
		{flagName: flagIncludeNameConstant, target: &configuration.Include},
		{flagName: flagExcludeNameConstant, target: &configuration.Exclude},
		{flagName: flagBranchNameConstant, target: &configuration.Branches},
		{flagName: flagFileNameConstant, target: &configuration.Files},
	}
	for _, sliceTarget := range sliceTargets {
		if !command.Flags().Changed(sliceTarget.flagName) {
			continue
		}
		flagValues, flagError := command.Flags().GetStringSlice(sliceTarget.flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*sliceTarget.target = flagValues
	}

	boolTargets := []struct {
		flagName string
		target   *bool
	}{
		{flagName: flagOverwriteNameConstant, target: &configuration.Overwrite},
		{flagName: flagDryRunNameConstant, target: &configuration.DryRun},
		{flagName: flagCreateBranchesNameConstant, target: &configuration.CreateBranches},
		{flagName: flagSyncDocumentsNameConstant, target: &configuration.SyncDocuments},
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

func loadCatalog(presetFile string) (presets.Catalog, error) {
	if len(presetFile) == 0 {
		return presets.DefaultCatalog()
	}
	return presets.LoadCatalog(setupHomeDirectoryExpander.Expand(presetFile))
}

func writeResult(reporter utils.Reporter, result Result, templateRepository string) {
	headerTemplate := headerTemplateConstant
	if result.DryRun {
		headerTemplate = dryRunHeaderTemplateConstant
	}
	reporter.Printf(headerTemplate, result.Repository, templateRepository, result.Preset)

	reporter.Printf(sectionTemplateConstant, workflowsSectionConstant)
	templatesync.WriteReport(reporter, result.Workflows, result.DryRun)

	reporter.Printf(sectionTemplateConstant, secretsSectionConstant)
	secrets.WriteResult(reporter, result.Secrets)

	if result.Branches != nil {
		reporter.Printf(sectionTemplateConstant, branchesSectionConstant)
		branches.WriteResult(reporter, *result.Branches)
	}
	if result.Documents != nil {
		reporter.Printf(sectionTemplateConstant, documentsSectionConstant)
		templatesync.WriteReport(reporter, *result.Documents, result.DryRun)
	}

	for _, failure := range result.StepFailures {
		reporter.Printf(stepFailureTemplateConstant, failure.Step, failure.Message)
	}

	if result.Succeeded() {
		reporter.Printf(completedMessageConstant)
		return
	}
	reporter.Printf(completedWithFailuresMessageConstant)
}
