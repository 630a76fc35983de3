package workflows

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/dependencies"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	groupUseConstant                    = "workflows"
	groupShortDescriptionConstant       = "Synchronize workflow templates"
	groupLongDescriptionConstant        = "workflows groups commands that copy GitHub Actions templates from a template repository into a local checkout or straight into a hosted repository."
	unexpectedArgumentsTemplateConstant = "workflows %s does not accept positional arguments"
	flagTemplateRepositoryNameConstant  = "template-repo"
	flagTemplateRepositoryUsageConstant = "Template repository in owner/name form"
	flagReferenceNameConstant           = "ref"
	flagReferenceUsageConstant          = "Branch, tag or commit of the template repository (default branch when empty)"
	flagRepositoryNameConstant          = "repo"
	flagRepositoryUsageConstant         = "Target repository in owner/name form"
	flagBranchNameConstant              = "branch"
	flagBranchUsageConstant             = "Target branch (default branch when empty)"
	flagWorkflowNameConstant            = "workflow"
	flagWorkflowUsageConstant           = "Workflow file to copy instead of the whole .github directory (repeatable)"
	flagPreferRemoteNameConstant        = "prefer-remote"
	flagPreferRemoteUsageConstant       = "Look up workflow files in .github/workflows_remote before .github/workflows"
	flagExtraFileNameConstant           = "extra-file"
	flagExtraFileUsageConstant          = "Repository root file to copy alongside the templates (repeatable)"
	flagCleanNameConstant               = "clean"
	flagCleanUsageConstant              = "Remove the existing .github directory before copying"
	flagOverwriteExistingNameConstant   = "overwrite-existing"
	flagOverwriteExistingUsageConstant  = "Replace .github files that already exist"
	flagOverwriteExtrasNameConstant     = "overwrite-extras"
	flagOverwriteExtrasUsageConstant    = "Replace extra files that already exist"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the workflows command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	PresetConfigurationProvider  func() PresetConfiguration
	GitHubHostProvider           func() string
	Executor                     githubcli.GitHubCommandExecutor
	FileSystemFactory            templatesync.FileSystemFactory
	RepositoryRecorder           history.RepositoryRecorder
}

// Build constructs the workflows command with its sync, push, preset and presets subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	groupCommand.AddCommand(builder.buildSyncCommand())
	groupCommand.AddCommand(builder.buildPushCommand())
	groupCommand.AddCommand(builder.buildPresetCommand())
	groupCommand.AddCommand(builder.buildPresetsCommand())

	return groupCommand, nil
}

func registerTemplateFlags(command *cobra.Command) {
	command.Flags().String(flagTemplateRepositoryNameConstant, "", flagTemplateRepositoryUsageConstant)
	command.Flags().String(flagReferenceNameConstant, "", flagReferenceUsageConstant)
}

func registerSelectionFlags(command *cobra.Command) {
	command.Flags().StringSlice(flagWorkflowNameConstant, nil, flagWorkflowUsageConstant)
	command.Flags().Bool(flagPreferRemoteNameConstant, false, flagPreferRemoteUsageConstant)
	command.Flags().StringSlice(flagExtraFileNameConstant, nil, flagExtraFileUsageConstant)
	command.Flags().Bool(flagCleanNameConstant, false, flagCleanUsageConstant)
	command.Flags().Bool(flagOverwriteExistingNameConstant, false, flagOverwriteExistingUsageConstant)
	command.Flags().Bool(flagOverwriteExtrasNameConstant, false, flagOverwriteExtrasUsageConstant)
}

// applySelectionFlags overrides the shared template and selection settings with explicitly changed flags.
func applySelectionFlags(command *cobra.Command, configuration CommandConfiguration) (CommandConfiguration, error) {
	var flagError error
	updated := configuration

	if updated.TemplateRepository, flagError = stringFlagOverride(command, flagTemplateRepositoryNameConstant, updated.TemplateRepository); flagError != nil {
		return CommandConfiguration{}, flagError
	}
	if updated.Reference, flagError = stringFlagOverride(command, flagReferenceNameConstant, updated.Reference); flagError != nil {
		return CommandConfiguration{}, flagError
	}
	if updated.Workflows, flagError = stringSliceFlagOverride(command, flagWorkflowNameConstant, updated.Workflows); flagError != nil {
		return CommandConfiguration{}, flagError
	}
	if updated.PreferRemote, flagError = boolFlagOverride(command, flagPreferRemoteNameConstant, updated.PreferRemote); flagError != nil {
		return CommandConfiguration{}, flagError
	}
	if updated.ExtraFiles, flagError = stringSliceFlagOverride(command, flagExtraFileNameConstant, updated.ExtraFiles); flagError != nil {
		return CommandConfiguration{}, flagError
	}
	if updated.Clean, flagError = boolFlagOverride(command, flagCleanNameConstant, updated.Clean); flagError != nil {
		return CommandConfiguration{}, flagError
	}
	if updated.OverwriteExisting, flagError = boolFlagOverride(command, flagOverwriteExistingNameConstant, updated.OverwriteExisting); flagError != nil {
		return CommandConfiguration{}, flagError
	}
	if updated.OverwriteExtras, flagError = boolFlagOverride(command, flagOverwriteExtrasNameConstant, updated.OverwriteExtras); flagError != nil {
		return CommandConfiguration{}, flagError
	}

	return updated.sanitize(), nil
}

// templateRequest selects the whole .github directory unless explicit workflow files are named.
func templateRequest(configuration CommandConfiguration) templatesync.Request {
	request := templatesync.Request{
		ExtraFiles:       append([]string{}, configuration.ExtraFiles...),
		OverwriteManaged: configuration.OverwriteExisting,
		OverwriteExtras:  configuration.OverwriteExtras,
	}
	if len(configuration.Workflows) == 0 {
		request.ManagedDirectory = templatesync.ManagedDirectoryGitHub
		return request
	}
	request.Groups = []templatesync.NamedFileGroup{templatesync.WorkflowGroup(configuration.Workflows, configuration.PreferRemote)}
	return request
}

func stringFlagOverride(command *cobra.Command, flagName string, current string) (string, error) {
	if !command.Flags().Changed(flagName) {
		return current, nil
	}
	flagValue, flagError := command.Flags().GetString(flagName)
	if flagError != nil {
		return "", flagError
	}
	return strings.TrimSpace(flagValue), nil
}

func stringSliceFlagOverride(command *cobra.Command, flagName string, current []string) ([]string, error) {
	if !command.Flags().Changed(flagName) {
		return current, nil
	}
	return command.Flags().GetStringSlice(flagName)
}

func boolFlagOverride(command *cobra.Command, flagName string, current bool) (bool, error) {
	if !command.Flags().Changed(flagName) {
		return current, nil
	}
	return command.Flags().GetBool(flagName)
}

func rejectArguments(commandName string, arguments []string) error {
	if len(arguments) == 0 {
		return nil
	}
	return fmt.Errorf(unexpectedArgumentsTemplateConstant, commandName)
}

func (builder *CommandBuilder) resolveClient(logger *zap.Logger) (*githubcli.Client, error) {
	humanReadable := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadable = builder.HumanReadableLoggingProvider()
	}

	executor, executorError := dependencies.ResolveGitHubExecutor(builder.Executor, logger, humanReadable)
	if executorError != nil {
		return nil, executorError
	}

	host := ""
	if builder.GitHubHostProvider != nil {
		host = builder.GitHubHostProvider()
	}
	return dependencies.ResolveGitHubClient(executor, host)
}

func (builder *CommandBuilder) newTemplateService(logger *zap.Logger, client *githubcli.Client) (*templatesync.Service, error) {
	return templatesync.NewService(templatesync.ServiceDependencies{
		Logger:            logger,
		Downloader:        client,
		GitDataClient:     client,
		PagesConfigurator: client,
		FileSystemFactory: builder.FileSystemFactory,
	})
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

func (builder *CommandBuilder) resolvePresetConfiguration() PresetConfiguration {
	configuration := DefaultPresetConfiguration()
	if builder.PresetConfigurationProvider != nil {
		configuration = builder.PresetConfigurationProvider()
	}
	return configuration.sanitize()
}
