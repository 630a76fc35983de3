package workflows

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

const (
	pushCommandUseConstant              = "push"
	pushCommandShortDescriptionConstant = "Commit template files directly to a GitHub repository"
	pushCommandLongDescriptionConstant  = "push builds a single commit from the template files on top of the target branch through the git data API, without a local checkout. Nothing is committed when the tree does not change."
	pushFailureTemplateConstant         = "workflow push failed: %w"
	pushHeaderTemplateConstant          = "Template push from %s to %s (%s)\n"
	commitLineTemplateConstant          = "commit: %s\n"
	unchangedLineConstant               = "no changes to commit\n"
	flagCommitMessageNameConstant       = "commit-message"
	flagCommitMessageUsageConstant      = "Commit message (defaults to a message naming the template repository)"
	flagForceNameConstant               = "force"
	flagForceUsageConstant              = "Allow a non-fast-forward branch update"
	flagEnablePagesNameConstant         = "enable-pages-workflow"
	flagEnablePagesUsageConstant        = "Configure GitHub Pages to build from GitHub Actions after the push"
)

func (builder *CommandBuilder) buildPushCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortDescriptionConstant,
		Long:  pushCommandLongDescriptionConstant,
		RunE:  builder.runPush,
	}

	registerTemplateFlags(command)
	registerSelectionFlags(command)
	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryUsageConstant)
	command.Flags().String(flagBranchNameConstant, "", flagBranchUsageConstant)
	command.Flags().String(flagCommitMessageNameConstant, "", flagCommitMessageUsageConstant)
	command.Flags().Bool(flagForceNameConstant, false, flagForceUsageConstant)
	command.Flags().Bool(flagEnablePagesNameConstant, false, flagEnablePagesUsageConstant)

	return command
}

func (builder *CommandBuilder) runPush(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(pushCommandUseConstant, arguments); argumentsError != nil {
		return argumentsError
	}

	configuration, configurationError := builder.parsePushConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	client, clientError := builder.resolveClient(logger)
	if clientError != nil {
		return clientError
	}

	service, serviceError := builder.newTemplateService(logger, client)
	if serviceError != nil {
		return serviceError
	}

	result, pushError := service.SyncRemote(command.Context(), templatesync.RemoteOptions{
		TemplateRepository: configuration.TemplateRepository,
		Reference:          configuration.Reference,
		Repository:         configuration.Repository,
		Branch:             configuration.Branch,
		Request:            templateRequest(configuration),
		Clean:              configuration.Clean,
		CommitMessage:      configuration.CommitMessage,
		Force:              configuration.Force,
		ConfigurePages:     configuration.EnablePagesWorkflow,
	})
	if pushError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, pushError)
	}

	history.RememberRepository(builder.RepositoryRecorder, logger, result.Repository)

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	reporter.Printf(pushHeaderTemplateConstant, configuration.TemplateRepository, result.Repository, result.Branch)
	templatesync.WriteRemoteReport(reporter, result)
	if result.Committed {
		reporter.Printf(commitLineTemplateConstant, result.CommitSHA)
	} else {
		reporter.Printf(unchangedLineConstant)
	}

	return nil
}

func (builder *CommandBuilder) parsePushConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration, configurationError := applySelectionFlags(command, builder.resolveConfiguration())
	if configurationError != nil {
		return CommandConfiguration{}, configurationError
	}

	if configuration.Repository, configurationError = stringFlagOverride(command, flagRepositoryNameConstant, configuration.Repository); configurationError != nil {
		return CommandConfiguration{}, configurationError
	}
	if configuration.Branch, configurationError = stringFlagOverride(command, flagBranchNameConstant, configuration.Branch); configurationError != nil {
		return CommandConfiguration{}, configurationError
	}
	if configuration.CommitMessage, configurationError = stringFlagOverride(command, flagCommitMessageNameConstant, configuration.CommitMessage); configurationError != nil {
		return CommandConfiguration{}, configurationError
	}
	if configuration.Force, configurationError = boolFlagOverride(command, flagForceNameConstant, configuration.Force); configurationError != nil {
		return CommandConfiguration{}, configurationError
	}
	if configuration.EnablePagesWorkflow, configurationError = boolFlagOverride(command, flagEnablePagesNameConstant, configuration.EnablePagesWorkflow); configurationError != nil {
		return CommandConfiguration{}, configurationError
	}

	return configuration.sanitize(), nil
}
