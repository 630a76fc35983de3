package workflows

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

const (
	syncCommandUseConstant              = "sync"
	syncCommandShortDescriptionConstant = "Copy template files into a local directory"
	syncCommandLongDescriptionConstant  = "sync downloads the template repository archive and writes its .github directory, or only the named workflow files, into the destination directory. Existing files are kept unless an overwrite flag is set."
	syncFailureTemplateConstant         = "workflow sync failed: %w"
	syncHeaderTemplateConstant          = "Template sync from %s into %s\n"
	flagDestinationNameConstant         = "destination"
	flagDestinationUsageConstant        = "Directory whose .github folder is updated"
)

func (builder *CommandBuilder) buildSyncCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   syncCommandUseConstant,
		Short: syncCommandShortDescriptionConstant,
		Long:  syncCommandLongDescriptionConstant,
		RunE:  builder.runSync,
	}

	registerTemplateFlags(command)
	registerSelectionFlags(command)
	command.Flags().String(flagDestinationNameConstant, "", flagDestinationUsageConstant)

	return command
}

func (builder *CommandBuilder) runSync(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(syncCommandUseConstant, arguments); argumentsError != nil {
		return argumentsError
	}

	configuration, configurationError := applySelectionFlags(command, builder.resolveConfiguration())
	if configurationError != nil {
		return configurationError
	}
	if configuration.Destination, configurationError = stringFlagOverride(command, flagDestinationNameConstant, configuration.Destination); configurationError != nil {
		return configurationError
	}
	configuration = configuration.sanitize()

	logger := builder.resolveLogger()
	client, clientError := builder.resolveClient(logger)
	if clientError != nil {
		return clientError
	}

	service, serviceError := builder.newTemplateService(logger, client)
	if serviceError != nil {
		return serviceError
	}

	result, syncError := service.SyncLocal(command.Context(), templatesync.LocalOptions{
		TemplateRepository: configuration.TemplateRepository,
		Reference:          configuration.Reference,
		Destination:        configuration.Destination,
		Request:            templateRequest(configuration),
		Clean:              configuration.Clean,
	})
	if syncError != nil {
		return fmt.Errorf(syncFailureTemplateConstant, syncError)
	}

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	reporter.Printf(syncHeaderTemplateConstant, configuration.TemplateRepository, configuration.Destination)
	templatesync.WriteReport(reporter, result, false)

	return nil
}
