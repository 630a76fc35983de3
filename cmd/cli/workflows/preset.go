package workflows

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/contentsync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/presets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/history"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
	pathutils "github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils/path"
)

const (
	presetCommandUseConstant               = "preset"
	presetCommandShortDescriptionConstant  = "Write the files of a workflow preset to a GitHub repository"
	presetCommandLongDescriptionConstant   = "preset resolves the workflows, prompts and agents of a preset from the template archive and writes them one file at a time through the contents API. A failure on one file does not stop the others."
	presetsCommandUseConstant              = "presets"
	presetsCommandShortDescriptionConstant = "List the available workflow presets"
	presetFailureTemplateConstant          = "preset sync failed: %w"
	presetsFailureTemplateConstant         = "preset listing failed: %w"
	presetHeaderTemplateConstant           = "Preset %s for %s from %s\n"
	presetDryRunHeaderTemplateConstant     = "Dry run of preset %s for %s from %s\n"
	presetSummaryLineTemplateConstant      = "%s: %s\n"
	flagPresetNameConstant                 = "preset"
	flagPresetUsageConstant                = "Preset to apply"
	flagPresetFileNameConstant             = "preset-file"
	flagPresetFileUsageConstant            = "YAML file that replaces the built-in preset catalog"
	flagOverwriteNameConstant              = "overwrite"
	flagOverwriteUsageConstant             = "Replace files that already exist"
	flagDryRunNameConstant                 = "dry-run"
	flagDryRunUsageConstant                = "Report planned writes without changing the repository"
)

var presetFileExpander = pathutils.NewHomeExpander()

func (builder *CommandBuilder) buildPresetCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   presetCommandUseConstant,
		Short: presetCommandShortDescriptionConstant,
		Long:  presetCommandLongDescriptionConstant,
		RunE:  builder.runPreset,
	}

	registerTemplateFlags(command)
	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryUsageConstant)
	command.Flags().String(flagBranchNameConstant, "", flagBranchUsageConstant)
	command.Flags().String(flagPresetNameConstant, "", flagPresetUsageConstant)
	command.Flags().String(flagPresetFileNameConstant, "", flagPresetFileUsageConstant)
	command.Flags().Bool(flagOverwriteNameConstant, false, flagOverwriteUsageConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunUsageConstant)

	return command
}

func (builder *CommandBuilder) buildPresetsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   presetsCommandUseConstant,
		Short: presetsCommandShortDescriptionConstant,
		RunE:  builder.runPresets,
	}

	command.Flags().String(flagPresetFileNameConstant, "", flagPresetFileUsageConstant)

	return command
}

func (builder *CommandBuilder) runPreset(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(presetCommandUseConstant, arguments); argumentsError != nil {
		return argumentsError
	}

	configuration, configurationError := builder.parsePresetConfiguration(command)
	if configurationError != nil {
		return configurationError
	}
	if len(configuration.Repository) > 0 {
		repository, repositoryError := githubcli.ParseRepository(configuration.Repository)
		if repositoryError != nil {
			return fmt.Errorf(presetFailureTemplateConstant, repositoryError)
		}
		configuration.Repository = repository
	}

	catalog, catalogError := loadCatalog(configuration.PresetFile)
	if catalogError != nil {
		return fmt.Errorf(presetFailureTemplateConstant, catalogError)
	}

	preset, lookupError := catalog.Lookup(configuration.Preset)
	if lookupError != nil {
		return fmt.Errorf(presetFailureTemplateConstant, lookupError)
	}

	logger := builder.resolveLogger()
	client, clientError := builder.resolveClient(logger)
	if clientError != nil {
		return clientError
	}

	templateService, templateServiceError := builder.newTemplateService(logger, client)
	if templateServiceError != nil {
		return templateServiceError
	}

	archive, archiveError := templateService.FetchArchive(command.Context(), configuration.TemplateRepository, configuration.Reference)
	if archiveError != nil {
		return fmt.Errorf(presetFailureTemplateConstant, archiveError)
	}

	files, filesError := contentsync.GroupFiles(archive, preset.Groups())
	if filesError != nil {
		return fmt.Errorf(presetFailureTemplateConstant, filesError)
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
		CommitMessageTemplate: contentsync.WorkflowCommitMessageTemplate,
	})
	if syncError != nil {
		return fmt.Errorf(presetFailureTemplateConstant, syncError)
	}

	if !configuration.DryRun {
		history.RememberRepository(builder.RepositoryRecorder, logger, configuration.Repository)
	}

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	headerTemplate := presetHeaderTemplateConstant
	if configuration.DryRun {
		headerTemplate = presetDryRunHeaderTemplateConstant
	}
	reporter.Printf(headerTemplate, preset.Name, configuration.Repository, configuration.TemplateRepository)
	templatesync.WriteReport(reporter, result, configuration.DryRun)

	return nil
}

func (builder *CommandBuilder) runPresets(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(presetsCommandUseConstant, arguments); argumentsError != nil {
		return argumentsError
	}

	presetFile, flagError := stringFlagOverride(command, flagPresetFileNameConstant, builder.resolvePresetConfiguration().PresetFile)
	if flagError != nil {
		return flagError
	}

	catalog, catalogError := loadCatalog(presetFile)
	if catalogError != nil {
		return fmt.Errorf(presetsFailureTemplateConstant, catalogError)
	}

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	for _, summary := range catalog.Summaries() {
		reporter.Printf(presetSummaryLineTemplateConstant, summary.Name, summary.Description)
	}

	return nil
}

func (builder *CommandBuilder) parsePresetConfiguration(command *cobra.Command) (PresetConfiguration, error) {
	var flagError error
	configuration := builder.resolvePresetConfiguration()

	if configuration.TemplateRepository, flagError = stringFlagOverride(command, flagTemplateRepositoryNameConstant, configuration.TemplateRepository); flagError != nil {
		return PresetConfiguration{}, flagError
	}
	if configuration.Reference, flagError = stringFlagOverride(command, flagReferenceNameConstant, configuration.Reference); flagError != nil {
		return PresetConfiguration{}, flagError
	}
	if configuration.Repository, flagError = stringFlagOverride(command, flagRepositoryNameConstant, configuration.Repository); flagError != nil {
		return PresetConfiguration{}, flagError
	}
	if configuration.Branch, flagError = stringFlagOverride(command, flagBranchNameConstant, configuration.Branch); flagError != nil {
		return PresetConfiguration{}, flagError
	}
	if configuration.Preset, flagError = stringFlagOverride(command, flagPresetNameConstant, configuration.Preset); flagError != nil {
		return PresetConfiguration{}, flagError
	}
	if configuration.PresetFile, flagError = stringFlagOverride(command, flagPresetFileNameConstant, configuration.PresetFile); flagError != nil {
		return PresetConfiguration{}, flagError
	}
	if configuration.Overwrite, flagError = boolFlagOverride(command, flagOverwriteNameConstant, configuration.Overwrite); flagError != nil {
		return PresetConfiguration{}, flagError
	}
	if configuration.DryRun, flagError = boolFlagOverride(command, flagDryRunNameConstant, configuration.DryRun); flagError != nil {
		return PresetConfiguration{}, flagError
	}

	return configuration.sanitize(), nil
}

func loadCatalog(presetFile string) (presets.Catalog, error) {
	if len(presetFile) == 0 {
		return presets.DefaultCatalog()
	}
	return presets.LoadCatalog(presetFileExpander.Expand(presetFile))
}
