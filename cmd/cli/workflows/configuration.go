package workflows

import "strings"

const (
	// DefaultTemplateRepository hosts the canonical workflow templates.
	DefaultTemplateRepository = "Sunwood-ai-labsII/gemini-actions-lab"

	configurationTemplateRepositoryKeyConstant = "template_repository"
	configurationReferenceKeyConstant          = "ref"
	configurationDestinationKeyConstant        = "destination"
	configurationRepositoryKeyConstant         = "repository"
	configurationBranchKeyConstant             = "branch"
	configurationWorkflowsKeyConstant          = "workflows"
	configurationExtraFilesKeyConstant         = "extra_files"
	configurationPreferRemoteKeyConstant       = "prefer_remote"
	configurationCleanKeyConstant              = "clean"
	configurationOverwriteExistingKeyConstant  = "overwrite_existing"
	configurationOverwriteExtrasKeyConstant    = "overwrite_extras"
	configurationCommitMessageKeyConstant      = "commit_message"
	configurationForceKeyConstant              = "force"
	configurationEnablePagesKeyConstant        = "enable_pages_workflow"
	configurationPresetKeyConstant             = "preset"
	configurationPresetFileKeyConstant         = "preset_file"
	configurationOverwriteKeyConstant          = "overwrite"
	configurationDryRunKeyConstant             = "dry_run"
	configurationKeySeparatorConstant          = "."
	defaultDestinationConstant                 = "."
	defaultPresetConstant                      = "pr-review"
)

// CommandConfiguration captures configuration values for workflows sync and push.
type CommandConfiguration struct {
	TemplateRepository  string   `mapstructure:"template_repository"`
	Reference           string   `mapstructure:"ref"`
	Destination         string   `mapstructure:"destination"`
	Repository          string   `mapstructure:"repository"`
	Branch              string   `mapstructure:"branch"`
	Workflows           []string `mapstructure:"workflows"`
	ExtraFiles          []string `mapstructure:"extra_files"`
	PreferRemote        bool     `mapstructure:"prefer_remote"`
	Clean               bool     `mapstructure:"clean"`
	OverwriteExisting   bool     `mapstructure:"overwrite_existing"`
	OverwriteExtras     bool     `mapstructure:"overwrite_extras"`
	CommitMessage       string   `mapstructure:"commit_message"`
	Force               bool     `mapstructure:"force"`
	EnablePagesWorkflow bool     `mapstructure:"enable_pages_workflow"`
}

// PresetConfiguration captures configuration values for workflows preset.
type PresetConfiguration struct {
	TemplateRepository string `mapstructure:"template_repository"`
	Reference          string `mapstructure:"ref"`
	Repository         string `mapstructure:"repository"`
	Branch             string `mapstructure:"branch"`
	Preset             string `mapstructure:"preset"`
	PresetFile         string `mapstructure:"preset_file"`
	Overwrite          bool   `mapstructure:"overwrite"`
	DryRun             bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration extracts the whole .github directory of the default template into the working directory.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		TemplateRepository: DefaultTemplateRepository,
		Destination:        defaultDestinationConstant,
	}
}

// DefaultPresetConfiguration syncs the pr-review preset from the default template.
func DefaultPresetConfiguration() PresetConfiguration {
	return PresetConfiguration{
		TemplateRepository: DefaultTemplateRepository,
		Preset:             defaultPresetConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for workflows sync and push under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey(rootKey, configurationTemplateRepositoryKeyConstant): defaults.TemplateRepository,
		configurationKey(rootKey, configurationReferenceKeyConstant):          defaults.Reference,
		configurationKey(rootKey, configurationDestinationKeyConstant):        defaults.Destination,
		configurationKey(rootKey, configurationRepositoryKeyConstant):         defaults.Repository,
		configurationKey(rootKey, configurationBranchKeyConstant):             defaults.Branch,
		configurationKey(rootKey, configurationWorkflowsKeyConstant):          []string{},
		configurationKey(rootKey, configurationExtraFilesKeyConstant):         []string{},
		configurationKey(rootKey, configurationPreferRemoteKeyConstant):       defaults.PreferRemote,
		configurationKey(rootKey, configurationCleanKeyConstant):              defaults.Clean,
		configurationKey(rootKey, configurationOverwriteExistingKeyConstant):  defaults.OverwriteExisting,
		configurationKey(rootKey, configurationOverwriteExtrasKeyConstant):    defaults.OverwriteExtras,
		configurationKey(rootKey, configurationCommitMessageKeyConstant):      defaults.CommitMessage,
		configurationKey(rootKey, configurationForceKeyConstant):              defaults.Force,
		configurationKey(rootKey, configurationEnablePagesKeyConstant):        defaults.EnablePagesWorkflow,
	}
}

// DefaultPresetConfigurationValues produces Viper defaults for workflows preset under rootKey.
func DefaultPresetConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultPresetConfiguration()
	return map[string]any{
		configurationKey(rootKey, configurationTemplateRepositoryKeyConstant): defaults.TemplateRepository,
		configurationKey(rootKey, configurationReferenceKeyConstant):          defaults.Reference,
		configurationKey(rootKey, configurationRepositoryKeyConstant):         defaults.Repository,
		configurationKey(rootKey, configurationBranchKeyConstant):             defaults.Branch,
		configurationKey(rootKey, configurationPresetKeyConstant):             defaults.Preset,
		configurationKey(rootKey, configurationPresetFileKeyConstant):         defaults.PresetFile,
		configurationKey(rootKey, configurationOverwriteKeyConstant):          defaults.Overwrite,
		configurationKey(rootKey, configurationDryRunKeyConstant):             defaults.DryRun,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.TemplateRepository = strings.TrimSpace(configuration.TemplateRepository)
	if len(sanitized.TemplateRepository) == 0 {
		sanitized.TemplateRepository = DefaultTemplateRepository
	}
	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	sanitized.Destination = strings.TrimSpace(configuration.Destination)
	if len(sanitized.Destination) == 0 {
		sanitized.Destination = defaultDestinationConstant
	}
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	sanitized.Workflows = trimValues(configuration.Workflows)
	sanitized.ExtraFiles = trimValues(configuration.ExtraFiles)
	sanitized.CommitMessage = strings.TrimSpace(configuration.CommitMessage)
	return sanitized
}

func (configuration PresetConfiguration) sanitize() PresetConfiguration {
	sanitized := configuration
	sanitized.TemplateRepository = strings.TrimSpace(configuration.TemplateRepository)
	if len(sanitized.TemplateRepository) == 0 {
		sanitized.TemplateRepository = DefaultTemplateRepository
	}
	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	sanitized.Preset = strings.TrimSpace(configuration.Preset)
	if len(sanitized.Preset) == 0 {
		sanitized.Preset = defaultPresetConstant
	}
	sanitized.PresetFile = strings.TrimSpace(configuration.PresetFile)
	return sanitized
}

func configurationKey(rootKey string, key string) string {
	return rootKey + configurationKeySeparatorConstant + key
}

func trimValues(rawValues []string) []string {
	trimmed := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		if value := strings.TrimSpace(rawValue); len(value) > 0 {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}
