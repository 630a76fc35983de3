package setup

import "strings"

const (
	defaultTemplateRepositoryConstant          = "Sunwood-ai-labsII/gemini-actions-lab"
	defaultPresetConstant                      = "pr-review"
	defaultEnvironmentFileConstant             = ".env"
	configurationRepositoryKeyConstant         = "repository"
	configurationTemplateRepositoryKeyConstant = "template_repository"
	configurationReferenceKeyConstant          = "ref"
	configurationPresetKeyConstant             = "preset"
	configurationPresetFileKeyConstant         = "preset_file"
	configurationEnvironmentKeyConstant        = "env_file"
	configurationIncludeKeyConstant            = "include"
	configurationExcludeKeyConstant            = "exclude"
	configurationBranchesKeyConstant           = "branches"
	configurationFilesKeyConstant              = "files"
	configurationOverwriteKeyConstant          = "overwrite"
	configurationDryRunKeyConstant             = "dry_run"
	configurationCreateBranchesKeyConstant     = "create_branches"
	configurationSyncDocumentsKeyConstant      = "sync_docs"
	configurationKeySeparatorConstant          = "."
)

// CommandConfiguration captures configuration values for repository setup.
type CommandConfiguration struct {
	Repository         string   `mapstructure:"repository"`
	TemplateRepository string   `mapstructure:"template_repository"`
	Reference          string   `mapstructure:"ref"`
	Preset             string   `mapstructure:"preset"`
	PresetFile         string   `mapstructure:"preset_file"`
	EnvironmentFile    string   `mapstructure:"env_file"`
	Include            []string `mapstructure:"include"`
	Exclude            []string `mapstructure:"exclude"`
	Branches           []string `mapstructure:"branches"`
	Files              []string `mapstructure:"files"`
	Overwrite          bool     `mapstructure:"overwrite"`
	DryRun             bool     `mapstructure:"dry_run"`
	CreateBranches     bool     `mapstructure:"create_branches"`
	SyncDocuments      bool     `mapstructure:"sync_docs"`
}

// DefaultCommandConfiguration applies the pr-review preset from the default template,
// uploads ./.env and creates the main and develop branches.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		TemplateRepository: defaultTemplateRepositoryConstant,
		Preset:             defaultPresetConstant,
		EnvironmentFile:    defaultEnvironmentFileConstant,
		Branches:           append([]string{}, DefaultBranches...),
		CreateBranches:     true,
		SyncDocuments:      true,
	}
}

// DefaultConfigurationValues produces Viper defaults for repository setup under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRepositoryKeyConstant:         defaults.Repository,
		prefix + configurationTemplateRepositoryKeyConstant: defaults.TemplateRepository,
		prefix + configurationReferenceKeyConstant:          defaults.Reference,
		prefix + configurationPresetKeyConstant:             defaults.Preset,
		prefix + configurationPresetFileKeyConstant:         defaults.PresetFile,
		prefix + configurationEnvironmentKeyConstant:        defaults.EnvironmentFile,
		prefix + configurationIncludeKeyConstant:            []string{},
		prefix + configurationExcludeKeyConstant:            []string{},
		prefix + configurationBranchesKeyConstant:           defaults.Branches,
		prefix + configurationFilesKeyConstant:              []string{},
		prefix + configurationOverwriteKeyConstant:          defaults.Overwrite,
		prefix + configurationDryRunKeyConstant:             defaults.DryRun,
		prefix + configurationCreateBranchesKeyConstant:     defaults.CreateBranches,
		prefix + configurationSyncDocumentsKeyConstant:      defaults.SyncDocuments,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.TemplateRepository = strings.TrimSpace(configuration.TemplateRepository)
	if len(sanitized.TemplateRepository) == 0 {
		sanitized.TemplateRepository = defaultTemplateRepositoryConstant
	}
	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	sanitized.Preset = strings.TrimSpace(configuration.Preset)
	if len(sanitized.Preset) == 0 {
		sanitized.Preset = defaultPresetConstant
	}
	sanitized.PresetFile = strings.TrimSpace(configuration.PresetFile)
	sanitized.EnvironmentFile = strings.TrimSpace(configuration.EnvironmentFile)
	if len(sanitized.EnvironmentFile) == 0 {
		sanitized.EnvironmentFile = defaultEnvironmentFileConstant
	}
	sanitized.Branches = trimValues(configuration.Branches)
	sanitized.Files = trimValues(configuration.Files)
	return sanitized
}

func trimValues(rawValues []string) []string {
	trimmed := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		value := strings.TrimSpace(rawValue)
		if len(value) > 0 {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}
