package docs

import "strings"

const (
	defaultTemplateRepositoryConstant          = "Sunwood-ai-labsII/gemini-actions-lab"
	configurationTemplateRepositoryKeyConstant = "template_repository"
	configurationReferenceKeyConstant          = "ref"
	configurationRepositoryKeyConstant         = "repository"
	configurationBranchKeyConstant             = "branch"
	configurationFilesKeyConstant              = "files"
	configurationOverwriteKeyConstant          = "overwrite"
	configurationDryRunKeyConstant             = "dry_run"
	configurationKeySeparatorConstant          = "."
)

// CommandConfiguration captures configuration values for documentation sync.
type CommandConfiguration struct {
	TemplateRepository string   `mapstructure:"template_repository"`
	Reference          string   `mapstructure:"ref"`
	Repository         string   `mapstructure:"repository"`
	Branch             string   `mapstructure:"branch"`
	Files              []string `mapstructure:"files"`
	Overwrite          bool     `mapstructure:"overwrite"`
	DryRun             bool     `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration syncs the default documents from the default template.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{TemplateRepository: defaultTemplateRepositoryConstant}
}

// DefaultConfigurationValues produces Viper defaults for documentation sync under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationTemplateRepositoryKeyConstant: defaults.TemplateRepository,
		prefix + configurationReferenceKeyConstant:          defaults.Reference,
		prefix + configurationRepositoryKeyConstant:         defaults.Repository,
		prefix + configurationBranchKeyConstant:             defaults.Branch,
		prefix + configurationFilesKeyConstant:              []string{},
		prefix + configurationOverwriteKeyConstant:          defaults.Overwrite,
		prefix + configurationDryRunKeyConstant:             defaults.DryRun,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.TemplateRepository = strings.TrimSpace(configuration.TemplateRepository)
	if len(sanitized.TemplateRepository) == 0 {
		sanitized.TemplateRepository = defaultTemplateRepositoryConstant
	}
	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	files := make([]string, 0, len(configuration.Files))
	for _, rawFile := range configuration.Files {
		if file := strings.TrimSpace(rawFile); len(file) > 0 {
			files = append(files, file)
		}
	}
	sanitized.Files = files
	return sanitized
}
