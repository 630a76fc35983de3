package tags

import "strings"

const (
	configurationRepositoryKeyConstant = "repository"
	configurationTagKeyConstant        = "tag"
	configurationBranchKeyConstant     = "branch"
	configurationDryRunKeyConstant     = "dry_run"
	configurationKeySeparatorConstant  = "."
)

// CommandConfiguration captures configuration values for the tags latest command.
type CommandConfiguration struct {
	Repository string `mapstructure:"repository"`
	Tag        string `mapstructure:"tag"`
	Branch     string `mapstructure:"branch"`
	DryRun     bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration tags the default branch and requires the tag to be named.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues produces Viper defaults for tagging under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRepositoryKeyConstant: defaults.Repository,
		prefix + configurationTagKeyConstant:        defaults.Tag,
		prefix + configurationBranchKeyConstant:     defaults.Branch,
		prefix + configurationDryRunKeyConstant:     defaults.DryRun,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Tag = normalizeTagName(configuration.Tag)
	sanitized.Branch = normalizeBranchName(configuration.Branch)
	return sanitized
}
