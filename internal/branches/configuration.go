package branches

import "strings"

const (
	configurationRepositoryKeyConstant = "repository"
	configurationBaseKeyConstant       = "base"
	configurationBranchesKeyConstant   = "branches"
	configurationDryRunKeyConstant     = "dry_run"
	configurationKeySeparatorConstant  = "."
)

// CommandConfiguration captures configuration values for the branch sync command.
type CommandConfiguration struct {
	Repository string   `mapstructure:"repository"`
	BaseBranch string   `mapstructure:"base"`
	Branches   []string `mapstructure:"branches"`
	DryRun     bool     `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides baseline configuration values for branch sync.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repository: "",
		BaseBranch: "",
		Branches:   nil,
		DryRun:     false,
	}
}

// DefaultConfigurationValues produces Viper defaults for branch sync under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant: defaults.Repository,
		rootKey + configurationKeySeparatorConstant + configurationBaseKeyConstant:       defaults.BaseBranch,
		rootKey + configurationKeySeparatorConstant + configurationBranchesKeyConstant:   []string{},
		rootKey + configurationKeySeparatorConstant + configurationDryRunKeyConstant:     defaults.DryRun,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	sanitized.Branches = normalizeBranchNames(configuration.Branches)
	return sanitized
}
