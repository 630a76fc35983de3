package secrets

import "strings"

const (
	configurationRepositoryKeyConstant  = "repository"
	configurationEnvironmentKeyConstant = "env_file"
	configurationIncludeKeyConstant     = "include"
	configurationExcludeKeyConstant     = "exclude"
	configurationDryRunKeyConstant      = "dry_run"
	configurationKeySeparatorConstant   = "."
	defaultEnvironmentFileConstant      = ".env"
)

// CommandConfiguration captures configuration values for the secrets sync command.
type CommandConfiguration struct {
	Repository      string   `mapstructure:"repository"`
	EnvironmentFile string   `mapstructure:"env_file"`
	Include         []string `mapstructure:"include"`
	Exclude         []string `mapstructure:"exclude"`
	DryRun          bool     `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration reads .env from the working directory and syncs every variable.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repository:      "",
		EnvironmentFile: defaultEnvironmentFileConstant,
		Include:         nil,
		Exclude:         nil,
		DryRun:          false,
	}
}

// DefaultConfigurationValues produces Viper defaults for secrets sync under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant:  defaults.Repository,
		rootKey + configurationKeySeparatorConstant + configurationEnvironmentKeyConstant: defaults.EnvironmentFile,
		rootKey + configurationKeySeparatorConstant + configurationIncludeKeyConstant:     []string{},
		rootKey + configurationKeySeparatorConstant + configurationExcludeKeyConstant:     []string{},
		rootKey + configurationKeySeparatorConstant + configurationDryRunKeyConstant:      defaults.DryRun,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.EnvironmentFile = strings.TrimSpace(configuration.EnvironmentFile)
	if len(sanitized.EnvironmentFile) == 0 {
		sanitized.EnvironmentFile = defaultEnvironmentFileConstant
	}
	sanitized.Include = trimNames(configuration.Include)
	sanitized.Exclude = trimNames(configuration.Exclude)
	return sanitized
}

func trimNames(rawNames []string) []string {
	trimmed := make([]string, 0, len(rawNames))
	for _, rawName := range rawNames {
		if name := strings.TrimSpace(rawName); len(name) > 0 {
			trimmed = append(trimmed, name)
		}
	}
	return trimmed
}
