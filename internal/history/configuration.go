package history

import (
	"strings"

	pathutils "github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils/path"
)

const (
	configurationPathKeyConstant         = "path"
	configurationLimitKeyConstant        = "limit"
	configurationRecentLimitKeyConstant  = "recent_limit"
	configurationAccountsKeyConstant     = "accounts"
	configurationLookbackDaysKeyConstant = "lookback_days"
	configurationKeySeparatorConstant    = "."
	defaultLookbackDaysConstant          = 30
)

var historyHomeDirectoryExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures configuration values for repository history.
type CommandConfiguration struct {
	Path         string   `mapstructure:"path"`
	Limit        int      `mapstructure:"limit"`
	RecentLimit  int      `mapstructure:"recent_limit"`
	Accounts     []string `mapstructure:"accounts"`
	LookbackDays int      `mapstructure:"lookback_days"`
}

// DefaultCommandConfiguration provides baseline history settings. An empty path selects DefaultStorePath.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Path:         "",
		Limit:        DefaultStoreLimit,
		RecentLimit:  DefaultRecentLimit,
		Accounts:     nil,
		LookbackDays: defaultLookbackDaysConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for history under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationPathKeyConstant:         defaults.Path,
		rootKey + configurationKeySeparatorConstant + configurationLimitKeyConstant:        defaults.Limit,
		rootKey + configurationKeySeparatorConstant + configurationRecentLimitKeyConstant:  defaults.RecentLimit,
		rootKey + configurationKeySeparatorConstant + configurationAccountsKeyConstant:     []string{},
		rootKey + configurationKeySeparatorConstant + configurationLookbackDaysKeyConstant: defaults.LookbackDays,
	}
}

// OpenConfiguredStore opens the store described by the configuration.
func OpenConfiguredStore(configuration CommandConfiguration) (*Store, error) {
	sanitized := configuration.sanitize()
	storePath := sanitized.Path
	if len(storePath) == 0 {
		defaultPath, pathError := DefaultStorePath()
		if pathError != nil {
			return nil, pathError
		}
		storePath = defaultPath
	}
	return OpenStore(storePath, sanitized.Limit)
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Path = historyHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.Path))
	if sanitized.Limit <= 0 {
		sanitized.Limit = DefaultStoreLimit
	}
	if sanitized.RecentLimit <= 0 {
		sanitized.RecentLimit = DefaultRecentLimit
	}
	if sanitized.LookbackDays < 0 {
		sanitized.LookbackDays = 0
	}

	accounts := make([]string, 0, len(configuration.Accounts))
	for _, account := range configuration.Accounts {
		if trimmedAccount := strings.TrimSpace(account); len(trimmedAccount) > 0 {
			accounts = append(accounts, trimmedAccount)
		}
	}
	sanitized.Accounts = accounts
	return sanitized
}
