package history

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/dependencies"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils"
)

const (
	groupUseConstant                      = "repos"
	groupShortDescriptionConstant         = "Look up GitHub repositories"
	groupLongDescriptionConstant          = "repos groups commands that suggest repositories to operate on."
	recentCommandUseConstant              = "recent [query]"
	recentCommandShortDescriptionConstant = "List recently used repositories"
	recentCommandLongDescriptionConstant  = "recent lists repositories previously targeted by sync commands, followed by recently active repositories of the configured accounts, filtered by an optional case-insensitive query."
	flagLimitNameConstant                 = "limit"
	flagLimitDescriptionConstant          = "Maximum number of repositories to list"
	flagAccountNameConstant               = "account"
	flagAccountDescriptionConstant        = "GitHub account whose repositories are suggested (repeatable)"
	flagLookbackDaysNameConstant          = "lookback-days"
	flagLookbackDaysDescriptionConstant   = "Only suggest account repositories created or updated within this many days (0 disables)"
	repositoryLineTemplateConstant        = "%s\n"
	noRepositoriesMessageConstant         = "No repositories found\n"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current history configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the repos command group.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	GitHubHostProvider           func() string
	Executor                     githubcli.GitHubCommandExecutor
	Store                        *Store
	Clock                        Clock

	remoteCache RemoteRepositoryCache
}

// Build constructs the repos command with its recent subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	recentCommand := &cobra.Command{
		Use:   recentCommandUseConstant,
		Short: recentCommandShortDescriptionConstant,
		Long:  recentCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.runRecent,
	}

	recentCommand.Flags().Int(flagLimitNameConstant, 0, flagLimitDescriptionConstant)
	recentCommand.Flags().StringSlice(flagAccountNameConstant, nil, flagAccountDescriptionConstant)
	recentCommand.Flags().Int(flagLookbackDaysNameConstant, 0, flagLookbackDaysDescriptionConstant)

	groupCommand.AddCommand(recentCommand)

	return groupCommand, nil
}

func (builder *CommandBuilder) runRecent(command *cobra.Command, arguments []string) error {
	query := ""
	if len(arguments) > 0 {
		query = strings.TrimSpace(arguments[0])
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	store, storeError := builder.resolveStore(configuration)
	if storeError != nil {
		return storeError
	}

	localRepositories, recentError := store.Recent(query, configuration.RecentLimit)
	if recentError != nil {
		return recentError
	}

	var remoteRepositories []string
	if len(configuration.Accounts) > 0 {
		logger := builder.resolveLogger()
		executor, executorError := dependencies.ResolveGitHubExecutor(builder.Executor, logger, builder.humanReadableLogging())
		if executorError != nil {
			return executorError
		}
		client, clientError := dependencies.ResolveGitHubClient(executor, builder.githubHost())
		if clientError != nil {
			return clientError
		}
		lookup, lookupError := NewRemoteLookup(logger, client, RemoteLookupOptions{
			Accounts:     configuration.Accounts,
			LookbackDays: configuration.LookbackDays,
		}, builder.Clock)
		if lookupError != nil {
			return lookupError
		}
		remoteRepositories = lookup.Candidates(command.Context(), &builder.remoteCache)
	}

	reporter := utils.NewWriterReporter(command.OutOrStdout())
	repositories := MergeCandidates(query, configuration.RecentLimit, localRepositories, remoteRepositories)
	if len(repositories) == 0 {
		reporter.Printf(noRepositoriesMessageConstant)
		return nil
	}
	for _, repository := range repositories {
		reporter.Printf(repositoryLineTemplateConstant, repository)
	}
	return nil
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(flagLimitNameConstant) {
		limitValue, flagError := command.Flags().GetInt(flagLimitNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.RecentLimit = limitValue
	}

	if command.Flags().Changed(flagAccountNameConstant) {
		accountValues, flagError := command.Flags().GetStringSlice(flagAccountNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.Accounts = accountValues
	}

	if command.Flags().Changed(flagLookbackDaysNameConstant) {
		lookbackValue, flagError := command.Flags().GetInt(flagLookbackDaysNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.LookbackDays = lookbackValue
	}

	return configuration.sanitize(), nil
}

func (builder *CommandBuilder) resolveStore(configuration CommandConfiguration) (*Store, error) {
	if builder.Store != nil {
		return builder.Store, nil
	}
	return OpenConfiguredStore(configuration)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) githubHost() string {
	if builder.GitHubHostProvider == nil {
		return ""
	}
	return builder.GitHubHostProvider()
}
