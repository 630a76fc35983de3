package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
)

const (
	listerNotConfiguredMessageConstant  = "repository lister not configured"
	accountListingFailedMessageConstant = "Unable to list account repositories"
	remoteCandidatesMessageConstant     = "Fetched remote repository candidates"
	remoteCacheHitMessageConstant       = "Using cached remote repository candidates"
	accountFieldConstant                = "account"
	candidateCountFieldConstant         = "candidates"
	hoursPerDayConstant                 = 24
)

// RemoteCacheTTL is how long fetched remote candidates are reused.
const RemoteCacheTTL = 300 * time.Second

// ErrListerNotConfigured indicates the remote lookup was built without a repository lister.
var ErrListerNotConfigured = errors.New(listerNotConfiguredMessageConstant)

// RepositoryLister lists the repositories of a GitHub account, most recently updated first.
type RepositoryLister interface {
	ListAccountRepositories(executionContext context.Context, account string) ([]githubcli.RepositorySummary, error)
}

// Clock reports the current time.
type Clock func() time.Time

// RemoteRepositoryCache holds the last fetched candidates and when they were fetched.
type RemoteRepositoryCache struct {
	Timestamp time.Time
	Entries   []string
}

// RemoteLookupOptions configure which remote repositories are suggested.
type RemoteLookupOptions struct {
	Accounts     []string
	LookbackDays int
}

// RemoteLookup suggests active repositories of configured accounts.
type RemoteLookup struct {
	logger   *zap.Logger
	lister   RepositoryLister
	accounts []string
	lookback time.Duration
	clock    Clock
}

// NewRemoteLookup constructs a RemoteLookup. A nil clock uses time.Now; a non-positive lookback disables the activity filter.
func NewRemoteLookup(logger *zap.Logger, lister RepositoryLister, options RemoteLookupOptions, clock Clock) (*RemoteLookup, error) {
	if lister == nil {
		return nil, ErrListerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}

	accounts := make([]string, 0, len(options.Accounts))
	for _, account := range options.Accounts {
		if trimmedAccount := strings.TrimSpace(account); len(trimmedAccount) > 0 {
			accounts = append(accounts, trimmedAccount)
		}
	}

	var lookback time.Duration
	if options.LookbackDays > 0 {
		lookback = time.Duration(options.LookbackDays) * hoursPerDayConstant * time.Hour
	}

	return &RemoteLookup{logger: logger, lister: lister, accounts: accounts, lookback: lookback, clock: clock}, nil
}

// Candidates returns unarchived repositories of the configured accounts that were created or
// updated within the lookback window. Results younger than RemoteCacheTTL are served from cache,
// and fresh results are stored back into it. Accounts whose listing fails are skipped.
func (lookup *RemoteLookup) Candidates(executionContext context.Context, cache *RemoteRepositoryCache) []string {
	now := lookup.clock()
	if cache != nil && !cache.Timestamp.IsZero() && now.Sub(cache.Timestamp) < RemoteCacheTTL {
		lookup.logger.Debug(remoteCacheHitMessageConstant, zap.Int(candidateCountFieldConstant, len(cache.Entries)))
		return append([]string{}, cache.Entries...)
	}

	candidates := lookup.fetch(executionContext, now)
	if cache != nil {
		cache.Timestamp = now
		cache.Entries = append([]string{}, candidates...)
	}
	return candidates
}

func (lookup *RemoteLookup) fetch(executionContext context.Context, now time.Time) []string {
	var threshold time.Time
	if lookup.lookback > 0 {
		threshold = now.Add(-lookup.lookback)
	}

	candidates := make([]string, 0)
	seen := make(map[string]struct{})
	for _, account := range lookup.accounts {
		repositories, listError := lookup.lister.ListAccountRepositories(executionContext, account)
		if listError != nil {
			lookup.logger.Warn(accountListingFailedMessageConstant, zap.String(accountFieldConstant, account), zap.Error(listError))
			continue
		}
		for _, repository := range repositories {
			fullName := strings.TrimSpace(repository.FullName)
			if len(fullName) == 0 || repository.Archived {
				continue
			}
			key := strings.ToLower(fullName)
			if _, duplicate := seen[key]; duplicate {
				continue
			}
			if !threshold.IsZero() && !activeSince(repository, threshold) {
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, fullName)
		}
	}

	lookup.logger.Debug(remoteCandidatesMessageConstant, zap.Int(candidateCountFieldConstant, len(candidates)))
	return candidates
}

func activeSince(repository githubcli.RepositorySummary, threshold time.Time) bool {
	if !repository.UpdatedAt.IsZero() && !repository.UpdatedAt.Before(threshold) {
		return true
	}
	return !repository.CreatedAt.IsZero() && !repository.CreatedAt.Before(threshold)
}
