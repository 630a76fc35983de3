package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	repositoryRequiredMessageConstant   = "target repository must be provided"
	branchesRequiredMessageConstant     = "at least one branch name must be provided"
	clientNotConfiguredMessageConstant  = "git reference client not configured"
	defaultBranchMissingMessageConstant = "repository has no default branch"
	defaultBranchErrorTemplateConstant  = "unable to resolve default branch: %w"
	baseBranchErrorTemplateConstant     = "base branch %s could not be read: %s"
	baseBranchNotFoundTemplateConstant  = "base branch %s not found"
	summaryTemplateConstant             = "created=%d skipped=%d failed=%d"
	fullReferencePrefixConstant         = "refs/heads/"
	branchCreatedMessageConstant        = "Branch created"
	branchPlannedMessageConstant        = "Branch would be created"
	branchSkippedMessageConstant        = "Branch already exists"
	branchFailedMessageConstant         = "Branch sync failed"
	branchSyncCompletedMessageConstant  = "Branch sync completed"
	repositoryFieldConstant             = "repository"
	branchFieldConstant                 = "branch"
	baseBranchFieldConstant             = "base_branch"
	baseCommitFieldConstant             = "base_commit"
	createdCountFieldConstant           = "created"
	skippedCountFieldConstant           = "skipped"
	failedCountFieldConstant            = "failed"
)

var (
	// ErrRepositoryRequired indicates the target repository option was empty.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrBranchesRequired indicates no branch names remained after trimming.
	ErrBranchesRequired = errors.New(branchesRequiredMessageConstant)
	// ErrClientNotConfigured indicates the service was built without a GitHub client.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
	// ErrDefaultBranchMissing indicates GitHub reported no default branch for the repository.
	ErrDefaultBranchMissing = errors.New(defaultBranchMissingMessageConstant)
)

// BaseBranchError reports that the base branch tip could not be resolved.
type BaseBranchError struct {
	Branch string
	Cause  error
}

// Error describes the base branch failure.
func (baseError BaseBranchError) Error() string {
	if githubcli.IsNotFound(baseError.Cause) {
		return fmt.Sprintf(baseBranchNotFoundTemplateConstant, baseError.Branch)
	}
	return fmt.Sprintf(baseBranchErrorTemplateConstant, baseError.Branch, baseError.Cause)
}

// Unwrap exposes the API failure.
func (baseError BaseBranchError) Unwrap() error {
	return baseError.Cause
}

// GitReferenceClient is the subset of the GitHub client used for branch creation.
type GitReferenceClient interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	GetReference(executionContext context.Context, repository string, branch string) (githubcli.Reference, error)
	CreateReference(executionContext context.Context, repository string, branch string, commitSHA string) (githubcli.Reference, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger *zap.Logger
	Client GitReferenceClient
}

// Options configure a branch sync.
type Options struct {
	Repository string
	Branches   []string
	BaseBranch string
	DryRun     bool
}

// Failure records a branch that could not be checked or created.
type Failure struct {
	Branch  string
	Message string
}

// Result captures the outcome of a branch sync. During a dry run Created lists the branches that would be created.
type Result struct {
	Repository    string
	BaseBranch    string
	BaseCommitSHA string
	DryRun        bool
	Created       []string
	Skipped       []string
	Failed        []Failure
}

// Summary renders the outcome counts.
func (result Result) Summary() string {
	return fmt.Sprintf(summaryTemplateConstant, len(result.Created), len(result.Skipped), len(result.Failed))
}

// Service creates missing branches from a base branch tip.
type Service struct {
	logger *zap.Logger
	client GitReferenceClient
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, client: dependencies.Client}, nil
}

// Sync ensures every requested branch exists. Per-branch failures are collected in the result;
// only an unusable base branch aborts the run.
func (service *Service) Sync(executionContext context.Context, options Options) (Result, error) {
	if len(strings.TrimSpace(options.Repository)) == 0 {
		return Result{}, ErrRepositoryRequired
	}
	repository, repositoryError := githubcli.ParseRepository(options.Repository)
	if repositoryError != nil {
		return Result{}, repositoryError
	}

	branchNames := normalizeBranchNames(options.Branches)
	if len(branchNames) == 0 {
		return Result{}, ErrBranchesRequired
	}

	baseBranch := normalizeBranchName(options.BaseBranch)
	if len(baseBranch) == 0 {
		metadata, metadataError := service.client.ResolveRepoMetadata(executionContext, repository)
		if metadataError != nil {
			return Result{}, fmt.Errorf(defaultBranchErrorTemplateConstant, metadataError)
		}
		baseBranch = strings.TrimSpace(metadata.DefaultBranch)
		if len(baseBranch) == 0 {
			return Result{}, ErrDefaultBranchMissing
		}
	}

	baseReference, baseError := service.client.GetReference(executionContext, repository, baseBranch)
	if baseError != nil {
		return Result{}, BaseBranchError{Branch: baseBranch, Cause: baseError}
	}

	result := Result{
		Repository:    repository,
		BaseBranch:    baseBranch,
		BaseCommitSHA: baseReference.ObjectSHA,
		DryRun:        options.DryRun,
	}

	for _, branchName := range branchNames {
		service.syncBranch(executionContext, &result, branchName)
	}

	service.logger.Info(
		branchSyncCompletedMessageConstant,
		zap.String(repositoryFieldConstant, repository),
		zap.String(baseBranchFieldConstant, baseBranch),
		zap.String(baseCommitFieldConstant, baseReference.ObjectSHA),
		zap.Int(createdCountFieldConstant, len(result.Created)),
		zap.Int(skippedCountFieldConstant, len(result.Skipped)),
		zap.Int(failedCountFieldConstant, len(result.Failed)),
	)

	return result, nil
}

func (service *Service) syncBranch(executionContext context.Context, result *Result, branchName string) {
	branchFields := []zap.Field{zap.String(repositoryFieldConstant, result.Repository), zap.String(branchFieldConstant, branchName)}

	_, lookupError := service.client.GetReference(executionContext, result.Repository, branchName)
	switch {
	case lookupError == nil:
		service.logger.Debug(branchSkippedMessageConstant, branchFields...)
		result.Skipped = append(result.Skipped, branchName)
		return
	case !githubcli.IsNotFound(lookupError):
		service.recordFailure(result, branchName, lookupError, branchFields)
		return
	}

	if result.DryRun {
		service.logger.Info(branchPlannedMessageConstant, branchFields...)
		result.Created = append(result.Created, branchName)
		return
	}

	_, creationError := service.client.CreateReference(executionContext, result.Repository, branchName, result.BaseCommitSHA)
	switch {
	case creationError == nil:
		service.logger.Info(branchCreatedMessageConstant, branchFields...)
		result.Created = append(result.Created, branchName)
	case githubcli.IsAlreadyExists(creationError):
		service.logger.Debug(branchSkippedMessageConstant, branchFields...)
		result.Skipped = append(result.Skipped, branchName)
	default:
		service.recordFailure(result, branchName, creationError, branchFields)
	}
}

func (service *Service) recordFailure(result *Result, branchName string, failure error, fields []zap.Field) {
	service.logger.Warn(branchFailedMessageConstant, append(fields, zap.Error(failure))...)
	result.Failed = append(result.Failed, Failure{
		Branch:  branchName,
		Message: templatesync.TruncateMessage(failure.Error(), templatesync.DefaultFailurePreviewLength),
	})
}

func normalizeBranchNames(rawBranchNames []string) []string {
	normalized := make([]string, 0, len(rawBranchNames))
	seen := make(map[string]struct{}, len(rawBranchNames))
	for _, rawBranchName := range rawBranchNames {
		branchName := normalizeBranchName(rawBranchName)
		if len(branchName) == 0 {
			continue
		}
		if _, duplicate := seen[branchName]; duplicate {
			continue
		}
		seen[branchName] = struct{}{}
		normalized = append(normalized, branchName)
	}
	return normalized
}

func normalizeBranchName(rawBranchName string) string {
	return strings.TrimPrefix(strings.TrimSpace(rawBranchName), fullReferencePrefixConstant)
}
