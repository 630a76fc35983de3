package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
)

const (
	repositoryRequiredMessageConstant   = "target repository must be provided"
	tagRequiredMessageConstant          = "tag name must be provided"
	clientNotConfiguredMessageConstant  = "git reference client not configured"
	defaultBranchMissingMessageConstant = "repository has no default branch"
	defaultBranchErrorTemplateConstant  = "unable to resolve default branch: %w"
	branchTipErrorTemplateConstant      = "branch %s could not be read: %s"
	branchTipNotFoundTemplateConstant   = "branch %s not found"
	tagCreationErrorTemplateConstant    = "unable to create tag %s: %w"
	branchReferencePrefixConstant       = "refs/heads/"
	tagReferencePrefixConstant          = "refs/tags/"
	shortCommitLengthConstant           = 7
	tagCreatedMessageConstant           = "Tag created"
	tagPlannedMessageConstant           = "Tag would be created"
	tagExistsMessageConstant            = "Tag already exists"
	repositoryFieldConstant             = "repository"
	branchFieldConstant                 = "branch"
	tagFieldConstant                    = "tag"
	commitFieldConstant                 = "commit"
)

var (
	// ErrRepositoryRequired indicates the target repository option was empty.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrTagRequired indicates the tag name was empty after trimming.
	ErrTagRequired = errors.New(tagRequiredMessageConstant)
	// ErrClientNotConfigured indicates the service was built without a GitHub client.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
	// ErrDefaultBranchMissing indicates GitHub reported no default branch for the repository.
	ErrDefaultBranchMissing = errors.New(defaultBranchMissingMessageConstant)
)

// BranchTipError reports that the branch to tag could not be resolved.
type BranchTipError struct {
	Branch string
	Cause  error
}

// Error describes the branch failure.
func (tipError BranchTipError) Error() string {
	if githubcli.IsNotFound(tipError.Cause) {
		return fmt.Sprintf(branchTipNotFoundTemplateConstant, tipError.Branch)
	}
	return fmt.Sprintf(branchTipErrorTemplateConstant, tipError.Branch, tipError.Cause)
}

// Unwrap exposes the API failure.
func (tipError BranchTipError) Unwrap() error {
	return tipError.Cause
}

// TagReferenceClient is the subset of the GitHub client used for tagging.
type TagReferenceClient interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	GetReference(executionContext context.Context, repository string, branch string) (githubcli.Reference, error)
	CreateTagReference(executionContext context.Context, repository string, tag string, commitSHA string) (githubcli.Reference, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger *zap.Logger
	Client TagReferenceClient
}

// Options configure a tag creation. An empty Branch tags the default branch.
type Options struct {
	Repository string
	Tag        string
	Branch     string
	DryRun     bool
}

// Result captures the tagged commit. AlreadyExists is set when GitHub rejected the tag
// as a duplicate; Created stays false in that case and during a dry run.
type Result struct {
	Repository    string
	Tag           string
	Branch        string
	CommitSHA     string
	DryRun        bool
	Created       bool
	AlreadyExists bool
}

// ShortCommitSHA returns the abbreviated commit id used in reports.
func (result Result) ShortCommitSHA() string {
	if len(result.CommitSHA) <= shortCommitLengthConstant {
		return result.CommitSHA
	}
	return result.CommitSHA[:shortCommitLengthConstant]
}

// Service tags branch tips.
type Service struct {
	logger *zap.Logger
	client TagReferenceClient
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

// Latest points the tag at the current tip of the branch. An existing tag is reported
// through Result.AlreadyExists rather than as an error.
func (service *Service) Latest(executionContext context.Context, options Options) (Result, error) {
	if len(strings.TrimSpace(options.Repository)) == 0 {
		return Result{}, ErrRepositoryRequired
	}
	repository, repositoryError := githubcli.ParseRepository(options.Repository)
	if repositoryError != nil {
		return Result{}, repositoryError
	}

	tagName := normalizeTagName(options.Tag)
	if len(tagName) == 0 {
		return Result{}, ErrTagRequired
	}

	branchName := normalizeBranchName(options.Branch)
	if len(branchName) == 0 {
		metadata, metadataError := service.client.ResolveRepoMetadata(executionContext, repository)
		if metadataError != nil {
			return Result{}, fmt.Errorf(defaultBranchErrorTemplateConstant, metadataError)
		}
		branchName = strings.TrimSpace(metadata.DefaultBranch)
		if len(branchName) == 0 {
			return Result{}, ErrDefaultBranchMissing
		}
	}

	branchReference, branchError := service.client.GetReference(executionContext, repository, branchName)
	if branchError != nil {
		return Result{}, BranchTipError{Branch: branchName, Cause: branchError}
	}

	result := Result{
		Repository: repository,
		Tag:        tagName,
		Branch:     branchName,
		CommitSHA:  branchReference.ObjectSHA,
		DryRun:     options.DryRun,
	}
	tagFields := []zap.Field{
		zap.String(repositoryFieldConstant, repository),
		zap.String(branchFieldConstant, branchName),
		zap.String(tagFieldConstant, tagName),
		zap.String(commitFieldConstant, result.CommitSHA),
	}

	if options.DryRun {
		service.logger.Info(tagPlannedMessageConstant, tagFields...)
		return result, nil
	}

	_, creationError := service.client.CreateTagReference(executionContext, repository, tagName, result.CommitSHA)
	switch {
	case creationError == nil:
		service.logger.Info(tagCreatedMessageConstant, tagFields...)
		result.Created = true
	case githubcli.IsAlreadyExists(creationError):
		service.logger.Info(tagExistsMessageConstant, tagFields...)
		result.AlreadyExists = true
	default:
		return Result{}, fmt.Errorf(tagCreationErrorTemplateConstant, tagName, creationError)
	}

	return result, nil
}

func normalizeTagName(rawTagName string) string {
	return strings.TrimPrefix(strings.TrimSpace(rawTagName), tagReferencePrefixConstant)
}

func normalizeBranchName(rawBranchName string) string {
	return strings.TrimPrefix(strings.TrimSpace(rawBranchName), branchReferencePrefixConstant)
}
