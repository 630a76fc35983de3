package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/branches"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/contentsync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/presets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/secrets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	repositoryRequiredMessageConstant  = "target repository must be provided"
	variablesRequiredMessageConstant   = "no environment variables selected for upload"
	dependenciesMissingMessageConstant = "setup dependencies not configured"
	workflowStepErrorTemplateConstant  = "workflow preset %s: %w"
	secretsStepErrorTemplateConstant   = "secrets: %w"
	branchesStepNameConstant           = "branches"
	documentsStepNameConstant          = "docs"
	stepFailedMessageConstant          = "Setup step failed"
	setupCompletedMessageConstant      = "Repository setup completed"
	repositoryFieldConstant            = "repository"
	presetFieldConstant                = "preset"
	stepFieldConstant                  = "step"
	dryRunFieldConstant                = "dry_run"
	succeededFieldConstant             = "succeeded"
	defaultMainBranchConstant          = "main"
	defaultDevelopBranchConstant       = "develop"
)

// DefaultBranches are created when no branch list is configured.
var DefaultBranches = []string{defaultMainBranchConstant, defaultDevelopBranchConstant}

var (
	// ErrRepositoryRequired indicates the target repository option was empty.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrVariablesRequired indicates the filtered .env file left nothing to upload.
	ErrVariablesRequired = errors.New(variablesRequiredMessageConstant)
	// ErrDependenciesMissing indicates the service was built without one of its collaborators.
	ErrDependenciesMissing = errors.New(dependenciesMissingMessageConstant)
)

// ArchiveFetcher downloads the template archive once for every step.
type ArchiveFetcher interface {
	FetchArchive(executionContext context.Context, templateRepository string, reference string) (*templatesync.Archive, error)
}

// FileSynchronizer writes template files through the contents API.
type FileSynchronizer interface {
	SyncFiles(executionContext context.Context, options contentsync.Options) (templatesync.SyncResult, error)
}

// SecretSynchronizer uploads Actions secrets.
type SecretSynchronizer interface {
	Sync(executionContext context.Context, options secrets.Options) (secrets.Result, error)
}

// BranchSynchronizer creates missing branches.
type BranchSynchronizer interface {
	Sync(executionContext context.Context, options branches.Options) (branches.Result, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger   *zap.Logger
	Archives ArchiveFetcher
	Files    FileSynchronizer
	Secrets  SecretSynchronizer
	Branches BranchSynchronizer
}

// Options configure a repository setup.
type Options struct {
	Repository         string
	TemplateRepository string
	Reference          string
	Preset             presets.Preset
	Variables          map[string]string
	Branches           []string
	DocumentFiles      []string
	Overwrite          bool
	DryRun             bool
	CreateBranches     bool
	SyncDocuments      bool
}

// StepFailure records a branch or documentation step that could not run at all.
type StepFailure struct {
	Step    string
	Message string
}

// Result collects the outcome of every step. Branches and Documents are nil when the step was disabled
// or failed before producing a result.
type Result struct {
	Repository   string
	Preset       string
	DryRun       bool
	Workflows    templatesync.SyncResult
	Secrets      secrets.Result
	Branches     *branches.Result
	Documents    *templatesync.SyncResult
	StepFailures []StepFailure
}

// Succeeded reports whether every step ran without a failure entry.
func (result Result) Succeeded() bool {
	if len(result.StepFailures) > 0 || len(result.Workflows.Failed) > 0 || len(result.Secrets.Failed) > 0 {
		return false
	}
	if result.Branches != nil && len(result.Branches.Failed) > 0 {
		return false
	}
	if result.Documents != nil && len(result.Documents.Failed) > 0 {
		return false
	}
	return true
}

// Service runs the setup steps in order.
type Service struct {
	logger   *zap.Logger
	archives ArchiveFetcher
	files    FileSynchronizer
	secrets  SecretSynchronizer
	branches BranchSynchronizer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Archives == nil || dependencies.Files == nil || dependencies.Secrets == nil || dependencies.Branches == nil {
		return nil, ErrDependenciesMissing
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:   logger,
		archives: dependencies.Archives,
		files:    dependencies.Files,
		secrets:  dependencies.Secrets,
		branches: dependencies.Branches,
	}, nil
}

// Run syncs the preset, uploads the secrets, creates the branches and syncs the documents.
// A workflow or secrets error aborts the run; branch and documentation errors are recorded as
// step failures so the remaining steps still report. DryRun is passed to every step.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	if len(strings.TrimSpace(options.Repository)) == 0 {
		return Result{}, ErrRepositoryRequired
	}
	repository, repositoryError := githubcli.ParseRepository(options.Repository)
	if repositoryError != nil {
		return Result{}, repositoryError
	}
	if len(options.Variables) == 0 {
		return Result{}, ErrVariablesRequired
	}

	result := Result{Repository: repository, Preset: options.Preset.Name, DryRun: options.DryRun}

	archive, archiveError := service.archives.FetchArchive(executionContext, options.TemplateRepository, options.Reference)
	if archiveError != nil {
		return Result{}, fmt.Errorf(workflowStepErrorTemplateConstant, options.Preset.Name, archiveError)
	}

	workflowFiles, workflowFilesError := contentsync.GroupFiles(archive, options.Preset.Groups())
	if workflowFilesError != nil {
		return Result{}, fmt.Errorf(workflowStepErrorTemplateConstant, options.Preset.Name, workflowFilesError)
	}
	workflowResult, workflowError := service.files.SyncFiles(executionContext, contentsync.Options{
		Repository:            repository,
		Files:                 workflowFiles,
		Overwrite:             options.Overwrite,
		DryRun:                options.DryRun,
		CommitMessageTemplate: contentsync.WorkflowCommitMessageTemplate,
	})
	if workflowError != nil {
		return Result{}, fmt.Errorf(workflowStepErrorTemplateConstant, options.Preset.Name, workflowError)
	}
	result.Workflows = workflowResult

	secretsResult, secretsError := service.secrets.Sync(executionContext, secrets.Options{
		Repository: repository,
		Variables:  options.Variables,
		DryRun:     options.DryRun,
	})
	if secretsError != nil {
		return Result{}, fmt.Errorf(secretsStepErrorTemplateConstant, secretsError)
	}
	result.Secrets = secretsResult

	if options.CreateBranches {
		branchNames := options.Branches
		if len(branchNames) == 0 {
			branchNames = DefaultBranches
		}
		branchResult, branchError := service.branches.Sync(executionContext, branches.Options{
			Repository: repository,
			Branches:   branchNames,
			DryRun:     options.DryRun,
		})
		if branchError != nil {
			service.recordStepFailure(&result, branchesStepNameConstant, branchError)
		} else {
			result.Branches = &branchResult
		}
	}

	if options.SyncDocuments {
		service.syncDocuments(executionContext, &result, archive, options)
	}

	service.logger.Info(
		setupCompletedMessageConstant,
		zap.String(repositoryFieldConstant, repository),
		zap.String(presetFieldConstant, result.Preset),
		zap.Bool(dryRunFieldConstant, result.DryRun),
		zap.Bool(succeededFieldConstant, result.Succeeded()),
	)

	return result, nil
}

func (service *Service) syncDocuments(executionContext context.Context, result *Result, archive *templatesync.Archive, options Options) {
	documentFiles, documentFilesError := contentsync.DocumentationFiles(archive, options.DocumentFiles)
	if documentFilesError != nil {
		service.recordStepFailure(result, documentsStepNameConstant, documentFilesError)
		return
	}
	documentResult, documentError := service.files.SyncFiles(executionContext, contentsync.Options{
		Repository:            result.Repository,
		Files:                 documentFiles,
		Overwrite:             options.Overwrite,
		DryRun:                options.DryRun,
		CommitMessageTemplate: contentsync.DocumentationCommitMessageTemplate,
	})
	if documentError != nil {
		service.recordStepFailure(result, documentsStepNameConstant, documentError)
		return
	}
	result.Documents = &documentResult
}

func (service *Service) recordStepFailure(result *Result, step string, failure error) {
	service.logger.Warn(stepFailedMessageConstant, zap.String(repositoryFieldConstant, result.Repository), zap.String(stepFieldConstant, step), zap.Error(failure))
	result.StepFailures = append(result.StepFailures, StepFailure{
		Step:    step,
		Message: templatesync.TruncateMessage(failure.Error(), templatesync.DefaultFailurePreviewLength),
	})
}
