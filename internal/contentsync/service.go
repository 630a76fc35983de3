package contentsync

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
	clientMissingMessageConstant      = "contents client not configured"
	repositoryRequiredMessageConstant = "target repository must be provided"
	filesRequiredMessageConstant      = "no files to synchronize"
	checkFailureTemplateConstant      = "unable to check %s: %w"
	writeFailureTemplateConstant      = "unable to write %s: %w"
	fileWrittenMessageConstant        = "Synchronized file"
	fileSkippedMessageConstant        = "Kept existing file"
	fileFailedMessageConstant         = "File synchronization failed"
	dryRunMessageConstant             = "Planned file synchronization"
	repositoryFieldConstant           = "repository"
	pathFieldConstant                 = "path"
	existsFieldConstant               = "exists"
	errorMessagePreviewLengthConstant = templatesync.DefaultFailurePreviewLength
)

var (
	// ErrClientNotConfigured indicates the service was constructed without a contents client.
	ErrClientNotConfigured = errors.New(clientMissingMessageConstant)
	// ErrRepositoryRequired indicates an empty target repository.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrFilesRequired indicates an empty file list.
	ErrFilesRequired = errors.New(filesRequiredMessageConstant)
)

// ContentClient reads and writes single files through the contents API.
type ContentClient interface {
	GetContent(executionContext context.Context, repository string, filePath string, reference string) (githubcli.ContentFile, bool, error)
	PutContent(executionContext context.Context, repository string, filePath string, request githubcli.PutContentRequest) (string, error)
}

// Options configure a per-file sync.
type Options struct {
	Repository            string
	Branch                string
	Files                 []File
	Overwrite             bool
	DryRun                bool
	CommitMessageTemplate string
}

// Service synchronizes files one at a time.
type Service struct {
	client ContentClient
	logger *zap.Logger
}

// NewService constructs a Service.
func NewService(logger *zap.Logger, client ContentClient) (*Service, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}, nil
}

// SyncFiles creates missing files and, with Overwrite, updates existing ones.
// The repository may be given as owner/name or as a clone URL.
// A dry run only checks existence and reports what would be written or kept.
// Only invalid options return an error; per-file failures are collected in the result.
func (service *Service) SyncFiles(executionContext context.Context, options Options) (templatesync.SyncResult, error) {
	if len(strings.TrimSpace(options.Repository)) == 0 {
		return templatesync.SyncResult{}, ErrRepositoryRequired
	}
	repository, repositoryError := githubcli.ParseRepository(options.Repository)
	if repositoryError != nil {
		return templatesync.SyncResult{}, repositoryError
	}
	if len(options.Files) == 0 {
		return templatesync.SyncResult{}, ErrFilesRequired
	}

	messageTemplate := options.CommitMessageTemplate
	if len(strings.TrimSpace(messageTemplate)) == 0 {
		messageTemplate = WorkflowCommitMessageTemplate
	}
	branch := strings.TrimSpace(options.Branch)

	var result templatesync.SyncResult
	for _, file := range options.Files {
		existingFile, exists, checkError := service.client.GetContent(executionContext, repository, file.Path, branch)
		if checkError != nil {
			service.recordFailure(&result, repository, file.Path, fmt.Errorf(checkFailureTemplateConstant, file.Path, checkError))
			continue
		}

		if exists && !options.Overwrite {
			service.logger.Info(fileSkippedMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(pathFieldConstant, file.Path))
			result.RecordSkipped(file.Path)
			continue
		}

		if options.DryRun {
			service.logger.Info(dryRunMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(pathFieldConstant, file.Path), zap.Bool(existsFieldConstant, exists))
			result.RecordWritten(file.Path)
			continue
		}

		putRequest := githubcli.PutContentRequest{
			Message: fmt.Sprintf(messageTemplate, file.Path),
			Content: file.Content,
			Branch:  branch,
		}
		if exists {
			putRequest.SHA = existingFile.SHA
		}

		if _, putError := service.client.PutContent(executionContext, repository, file.Path, putRequest); putError != nil {
			service.recordFailure(&result, repository, file.Path, fmt.Errorf(writeFailureTemplateConstant, file.Path, putError))
			continue
		}

		service.logger.Info(fileWrittenMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(pathFieldConstant, file.Path))
		result.RecordWritten(file.Path)
	}

	return result, nil
}

func (service *Service) recordFailure(result *templatesync.SyncResult, repository string, filePath string, failure error) {
	service.logger.Warn(fileFailedMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(pathFieldConstant, filePath), zap.Error(failure))
	result.RecordFailure(filePath, failure, errorMessagePreviewLengthConstant)
}
