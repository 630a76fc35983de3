package templatesync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
)

const (
	downloaderMissingMessageConstant          = "template archive downloader not configured"
	templateRepositoryRequiredMessageConstant = "template repository must be provided"
	destinationRequiredMessageConstant        = "destination directory must be provided"
	targetRepositoryRequiredMessageConstant   = "target repository must be provided"
	downloadArchiveStepConstant               = "downloading the template archive"
	remoteCommitMessageTemplateConstant       = "Sync template files from %s"
	templateRepositoryFieldConstant           = "template_repository"
	destinationFieldConstant                  = "destination"
	writtenFieldConstant                      = "written"
	skippedFieldConstant                      = "skipped"
	localSyncCompletedMessageConstant         = "Local template sync completed"
)

var (
	// ErrDownloaderNotConfigured indicates the service has no archive source.
	ErrDownloaderNotConfigured = errors.New(downloaderMissingMessageConstant)
	// ErrTemplateRepositoryRequired indicates an empty template repository option.
	ErrTemplateRepositoryRequired = errors.New(templateRepositoryRequiredMessageConstant)
	// ErrDestinationRequired indicates an empty local destination option.
	ErrDestinationRequired = errors.New(destinationRequiredMessageConstant)
	// ErrTargetRepositoryRequired indicates an empty remote target option.
	ErrTargetRepositoryRequired = errors.New(targetRepositoryRequiredMessageConstant)
)

// ArchiveDownloader fetches the zipball of a repository at a reference.
type ArchiveDownloader interface {
	DownloadRepositoryArchive(executionContext context.Context, repository string, reference string) ([]byte, error)
}

// FileSystemFactory opens the destination root of a local sync.
type FileSystemFactory func(rootDirectory string) billy.Filesystem

// ServiceDependencies enumerates collaborators required by the service.
// GitDataClient and PagesConfigurator are only needed for remote syncs.
type ServiceDependencies struct {
	Logger            *zap.Logger
	Downloader        ArchiveDownloader
	GitDataClient     GitDataClient
	PagesConfigurator PagesConfigurator
	FileSystemFactory FileSystemFactory
}

// LocalOptions configure extraction into a local directory.
type LocalOptions struct {
	TemplateRepository string
	Reference          string
	Destination        string
	Request            Request
	Clean              bool
}

// RemoteOptions configure a sync committed directly to a hosted repository.
type RemoteOptions struct {
	TemplateRepository string
	Reference          string
	Repository         string
	Branch             string
	Request            Request
	Clean              bool
	CommitMessage      string
	Force              bool
	ConfigurePages     bool
}

// Service downloads template archives and applies them locally or remotely.
type Service struct {
	logger            *zap.Logger
	downloader        ArchiveDownloader
	gitDataClient     GitDataClient
	pagesConfigurator PagesConfigurator
	fileSystemFactory FileSystemFactory
	planner           Planner
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Downloader == nil {
		return nil, ErrDownloaderNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fileSystemFactory := dependencies.FileSystemFactory
	if fileSystemFactory == nil {
		fileSystemFactory = func(rootDirectory string) billy.Filesystem {
			return osfs.New(rootDirectory)
		}
	}
	return &Service{
		logger:            logger,
		downloader:        dependencies.Downloader,
		gitDataClient:     dependencies.GitDataClient,
		pagesConfigurator: dependencies.PagesConfigurator,
		fileSystemFactory: fileSystemFactory,
		planner:           NewPlanner(logger),
	}, nil
}

// FetchArchive downloads and opens the template archive.
func (service *Service) FetchArchive(executionContext context.Context, templateRepository string, reference string) (*Archive, error) {
	trimmedRepository := strings.TrimSpace(templateRepository)
	if len(trimmedRepository) == 0 {
		return nil, ErrTemplateRepositoryRequired
	}
	archiveBytes, downloadError := service.downloader.DownloadRepositoryArchive(executionContext, trimmedRepository, strings.TrimSpace(reference))
	if downloadError != nil {
		return nil, RemoteAPIError{Step: downloadArchiveStepConstant, Cause: downloadError}
	}
	return OpenArchive(archiveBytes)
}

// SyncLocal extracts the requested template files into the destination directory.
// The plan is computed before anything is removed, so a missing file leaves the destination untouched.
func (service *Service) SyncLocal(executionContext context.Context, options LocalOptions) (SyncResult, error) {
	destination := strings.TrimSpace(options.Destination)
	if len(destination) == 0 {
		return SyncResult{}, ErrDestinationRequired
	}
	if options.Clean && !cleanable(options.Request) {
		return SyncResult{}, ErrCleanRequiresManagedDirectory
	}

	archive, archiveError := service.FetchArchive(executionContext, options.TemplateRepository, options.Reference)
	if archiveError != nil {
		return SyncResult{}, archiveError
	}

	extractor, extractorError := NewLocalExtractor(service.fileSystemFactory(destination), service.logger)
	if extractorError != nil {
		return SyncResult{}, extractorError
	}

	inventory := extractor.Inventory()
	if options.Clean {
		inventory = WithoutDirectory(inventory, options.Request.managedDirectory())
	}

	plan, planError := service.planner.Plan(archive, options.Request, inventory)
	if planError != nil {
		return SyncResult{}, planError
	}

	result, applyError := extractor.Apply(plan, options.Clean)
	if applyError != nil {
		return result, applyError
	}

	service.logger.Info(
		localSyncCompletedMessageConstant,
		zap.String(templateRepositoryFieldConstant, options.TemplateRepository),
		zap.String(destinationFieldConstant, destination),
		zap.Int(writtenFieldConstant, len(result.Written)),
		zap.Int(skippedFieldConstant, len(result.Skipped)),
	)
	return result, nil
}

// SyncRemote commits the requested template files to the target branch without a local checkout.
func (service *Service) SyncRemote(executionContext context.Context, options RemoteOptions) (RemoteResult, error) {
	if len(strings.TrimSpace(options.Repository)) == 0 {
		return RemoteResult{}, ErrTargetRepositoryRequired
	}
	targetRepository, repositoryError := githubcli.ParseRepository(options.Repository)
	if repositoryError != nil {
		return RemoteResult{}, repositoryError
	}
	if options.Clean && !cleanable(options.Request) {
		return RemoteResult{}, ErrCleanRequiresManagedDirectory
	}

	builder, builderError := NewRemoteTreeBuilder(service.gitDataClient, service.pagesConfigurator, service.logger)
	if builderError != nil {
		return RemoteResult{}, builderError
	}

	archive, archiveError := service.FetchArchive(executionContext, options.TemplateRepository, options.Reference)
	if archiveError != nil {
		return RemoteResult{}, archiveError
	}

	base, baseError := builder.FetchBase(executionContext, targetRepository, options.Branch)
	if baseError != nil {
		return RemoteResult{}, baseError
	}

	var inventory Inventory = base.Inventory
	if options.Clean {
		inventory = WithoutDirectory(inventory, options.Request.managedDirectory())
	}

	plan, planError := service.planner.Plan(archive, options.Request, inventory)
	if planError != nil {
		return RemoteResult{}, planError
	}

	commitMessage := strings.TrimSpace(options.CommitMessage)
	if len(commitMessage) == 0 {
		commitMessage = fmt.Sprintf(remoteCommitMessageTemplateConstant, strings.TrimSpace(options.TemplateRepository))
	}

	return builder.Apply(executionContext, base, plan, RemoteApplyOptions{
		Clean:          options.Clean,
		CommitMessage:  commitMessage,
		Force:          options.Force,
		ConfigurePages: options.ConfigurePages,
	})
}

func cleanable(request Request) bool {
	return len(request.managedDirectory()) > 0 && len(request.Groups) == 0
}
