package secrets

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	clientMissingMessageConstant      = "secrets client not configured"
	repositoryRequiredMessageConstant = "target repository must be provided"
	publicKeyFailureTemplateConstant  = "failed to retrieve repository public key: %s"
	uploadFailureTemplateConstant     = "upload failed: %s"
	secretUpdatedMessageConstant      = "Updated Actions secret"
	secretFailedMessageConstant       = "Actions secret update failed"
	secretPlannedMessageConstant      = "Planned Actions secret update"
	repositoryFieldConstant           = "repository"
	secretNameFieldConstant           = "secret"
	reasonFieldConstant               = "reason"
	summaryTemplateConstant           = "updated=%d planned=%d failed=%d"
)

// FailurePreviewLength bounds failure text reported per secret.
const FailurePreviewLength = 300

var (
	// ErrClientNotConfigured indicates the service was constructed without a client.
	ErrClientNotConfigured = errors.New(clientMissingMessageConstant)
	// ErrRepositoryRequired indicates an empty target repository.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
)

// SecretsClient reads the repository public key and stores encrypted secrets.
type SecretsClient interface {
	GetActionsPublicKey(executionContext context.Context, repository string) (githubcli.ActionsPublicKey, error)
	PutActionsSecret(executionContext context.Context, repository string, secretName string, encryptedValue string, keyID string) error
}

// Options configure a secrets sync.
type Options struct {
	Repository string
	Variables  map[string]string
	DryRun     bool
}

// Failure records a secret that could not be stored.
type Failure struct {
	Name    string
	Message string
}

// Result lists updated, planned (dry run) and failed secrets in name order
// for the normalized owner/name repository.
type Result struct {
	Repository string
	Updated    []string
	Planned    []string
	Failed     []Failure
}

// Summary renders the outcome counts.
func (result Result) Summary() string {
	return fmt.Sprintf(summaryTemplateConstant, len(result.Updated), len(result.Planned), len(result.Failed))
}

// Service stores .env values as Actions secrets.
type Service struct {
	client       SecretsClient
	logger       *zap.Logger
	randomSource io.Reader
}

// NewService constructs a Service. A nil random source uses crypto/rand.
func NewService(logger *zap.Logger, client SecretsClient, randomSource io.Reader) (*Service, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if randomSource == nil {
		randomSource = rand.Reader
	}
	return &Service{client: client, logger: logger, randomSource: randomSource}, nil
}

// Sync encrypts and uploads every variable. A public key failure fails every secret;
// otherwise each secret succeeds or fails on its own.
func (service *Service) Sync(executionContext context.Context, options Options) (Result, error) {
	if len(strings.TrimSpace(options.Repository)) == 0 {
		return Result{}, ErrRepositoryRequired
	}
	repository, repositoryError := githubcli.ParseRepository(options.Repository)
	if repositoryError != nil {
		return Result{}, repositoryError
	}

	result := Result{Repository: repository}
	names := SortedNames(options.Variables)
	if len(names) == 0 {
		return result, nil
	}

	if options.DryRun {
		for _, name := range names {
			service.logger.Info(secretPlannedMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(secretNameFieldConstant, name))
		}
		result.Planned = names
		return result, nil
	}

	publicKey, keyError := service.client.GetActionsPublicKey(executionContext, repository)
	if keyError != nil {
		message := fmt.Sprintf(publicKeyFailureTemplateConstant, keyError)
		for _, name := range names {
			service.recordFailure(&result, repository, name, message)
		}
		return result, nil
	}

	for _, name := range names {
		encryptedValue, sealError := Seal(publicKey.Key, options.Variables[name], service.randomSource)
		if sealError != nil {
			service.recordFailure(&result, repository, name, sealError.Error())
			continue
		}

		if putError := service.client.PutActionsSecret(executionContext, repository, name, encryptedValue, publicKey.KeyID); putError != nil {
			service.recordFailure(&result, repository, name, fmt.Sprintf(uploadFailureTemplateConstant, putError))
			continue
		}

		service.logger.Info(secretUpdatedMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(secretNameFieldConstant, name))
		result.Updated = append(result.Updated, name)
	}

	return result, nil
}

func (service *Service) recordFailure(result *Result, repository string, name string, message string) {
	truncatedMessage := templatesync.TruncateMessage(message, FailurePreviewLength)
	service.logger.Warn(secretFailedMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(secretNameFieldConstant, name), zap.String(reasonFieldConstant, truncatedMessage))
	result.Failed = append(result.Failed, Failure{Name: name, Message: truncatedMessage})
}
