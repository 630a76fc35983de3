package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/execshell"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubauth"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/gitrepo"
)

const (
	repoSubcommandConstant                  = "repo"
	viewSubcommandConstant                  = "view"
	apiSubcommandConstant                   = "api"
	jsonFlagConstant                        = "--json"
	methodFlagConstant                      = "-X"
	inputFlagConstant                       = "--input"
	stdinReferenceConstant                  = "-"
	acceptHeaderFlagConstant                = "-H"
	acceptHeaderValueConstant               = "Accept: application/vnd.github+json"
	httpMethodGetConstant                   = "GET"
	httpMethodPostConstant                  = "POST"
	httpMethodPutConstant                   = "PUT"
	httpMethodPatchConstant                 = "PATCH"
	repositoryFieldNameConstant             = "repository"
	requiredValueMessageConstant            = "value required"
	repositoryFormatMessageConstant         = "expected owner/name"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	repoViewJSONFieldsConstant              = "defaultBranchRef,nameWithOwner,description"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	repositorySeparatorConstant             = "/"
	githubHostEnvironmentVariableConstant   = "GH_HOST"
	repositoryMetadataOperationNameConstant = OperationName("ResolveRepoMetadata")
	referenceAlreadyExistsMessageConstant   = "Reference already exists"
	httpStatusNotFoundConstant              = 404
	httpStatusUnprocessableConstant         = 422
)

var httpStatusPattern = regexp.MustCompile(`\(HTTP (\d{3})\)`)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	DefaultBranch string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor    GitHubCommandExecutor
	environment map[string]string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// WithAuthentication returns a copy of the client that forwards the token and host to gh.
// Empty values are ignored so gh falls back to its own stored credentials.
func (client *Client) WithAuthentication(token string, host string) *Client {
	duplicated := &Client{executor: client.executor, environment: map[string]string{}}
	for environmentKey, environmentValue := range client.environment {
		duplicated.environment[environmentKey] = environmentValue
	}
	if trimmedToken := strings.TrimSpace(token); len(trimmedToken) > 0 {
		duplicated.environment[githubauth.EnvGitHubCLIToken] = trimmedToken
	}
	if trimmedHost := strings.TrimSpace(host); len(trimmedHost) > 0 {
		duplicated.environment[githubHostEnvironmentVariableConstant] = trimmedHost
	}
	return duplicated
}

// ParseRepository validates a repository reference and returns its owner/name form.
// Clone URLs are accepted and reduced to owner/name.
func ParseRepository(repository string) (string, error) {
	if len(strings.TrimSpace(repository)) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	reference, parseError := gitrepo.ParseRepositoryReference(repository)
	if parseError != nil {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: repositoryFormatMessageConstant}
	}
	return reference.FullName(), nil
}

// HTTPStatus extracts the HTTP status gh reported for a failed API call.
func HTTPStatus(failure error) (int, bool) {
	var commandFailure execshell.CommandFailedError
	if !errors.As(failure, &commandFailure) {
		return 0, false
	}
	matches := httpStatusPattern.FindStringSubmatch(commandFailure.Result.StandardError)
	if len(matches) != 2 {
		return 0, false
	}
	statusCode, parseError := strconv.Atoi(matches[1])
	if parseError != nil {
		return 0, false
	}
	return statusCode, true
}

// IsNotFound reports whether gh failed with HTTP 404.
func IsNotFound(failure error) bool {
	statusCode, known := HTTPStatus(failure)
	return known && statusCode == httpStatusNotFoundConstant
}

// IsAlreadyExists reports whether gh failed because the git reference it tried to create exists.
func IsAlreadyExists(failure error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(failure, &commandFailure) {
		return false
	}
	statusCode, known := HTTPStatus(failure)
	if known && statusCode != httpStatusUnprocessableConstant {
		return false
	}
	return strings.Contains(commandFailure.Result.StandardError, referenceAlreadyExistsMessageConstant) ||
		strings.Contains(commandFailure.Result.StandardOutput, referenceAlreadyExistsMessageConstant)
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return RepositoryMetadata{}, repositoryError
	}

	commandDetails := client.commandDetails([]string{
		repoSubcommandConstant,
		viewSubcommandConstant,
		repositoryIdentifier,
		jsonFlagConstant,
		repoViewJSONFieldsConstant,
	}, nil)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		Description      string `json:"description"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// invokeAPI runs gh api against the endpoint, sending payload as JSON on stdin and decoding the response into target.
func (client *Client) invokeAPI(executionContext context.Context, operation OperationName, method string, endpoint string, payload any, target any) (execshell.ExecutionResult, error) {
	arguments := []string{apiSubcommandConstant, endpoint, methodFlagConstant, method, acceptHeaderFlagConstant, acceptHeaderValueConstant}

	var payloadBytes []byte
	if payload != nil {
		encodedPayload, encodingError := json.Marshal(payload)
		if encodingError != nil {
			return execshell.ExecutionResult{}, PayloadEncodingError{Operation: operation, Cause: encodingError}
		}
		payloadBytes = encodedPayload
		arguments = append(arguments, inputFlagConstant, stdinReferenceConstant)
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, client.commandDetails(arguments, payloadBytes))
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: operation, Cause: executionError}
	}

	if target != nil {
		if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), target); decodingError != nil {
			return execshell.ExecutionResult{}, ResponseDecodingError{Operation: operation, Cause: decodingError}
		}
	}

	return executionResult, nil
}

func (client *Client) commandDetails(arguments []string, standardInput []byte) execshell.CommandDetails {
	commandDetails := execshell.CommandDetails{Arguments: arguments, StandardInput: standardInput}
	if len(client.environment) > 0 {
		commandDetails.EnvironmentVariables = make(map[string]string, len(client.environment))
		for environmentKey, environmentValue := range client.environment {
			commandDetails.EnvironmentVariables[environmentKey] = environmentValue
		}
	}
	return commandDetails
}

func escapePath(rawPath string) string {
	segments := strings.Split(strings.Trim(rawPath, repositorySeparatorConstant), repositorySeparatorConstant)
	for segmentIndex, segment := range segments {
		segments[segmentIndex] = url.PathEscape(segment)
	}
	return strings.Join(segments, repositorySeparatorConstant)
}
