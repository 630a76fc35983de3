package githubcli

import (
	"context"
	"fmt"
	"strings"
)

const (
	zipballEndpointTemplateConstant          = "repos/%s/zipball"
	zipballReferenceEndpointTemplateConstant = "repos/%s/zipball/%s"
	downloadArchiveOperationNameConstant     = OperationName("DownloadRepositoryArchive")
)

// DownloadRepositoryArchive fetches the zipball of a repository at the reference, or the default branch when empty.
func (client *Client) DownloadRepositoryArchive(executionContext context.Context, repository string, reference string) ([]byte, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return nil, repositoryError
	}

	endpoint := fmt.Sprintf(zipballEndpointTemplateConstant, repositoryIdentifier)
	if trimmedReference := strings.TrimSpace(reference); len(trimmedReference) > 0 {
		endpoint = fmt.Sprintf(zipballReferenceEndpointTemplateConstant, repositoryIdentifier, escapePath(trimmedReference))
	}

	executionResult, invocationError := client.invokeAPI(executionContext, downloadArchiveOperationNameConstant, httpMethodGetConstant, endpoint, nil, nil)
	if invocationError != nil {
		return nil, invocationError
	}

	return []byte(executionResult.StandardOutput), nil
}
