package githubcli

import (
	"context"
	"fmt"
	"strings"
)

const (
	pagesEndpointTemplateConstant               = "repos/%s/pages"
	pagesBuildTypeWorkflowConstant              = "workflow"
	pagesBuildTypeLegacyConstant                = "legacy"
	pagesConflictStatusConstant                 = 409
	sourceBranchFieldNameConstant               = "source_branch"
	updatePagesOperationNameConstant            = OperationName("UpdatePagesConfig")
	configurePagesWorkflowOperationNameConstant = OperationName("ConfigurePagesWorkflow")
)

// PagesConfiguration describes a branch-based GitHub Pages source.
type PagesConfiguration struct {
	SourceBranch string
	SourcePath   string
}

// ConfigurePagesWorkflow makes GitHub Pages build from Actions workflows.
// Pages is created when absent; an existing site (HTTP 409) is switched with an update.
func (client *Client) ConfigurePagesWorkflow(executionContext context.Context, repository string) error {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return repositoryError
	}

	payload := struct {
		BuildType string `json:"build_type"`
	}{BuildType: pagesBuildTypeWorkflowConstant}

	endpoint := fmt.Sprintf(pagesEndpointTemplateConstant, repositoryIdentifier)
	_, creationError := client.invokeAPI(executionContext, configurePagesWorkflowOperationNameConstant, httpMethodPostConstant, endpoint, payload, nil)
	if creationError == nil {
		return nil
	}

	statusCode, statusKnown := HTTPStatus(creationError)
	if !statusKnown || statusCode != pagesConflictStatusConstant {
		return creationError
	}

	_, updateError := client.invokeAPI(executionContext, configurePagesWorkflowOperationNameConstant, httpMethodPutConstant, endpoint, payload, nil)
	return updateError
}

// UpdatePagesConfig points GitHub Pages at a branch and path.
func (client *Client) UpdatePagesConfig(executionContext context.Context, repository string, configuration PagesConfiguration) error {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return repositoryError
	}

	if len(strings.TrimSpace(configuration.SourceBranch)) == 0 {
		return InvalidInputError{FieldName: sourceBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		BuildType string `json:"build_type"`
		Source    struct {
			Branch string `json:"branch"`
			Path   string `json:"path"`
		} `json:"source"`
	}{BuildType: pagesBuildTypeLegacyConstant}

	payload.Source.Branch = configuration.SourceBranch
	payload.Source.Path = configuration.SourcePath

	endpoint := fmt.Sprintf(pagesEndpointTemplateConstant, repositoryIdentifier)
	_, invocationError := client.invokeAPI(executionContext, updatePagesOperationNameConstant, httpMethodPutConstant, endpoint, payload, nil)
	return invocationError
}
