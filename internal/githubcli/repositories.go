package githubcli

import (
	"context"
	"fmt"
	"time"
)

const (
	accountRepositoriesEndpointTemplateConstant = "users/%s/repos?sort=updated&per_page=100&type=all"
	accountFieldNameConstant                    = "account"
	listRepositoriesOperationNameConstant       = OperationName("ListAccountRepositories")
)

// RepositorySummary is a repository entry of an account listing.
type RepositorySummary struct {
	FullName  string    `json:"full_name"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PushedAt  time.Time `json:"pushed_at"`
}

// ListAccountRepositories returns the most recently updated repositories of a user account.
func (client *Client) ListAccountRepositories(executionContext context.Context, account string) ([]RepositorySummary, error) {
	accountName, accountError := requireValue(accountFieldNameConstant, account)
	if accountError != nil {
		return nil, accountError
	}

	var response []RepositorySummary
	endpoint := fmt.Sprintf(accountRepositoriesEndpointTemplateConstant, escapePath(accountName))
	if _, invocationError := client.invokeAPI(executionContext, listRepositoriesOperationNameConstant, httpMethodGetConstant, endpoint, nil, &response); invocationError != nil {
		return nil, invocationError
	}

	return response, nil
}
