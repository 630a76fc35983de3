package githubcli

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const (
	contentsEndpointTemplateConstant = "repos/%s/contents/%s"
	contentsReferenceQueryConstant   = "?ref="
	pathFieldNameConstant            = "path"
	contentLineBreakConstant         = "\n"
	getContentOperationNameConstant  = OperationName("GetContent")
	putContentOperationNameConstant  = OperationName("PutContent")
)

// ContentFile is a file read through the contents API.
type ContentFile struct {
	Path    string
	SHA     string
	Content []byte
}

// PutContentRequest describes a create-or-update of a single file. SHA is required when the file exists.
type PutContentRequest struct {
	Message string
	Content []byte
	SHA     string
	Branch  string
}

// GetContent reads a file. The boolean is false when the file does not exist.
func (client *Client) GetContent(executionContext context.Context, repository string, filePath string, reference string) (ContentFile, bool, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return ContentFile{}, false, repositoryError
	}
	trimmedPath, pathError := requireValue(pathFieldNameConstant, filePath)
	if pathError != nil {
		return ContentFile{}, false, pathError
	}

	endpoint := fmt.Sprintf(contentsEndpointTemplateConstant, repositoryIdentifier, escapePath(trimmedPath))
	if trimmedReference := strings.TrimSpace(reference); len(trimmedReference) > 0 {
		endpoint += contentsReferenceQueryConstant + url.QueryEscape(trimmedReference)
	}

	var response struct {
		Path     string `json:"path"`
		SHA      string `json:"sha"`
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}

	if _, invocationError := client.invokeAPI(executionContext, getContentOperationNameConstant, httpMethodGetConstant, endpoint, nil, &response); invocationError != nil {
		if IsNotFound(invocationError) {
			return ContentFile{}, false, nil
		}
		return ContentFile{}, false, invocationError
	}

	contentFile := ContentFile{Path: response.Path, SHA: response.SHA}
	if response.Encoding == base64EncodingNameConstant {
		decodedContent, decodingError := base64.StdEncoding.DecodeString(strings.ReplaceAll(response.Content, contentLineBreakConstant, ""))
		if decodingError != nil {
			return ContentFile{}, false, ResponseDecodingError{Operation: getContentOperationNameConstant, Cause: decodingError}
		}
		contentFile.Content = decodedContent
	}

	return contentFile, true, nil
}

// PutContent creates or updates a file through the contents API and returns the new blob SHA.
func (client *Client) PutContent(executionContext context.Context, repository string, filePath string, request PutContentRequest) (string, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return "", repositoryError
	}
	trimmedPath, pathError := requireValue(pathFieldNameConstant, filePath)
	if pathError != nil {
		return "", pathError
	}
	if len(strings.TrimSpace(request.Message)) == 0 {
		return "", InvalidInputError{FieldName: messageFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha,omitempty"`
		Branch  string `json:"branch,omitempty"`
	}{
		Message: request.Message,
		Content: base64.StdEncoding.EncodeToString(request.Content),
		SHA:     strings.TrimSpace(request.SHA),
		Branch:  strings.TrimSpace(request.Branch),
	}

	var response struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}

	endpoint := fmt.Sprintf(contentsEndpointTemplateConstant, repositoryIdentifier, escapePath(trimmedPath))
	if _, invocationError := client.invokeAPI(executionContext, putContentOperationNameConstant, httpMethodPutConstant, endpoint, payload, &response); invocationError != nil {
		return "", invocationError
	}

	return response.Content.SHA, nil
}
