package githubcli

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	referenceEndpointTemplateConstant       = "repos/%s/git/ref/heads/%s"
	referencesEndpointTemplateConstant      = "repos/%s/git/refs"
	referenceUpdateEndpointTemplateConstant = "repos/%s/git/refs/heads/%s"
	commitEndpointTemplateConstant          = "repos/%s/git/commits/%s"
	commitsEndpointTemplateConstant         = "repos/%s/git/commits"
	treeEndpointTemplateConstant            = "repos/%s/git/trees/%s"
	recursiveTreeQueryConstant              = "?recursive=1"
	treesEndpointTemplateConstant           = "repos/%s/git/trees"
	blobsEndpointTemplateConstant           = "repos/%s/git/blobs"
	fullReferenceTemplateConstant           = "refs/heads/%s"
	fullReferencePrefixConstant             = "refs/"
	tagReferencePrefixConstant              = "refs/tags/"
	tagFieldNameConstant                    = "tag"
	base64EncodingNameConstant              = "base64"
	branchFieldNameConstant                 = "branch"
	objectFieldNameConstant                 = "sha"
	messageFieldNameConstant                = "message"
	getReferenceOperationNameConstant       = OperationName("GetReference")
	createReferenceOperationNameConstant    = OperationName("CreateReference")
	updateReferenceOperationNameConstant    = OperationName("UpdateReference")
	getCommitOperationNameConstant          = OperationName("GetCommit")
	createCommitOperationNameConstant       = OperationName("CreateCommit")
	getTreeOperationNameConstant            = OperationName("GetTree")
	createTreeOperationNameConstant         = OperationName("CreateTree")
	createBlobOperationNameConstant         = OperationName("CreateBlob")
)

// Git object types used in tree entries.
const (
	TreeEntryTypeBlob   = "blob"
	TreeEntryTypeTree   = "tree"
	TreeEntryTypeCommit = "commit"
)

// Reference identifies the commit a branch points at.
type Reference struct {
	Name      string
	ObjectSHA string
}

// Commit holds the identifiers of a commit and its root tree.
type Commit struct {
	SHA     string
	TreeSHA string
}

// TreeEntry is one item of a tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
}

// Tree is a tree listing; Truncated is set when GitHub omitted entries.
type Tree struct {
	SHA       string
	Entries   []TreeEntry
	Truncated bool
}

// TreeEdit is an entry of a tree creation request. A nil SHA deletes the path from the base tree.
type TreeEdit struct {
	Path string  `json:"path"`
	Mode string  `json:"mode"`
	Type string  `json:"type"`
	SHA  *string `json:"sha"`
}

// IsDeletion reports whether the edit removes its path.
func (edit TreeEdit) IsDeletion() bool {
	return edit.SHA == nil
}

// GetReference resolves the commit a branch points to.
func (client *Client) GetReference(executionContext context.Context, repository string, branch string) (Reference, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return Reference{}, repositoryError
	}
	branchName, branchError := requireValue(branchFieldNameConstant, branch)
	if branchError != nil {
		return Reference{}, branchError
	}

	var response struct {
		Ref    string `json:"ref"`
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}

	endpoint := fmt.Sprintf(referenceEndpointTemplateConstant, repositoryIdentifier, escapePath(branchName))
	if _, invocationError := client.invokeAPI(executionContext, getReferenceOperationNameConstant, httpMethodGetConstant, endpoint, nil, &response); invocationError != nil {
		return Reference{}, invocationError
	}

	return Reference{Name: response.Ref, ObjectSHA: response.Object.SHA}, nil
}

// CreateReference creates a reference pointing at the commit. A bare name creates
// refs/heads/<name>; a name starting with refs/ (for example refs/tags/v1.0.0) is used as given.
func (client *Client) CreateReference(executionContext context.Context, repository string, reference string, commitSHA string) (Reference, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return Reference{}, repositoryError
	}
	referenceName, referenceError := requireValue(branchFieldNameConstant, reference)
	if referenceError != nil {
		return Reference{}, referenceError
	}
	objectSHA, objectError := requireValue(objectFieldNameConstant, commitSHA)
	if objectError != nil {
		return Reference{}, objectError
	}

	fullReference := referenceName
	if !strings.HasPrefix(referenceName, fullReferencePrefixConstant) {
		fullReference = fmt.Sprintf(fullReferenceTemplateConstant, referenceName)
	}

	payload := struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	}{Ref: fullReference, SHA: objectSHA}

	var response struct {
		Ref    string `json:"ref"`
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}

	endpoint := fmt.Sprintf(referencesEndpointTemplateConstant, repositoryIdentifier)
	if _, invocationError := client.invokeAPI(executionContext, createReferenceOperationNameConstant, httpMethodPostConstant, endpoint, payload, &response); invocationError != nil {
		return Reference{}, invocationError
	}

	return Reference{Name: response.Ref, ObjectSHA: response.Object.SHA}, nil
}

// CreateTagReference creates the lightweight tag refs/tags/<tag> pointing at the commit.
func (client *Client) CreateTagReference(executionContext context.Context, repository string, tag string, commitSHA string) (Reference, error) {
	tagName, tagError := requireValue(tagFieldNameConstant, tag)
	if tagError != nil {
		return Reference{}, tagError
	}
	return client.CreateReference(executionContext, repository, tagReferencePrefixConstant+strings.TrimPrefix(tagName, tagReferencePrefixConstant), commitSHA)
}

// UpdateReference moves a branch to the commit. Force permits non-fast-forward moves.
func (client *Client) UpdateReference(executionContext context.Context, repository string, branch string, commitSHA string, force bool) error {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return repositoryError
	}
	branchName, branchError := requireValue(branchFieldNameConstant, branch)
	if branchError != nil {
		return branchError
	}
	objectSHA, objectError := requireValue(objectFieldNameConstant, commitSHA)
	if objectError != nil {
		return objectError
	}

	payload := struct {
		SHA   string `json:"sha"`
		Force bool   `json:"force"`
	}{SHA: objectSHA, Force: force}

	endpoint := fmt.Sprintf(referenceUpdateEndpointTemplateConstant, repositoryIdentifier, escapePath(branchName))
	_, invocationError := client.invokeAPI(executionContext, updateReferenceOperationNameConstant, httpMethodPatchConstant, endpoint, payload, nil)
	return invocationError
}

// GetCommit reads a commit and returns its root tree.
func (client *Client) GetCommit(executionContext context.Context, repository string, commitSHA string) (Commit, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return Commit{}, repositoryError
	}
	objectSHA, objectError := requireValue(objectFieldNameConstant, commitSHA)
	if objectError != nil {
		return Commit{}, objectError
	}

	var response struct {
		SHA  string `json:"sha"`
		Tree struct {
			SHA string `json:"sha"`
		} `json:"tree"`
	}

	endpoint := fmt.Sprintf(commitEndpointTemplateConstant, repositoryIdentifier, objectSHA)
	if _, invocationError := client.invokeAPI(executionContext, getCommitOperationNameConstant, httpMethodGetConstant, endpoint, nil, &response); invocationError != nil {
		return Commit{}, invocationError
	}

	return Commit{SHA: response.SHA, TreeSHA: response.Tree.SHA}, nil
}

// CreateCommit creates a commit object and returns its SHA.
func (client *Client) CreateCommit(executionContext context.Context, repository string, message string, treeSHA string, parentSHAs []string) (string, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return "", repositoryError
	}
	if len(strings.TrimSpace(message)) == 0 {
		return "", InvalidInputError{FieldName: messageFieldNameConstant, Message: requiredValueMessageConstant}
	}
	objectSHA, objectError := requireValue(objectFieldNameConstant, treeSHA)
	if objectError != nil {
		return "", objectError
	}

	parents := append([]string{}, parentSHAs...)
	payload := struct {
		Message string   `json:"message"`
		Tree    string   `json:"tree"`
		Parents []string `json:"parents"`
	}{Message: message, Tree: objectSHA, Parents: parents}

	var response struct {
		SHA string `json:"sha"`
	}

	endpoint := fmt.Sprintf(commitsEndpointTemplateConstant, repositoryIdentifier)
	if _, invocationError := client.invokeAPI(executionContext, createCommitOperationNameConstant, httpMethodPostConstant, endpoint, payload, &response); invocationError != nil {
		return "", invocationError
	}

	return response.SHA, nil
}

// GetTree lists a tree, optionally recursing into subtrees.
func (client *Client) GetTree(executionContext context.Context, repository string, treeSHA string, recursive bool) (Tree, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return Tree{}, repositoryError
	}
	objectSHA, objectError := requireValue(objectFieldNameConstant, treeSHA)
	if objectError != nil {
		return Tree{}, objectError
	}

	endpoint := fmt.Sprintf(treeEndpointTemplateConstant, repositoryIdentifier, objectSHA)
	if recursive {
		endpoint += recursiveTreeQueryConstant
	}

	var response struct {
		SHA       string      `json:"sha"`
		Tree      []TreeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}

	if _, invocationError := client.invokeAPI(executionContext, getTreeOperationNameConstant, httpMethodGetConstant, endpoint, nil, &response); invocationError != nil {
		return Tree{}, invocationError
	}

	return Tree{SHA: response.SHA, Entries: response.Tree, Truncated: response.Truncated}, nil
}

// CreateTree creates a tree from the base tree plus edits and returns its SHA.
func (client *Client) CreateTree(executionContext context.Context, repository string, baseTreeSHA string, edits []TreeEdit) (string, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return "", repositoryError
	}

	payload := struct {
		BaseTree string     `json:"base_tree,omitempty"`
		Tree     []TreeEdit `json:"tree"`
	}{BaseTree: strings.TrimSpace(baseTreeSHA), Tree: append([]TreeEdit{}, edits...)}

	var response struct {
		SHA string `json:"sha"`
	}

	endpoint := fmt.Sprintf(treesEndpointTemplateConstant, repositoryIdentifier)
	if _, invocationError := client.invokeAPI(executionContext, createTreeOperationNameConstant, httpMethodPostConstant, endpoint, payload, &response); invocationError != nil {
		return "", invocationError
	}

	return response.SHA, nil
}

// CreateBlob uploads content as a blob and returns its SHA.
func (client *Client) CreateBlob(executionContext context.Context, repository string, content []byte) (string, error) {
	repositoryIdentifier, repositoryError := ParseRepository(repository)
	if repositoryError != nil {
		return "", repositoryError
	}

	payload := struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}{Content: base64.StdEncoding.EncodeToString(content), Encoding: base64EncodingNameConstant}

	var response struct {
		SHA string `json:"sha"`
	}

	endpoint := fmt.Sprintf(blobsEndpointTemplateConstant, repositoryIdentifier)
	if _, invocationError := client.invokeAPI(executionContext, createBlobOperationNameConstant, httpMethodPostConstant, endpoint, payload, &response); invocationError != nil {
		return "", invocationError
	}

	return response.SHA, nil
}

func requireValue(fieldName string, value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", InvalidInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return trimmedValue, nil
}
