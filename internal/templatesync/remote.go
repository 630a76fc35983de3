package templatesync

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
)

// DefaultCommitMessage is used when a remote sync supplies no message.
const DefaultCommitMessage = "Sync template files"

const (
	resolveDefaultBranchStepConstant = "resolving the default branch"
	readReferenceStepConstant        = "reading the branch reference"
	readCommitStepConstant           = "reading the branch tip commit"
	readTreeStepConstant             = "listing the base tree"
	uploadBlobStepTemplateConstant   = "uploading %s"
	createTreeStepConstant           = "creating the tree"
	createCommitStepConstant         = "creating the commit"
	updateReferenceStepConstant      = "moving the branch reference"
	modeOctalBaseConstant            = 8
	treeTruncatedMessageConstant     = "Remote tree listing truncated; existing files may be rewritten"
	unchangedBlobMessageConstant     = "Remote file already matches template"
	noChangesMessageConstant         = "Remote branch already up to date"
	committedMessageConstant         = "Committed template files"
	pagesWarningMessageConstant      = "Pages configuration failed"
	pagesWarningPrefixConstant       = "pages configuration failed: "
	repositoryFieldConstant          = "repository"
	branchFieldConstant              = "branch"
	commitFieldConstant              = "commit"
	editsFieldConstant               = "edits"
)

// GitDataClient is the subset of the GitHub client the remote tree builder drives.
type GitDataClient interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	GetReference(executionContext context.Context, repository string, branch string) (githubcli.Reference, error)
	GetCommit(executionContext context.Context, repository string, commitSHA string) (githubcli.Commit, error)
	GetTree(executionContext context.Context, repository string, treeSHA string, recursive bool) (githubcli.Tree, error)
	CreateBlob(executionContext context.Context, repository string, content []byte) (string, error)
	CreateTree(executionContext context.Context, repository string, baseTreeSHA string, edits []githubcli.TreeEdit) (string, error)
	CreateCommit(executionContext context.Context, repository string, message string, treeSHA string, parentSHAs []string) (string, error)
	UpdateReference(executionContext context.Context, repository string, branch string, commitSHA string, force bool) error
}

// PagesConfigurator switches a repository's Pages site to build from Actions.
type PagesConfigurator interface {
	ConfigurePagesWorkflow(executionContext context.Context, repository string) error
}

// RemoteBase is the branch state a remote plan is computed against.
type RemoteBase struct {
	Repository string
	Branch     string
	CommitSHA  string
	TreeSHA    string
	Inventory  TreeInventory
	Truncated  bool
}

// RemoteApplyOptions tunes how a plan is committed.
type RemoteApplyOptions struct {
	Clean          bool
	CommitMessage  string
	Force          bool
	ConfigurePages bool
}

// RemoteResult describes the outcome of a remote sync. Unchanged lists the skipped paths
// whose blob and mode already matched the branch.
type RemoteResult struct {
	SyncResult
	Repository string
	Branch     string
	CommitSHA  string
	TreeSHA    string
	Committed  bool
	Deleted    []string
	Unchanged  []string
	Warnings   []string
}

// RemoteTreeBuilder applies plans to a hosted repository through the git data API.
type RemoteTreeBuilder struct {
	client            GitDataClient
	pagesConfigurator PagesConfigurator
	logger            *zap.Logger
}

// NewRemoteTreeBuilder constructs a builder. The pages configurator may be nil when Pages is never requested.
func NewRemoteTreeBuilder(client GitDataClient, pagesConfigurator PagesConfigurator, logger *zap.Logger) (*RemoteTreeBuilder, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteTreeBuilder{client: client, pagesConfigurator: pagesConfigurator, logger: logger}, nil
}

// FetchBase resolves the branch (the default branch when empty), its tip commit and the recursive tree listing.
func (builder *RemoteTreeBuilder) FetchBase(executionContext context.Context, repository string, branch string) (RemoteBase, error) {
	branchName := strings.TrimSpace(branch)
	if len(branchName) == 0 {
		metadata, metadataError := builder.client.ResolveRepoMetadata(executionContext, repository)
		if metadataError != nil {
			return RemoteBase{}, RemoteAPIError{Step: resolveDefaultBranchStepConstant, Cause: metadataError}
		}
		branchName = metadata.DefaultBranch
	}

	reference, referenceError := builder.client.GetReference(executionContext, repository, branchName)
	if referenceError != nil {
		return RemoteBase{}, RemoteAPIError{Step: readReferenceStepConstant, Cause: referenceError}
	}

	commit, commitError := builder.client.GetCommit(executionContext, repository, reference.ObjectSHA)
	if commitError != nil {
		return RemoteBase{}, RemoteAPIError{Step: readCommitStepConstant, Cause: commitError}
	}

	tree, treeError := builder.client.GetTree(executionContext, repository, commit.TreeSHA, true)
	if treeError != nil {
		return RemoteBase{}, RemoteAPIError{Step: readTreeStepConstant, Cause: treeError}
	}
	if tree.Truncated {
		builder.logger.Warn(treeTruncatedMessageConstant, zap.String(repositoryFieldConstant, repository), zap.String(branchFieldConstant, branchName))
	}

	return RemoteBase{
		Repository: repository,
		Branch:     branchName,
		CommitSHA:  reference.ObjectSHA,
		TreeSHA:    commit.TreeSHA,
		Inventory:  NewTreeInventory(tree.Entries),
		Truncated:  tree.Truncated,
	}, nil
}

// Apply commits the plan on top of base. Any API failure before the reference moves aborts the sync
// and leaves the branch untouched. A plan producing no tree edits creates no objects at all.
// Pages configuration runs last and only contributes warnings.
func (builder *RemoteTreeBuilder) Apply(executionContext context.Context, base RemoteBase, plan Plan, options RemoteApplyOptions) (RemoteResult, error) {
	if options.Clean && len(plan.ManagedDirectory) == 0 {
		return RemoteResult{}, ErrCleanRequiresManagedDirectory
	}

	result := RemoteResult{Repository: base.Repository, Branch: base.Branch, TreeSHA: base.TreeSHA, CommitSHA: base.CommitSHA}

	writePaths := map[string]struct{}{}
	for _, writePath := range plan.WritePaths() {
		writePaths[writePath] = struct{}{}
	}

	var edits []githubcli.TreeEdit
	if options.Clean {
		for _, staleEntry := range base.Inventory.EntriesUnder(plan.ManagedDirectory) {
			if _, rewritten := writePaths[staleEntry.Path]; rewritten {
				continue
			}
			edits = append(edits, githubcli.TreeEdit{Path: staleEntry.Path, Mode: staleEntry.Mode, Type: staleEntry.Type})
			result.Deleted = append(result.Deleted, staleEntry.Path)
		}
	}

	for _, item := range plan.Items {
		if !item.Writes() {
			result.RecordSkipped(item.Path)
			continue
		}

		mode := treeEntryMode(item.Mode)
		if existingEntry, exists := base.Inventory.Entry(item.Path); exists && blobMatches(existingEntry, item.Content, mode) {
			builder.logger.Debug(unchangedBlobMessageConstant, zap.String(pathFieldConstant, item.Path))
			result.RecordSkipped(item.Path)
			result.Unchanged = append(result.Unchanged, item.Path)
			continue
		}

		blobSHA, blobError := builder.client.CreateBlob(executionContext, base.Repository, item.Content)
		if blobError != nil {
			return RemoteResult{}, RemoteAPIError{Step: fmt.Sprintf(uploadBlobStepTemplateConstant, item.Path), Cause: blobError}
		}
		edits = append(edits, githubcli.TreeEdit{Path: item.Path, Mode: mode, Type: githubcli.TreeEntryTypeBlob, SHA: &blobSHA})
		result.RecordWritten(item.Path)
	}

	edits = deduplicateEdits(edits)

	if len(edits) == 0 {
		builder.logger.Info(noChangesMessageConstant, zap.String(repositoryFieldConstant, base.Repository), zap.String(branchFieldConstant, base.Branch))
		builder.configurePages(executionContext, base.Repository, options, &result)
		return result, nil
	}

	treeSHA, treeError := builder.client.CreateTree(executionContext, base.Repository, base.TreeSHA, edits)
	if treeError != nil {
		return RemoteResult{}, RemoteAPIError{Step: createTreeStepConstant, Cause: treeError}
	}

	commitMessage := strings.TrimSpace(options.CommitMessage)
	if len(commitMessage) == 0 {
		commitMessage = DefaultCommitMessage
	}

	commitSHA, commitError := builder.client.CreateCommit(executionContext, base.Repository, commitMessage, treeSHA, []string{base.CommitSHA})
	if commitError != nil {
		return RemoteResult{}, RemoteAPIError{Step: createCommitStepConstant, Cause: commitError}
	}

	if updateError := builder.client.UpdateReference(executionContext, base.Repository, base.Branch, commitSHA, options.Force); updateError != nil {
		return RemoteResult{}, RemoteAPIError{Step: updateReferenceStepConstant, Cause: updateError}
	}

	result.TreeSHA = treeSHA
	result.CommitSHA = commitSHA
	result.Committed = true

	builder.logger.Info(
		committedMessageConstant,
		zap.String(repositoryFieldConstant, base.Repository),
		zap.String(branchFieldConstant, base.Branch),
		zap.String(commitFieldConstant, commitSHA),
		zap.Int(editsFieldConstant, len(edits)),
	)

	builder.configurePages(executionContext, base.Repository, options, &result)
	return result, nil
}

func (builder *RemoteTreeBuilder) configurePages(executionContext context.Context, repository string, options RemoteApplyOptions, result *RemoteResult) {
	if !options.ConfigurePages || builder.pagesConfigurator == nil {
		return
	}
	if pagesError := builder.pagesConfigurator.ConfigurePagesWorkflow(executionContext, repository); pagesError != nil {
		builder.logger.Warn(pagesWarningMessageConstant, zap.String(repositoryFieldConstant, repository), zap.Error(pagesError))
		result.Warnings = append(result.Warnings, pagesWarningPrefixConstant+TruncateMessage(pagesError.Error(), DefaultFailurePreviewLength))
	}
}

// treeEntryMode maps archive permissions onto git file modes: symlinks, executables, regular files.
func treeEntryMode(permissions fs.FileMode) string {
	gitMode, conversionError := filemode.NewFromOSFileMode(permissions)
	if conversionError != nil || gitMode == filemode.Dir {
		gitMode = filemode.Regular
	}
	if gitMode == filemode.Regular && IsExecutable(permissions) {
		gitMode = filemode.Executable
	}
	return strconv.FormatUint(uint64(gitMode), modeOctalBaseConstant)
}

func blobMatches(existingEntry githubcli.TreeEntry, content []byte, mode string) bool {
	if existingEntry.Type != githubcli.TreeEntryTypeBlob || existingEntry.Mode != mode || len(existingEntry.SHA) == 0 {
		return false
	}
	return plumbing.ComputeHash(plumbing.BlobObject, content).String() == existingEntry.SHA
}

// deduplicateEdits keeps the last edit per (path, type), preserving the position of that last edit.
func deduplicateEdits(edits []githubcli.TreeEdit) []githubcli.TreeEdit {
	type editKey struct {
		path      string
		entryType string
	}

	seen := map[editKey]struct{}{}
	reversed := make([]githubcli.TreeEdit, 0, len(edits))
	for editIndex := len(edits) - 1; editIndex >= 0; editIndex-- {
		key := editKey{path: edits[editIndex].Path, entryType: edits[editIndex].Type}
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}
		reversed = append(reversed, edits[editIndex])
	}

	deduplicated := make([]githubcli.TreeEdit, 0, len(reversed))
	for editIndex := len(reversed) - 1; editIndex >= 0; editIndex-- {
		deduplicated = append(deduplicated, reversed[editIndex])
	}
	return deduplicated
}
