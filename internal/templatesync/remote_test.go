package templatesync_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	testTargetRepositoryConstant   = "owner/repo"
	testTemplateRepositoryConstant = "owner/template"
	testDefaultBranchConstant      = "main"
	testBaseCommitSHAConstant      = "abc123"
	testBaseTreeSHAConstant        = "tree123"
	testNewTreeSHAConstant         = "newtree"
	testNewCommitSHAConstant       = "commit123"
	testRegularModeConstant        = "100644"
	testExecutableModeConstant     = "100755"
)

type createdTree struct {
	baseTreeSHA string
	edits       []githubcli.TreeEdit
}

type createdCommit struct {
	message    string
	treeSHA    string
	parentSHAs []string
}

type updatedReference struct {
	branch    string
	commitSHA string
	force     bool
}

type stubGitDataClient struct {
	treeEntries     []githubcli.TreeEntry
	blobSHAs        []string
	blobError       error
	treeError       error
	referenceError  error
	pagesError      error
	metadataCalls   int
	referenceBranch string
	blobContents    []string
	createdTrees    []createdTree
	createdCommits  []createdCommit
	updatedRefs     []updatedReference
	pagesCalls      int
}

func (client *stubGitDataClient) ResolveRepoMetadata(context.Context, string) (githubcli.RepositoryMetadata, error) {
	client.metadataCalls++
	return githubcli.RepositoryMetadata{DefaultBranch: testDefaultBranchConstant}, nil
}

func (client *stubGitDataClient) GetReference(_ context.Context, _ string, branch string) (githubcli.Reference, error) {
	client.referenceBranch = branch
	if client.referenceError != nil {
		return githubcli.Reference{}, client.referenceError
	}
	return githubcli.Reference{Name: "refs/heads/" + branch, ObjectSHA: testBaseCommitSHAConstant}, nil
}

func (client *stubGitDataClient) GetCommit(context.Context, string, string) (githubcli.Commit, error) {
	return githubcli.Commit{SHA: testBaseCommitSHAConstant, TreeSHA: testBaseTreeSHAConstant}, nil
}

func (client *stubGitDataClient) GetTree(context.Context, string, string, bool) (githubcli.Tree, error) {
	return githubcli.Tree{SHA: testBaseTreeSHAConstant, Entries: client.treeEntries}, nil
}

func (client *stubGitDataClient) CreateBlob(_ context.Context, _ string, content []byte) (string, error) {
	if client.blobError != nil {
		return "", client.blobError
	}
	client.blobContents = append(client.blobContents, string(content))
	if len(client.blobSHAs) >= len(client.blobContents) {
		return client.blobSHAs[len(client.blobContents)-1], nil
	}
	return plumbing.ComputeHash(plumbing.BlobObject, content).String(), nil
}

func (client *stubGitDataClient) CreateTree(_ context.Context, _ string, baseTreeSHA string, edits []githubcli.TreeEdit) (string, error) {
	if client.treeError != nil {
		return "", client.treeError
	}
	client.createdTrees = append(client.createdTrees, createdTree{baseTreeSHA: baseTreeSHA, edits: edits})
	return testNewTreeSHAConstant, nil
}

func (client *stubGitDataClient) CreateCommit(_ context.Context, _ string, message string, treeSHA string, parentSHAs []string) (string, error) {
	client.createdCommits = append(client.createdCommits, createdCommit{message: message, treeSHA: treeSHA, parentSHAs: parentSHAs})
	return testNewCommitSHAConstant, nil
}

func (client *stubGitDataClient) UpdateReference(_ context.Context, _ string, branch string, commitSHA string, force bool) error {
	client.updatedRefs = append(client.updatedRefs, updatedReference{branch: branch, commitSHA: commitSHA, force: force})
	return nil
}

func (client *stubGitDataClient) ConfigurePagesWorkflow(context.Context, string) error {
	client.pagesCalls++
	return client.pagesError
}

func blobEntry(entryPath string) githubcli.TreeEntry {
	return githubcli.TreeEntry{Path: entryPath, Type: githubcli.TreeEntryTypeBlob, Mode: testRegularModeConstant}
}

func remoteArchive(testInstance *testing.T) *templatesync.Archive {
	testInstance.Helper()
	archive, openError := templatesync.OpenArchive(buildArchive(testInstance,
		templateFile(".github/workflows/test.yml", testWorkflowContentConstant),
		templateFile(testIndexPathConstant, "<html>template</html>"),
	))
	require.NoError(testInstance, openError)
	return archive
}

func runRemoteSync(testInstance *testing.T, client *stubGitDataClient, archive *templatesync.Archive, request templatesync.Request, options templatesync.RemoteApplyOptions) (templatesync.RemoteResult, error) {
	testInstance.Helper()

	builder, builderError := templatesync.NewRemoteTreeBuilder(client, client, zap.NewNop())
	require.NoError(testInstance, builderError)

	base, baseError := builder.FetchBase(context.Background(), testTargetRepositoryConstant, "")
	require.NoError(testInstance, baseError)

	var inventory templatesync.Inventory = base.Inventory
	if options.Clean {
		inventory = templatesync.WithoutDirectory(inventory, request.ManagedDirectory)
	}
	plan, planError := templatesync.NewPlanner(nil).Plan(archive, request, inventory)
	require.NoError(testInstance, planError)

	return builder.Apply(context.Background(), base, plan, options)
}

func TestRemoteTreeBuilderOverwritePolicies(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		existingEntries      []githubcli.TreeEntry
		request              templatesync.Request
		expectedBlobContents []string
		expectedWritten      []string
		expectedSkipped      []string
		expectedCommitted    bool
	}{
		{
			name:                 "existing_index_skipped",
			existingEntries:      []githubcli.TreeEntry{blobEntry(testIndexPathConstant)},
			request:              templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub, ExtraFiles: []string{testIndexPathConstant}},
			expectedBlobContents: []string{testWorkflowContentConstant},
			expectedWritten:      []string{".github/workflows/test.yml"},
			expectedSkipped:      []string{testIndexPathConstant},
			expectedCommitted:    true,
		},
		{
			name:                 "existing_index_overwritten",
			existingEntries:      []githubcli.TreeEntry{blobEntry(testIndexPathConstant)},
			request:              templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub, ExtraFiles: []string{testIndexPathConstant}, OverwriteExtras: true},
			expectedBlobContents: []string{testWorkflowContentConstant, "<html>template</html>"},
			expectedWritten:      []string{".github/workflows/test.yml", testIndexPathConstant},
			expectedCommitted:    true,
		},
		{
			name:            "existing_workflow_skipped",
			existingEntries: []githubcli.TreeEntry{blobEntry(".github/workflows/test.yml")},
			request:         templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub},
			expectedSkipped: []string{".github/workflows/test.yml"},
		},
		{
			name:                 "existing_workflow_overwritten",
			existingEntries:      []githubcli.TreeEntry{blobEntry(".github/workflows/test.yml")},
			request:              templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub, OverwriteManaged: true},
			expectedBlobContents: []string{testWorkflowContentConstant},
			expectedWritten:      []string{".github/workflows/test.yml"},
			expectedCommitted:    true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client := &stubGitDataClient{treeEntries: testCase.existingEntries}

			result, syncError := runRemoteSync(testInstance, client, remoteArchive(testInstance), testCase.request, templatesync.RemoteApplyOptions{})
			require.NoError(testInstance, syncError)
			require.Equal(testInstance, testCase.expectedBlobContents, client.blobContents)
			require.Equal(testInstance, testCase.expectedWritten, result.Written)
			require.Equal(testInstance, testCase.expectedSkipped, result.Skipped)
			require.Equal(testInstance, testCase.expectedCommitted, result.Committed)
			require.Equal(testInstance, testDefaultBranchConstant, client.referenceBranch)
			require.Equal(testInstance, 1, client.metadataCalls)

			if !testCase.expectedCommitted {
				require.Empty(testInstance, client.createdTrees)
				require.Empty(testInstance, client.createdCommits)
				require.Empty(testInstance, client.updatedRefs)
				require.Equal(testInstance, testBaseCommitSHAConstant, result.CommitSHA)
				return
			}

			require.Len(testInstance, client.createdTrees, 1)
			require.Equal(testInstance, testBaseTreeSHAConstant, client.createdTrees[0].baseTreeSHA)
			require.Equal(testInstance, []createdCommit{{message: templatesync.DefaultCommitMessage, treeSHA: testNewTreeSHAConstant, parentSHAs: []string{testBaseCommitSHAConstant}}}, client.createdCommits)
			require.Equal(testInstance, []updatedReference{{branch: testDefaultBranchConstant, commitSHA: testNewCommitSHAConstant}}, client.updatedRefs)
			require.Equal(testInstance, testNewCommitSHAConstant, result.CommitSHA)
			require.Equal(testInstance, testNewTreeSHAConstant, result.TreeSHA)
		})
	}
}

func TestRemoteTreeBuilderCleanDeletesStaleManagedEntries(testInstance *testing.T) {
	client := &stubGitDataClient{treeEntries: []githubcli.TreeEntry{
		{Path: templatesync.ManagedDirectoryGitHub, Type: githubcli.TreeEntryTypeTree, Mode: "040000"},
		{Path: templatesync.WorkflowsDirectory, Type: githubcli.TreeEntryTypeTree, Mode: "040000"},
		blobEntry(".github/workflows/test.yml"),
		blobEntry(".github/workflows/legacy.yml"),
		blobEntry(".github/CODEOWNERS"),
		blobEntry(".githubignore"),
		blobEntry(testIndexPathConstant),
	}}
	request := templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub}

	result, syncError := runRemoteSync(testInstance, client, remoteArchive(testInstance), request, templatesync.RemoteApplyOptions{Clean: true, Force: true, CommitMessage: "Refresh workflows"})
	require.NoError(testInstance, syncError)
	require.True(testInstance, result.Committed)
	require.Equal(testInstance, []string{".github/workflows/legacy.yml", ".github/CODEOWNERS"}, result.Deleted)
	require.Equal(testInstance, []string{".github/workflows/test.yml"}, result.Written)

	require.Len(testInstance, client.createdTrees, 1)
	edits := client.createdTrees[0].edits
	require.Len(testInstance, edits, 3)
	require.Equal(testInstance, ".github/workflows/legacy.yml", edits[0].Path)
	require.True(testInstance, edits[0].IsDeletion())
	require.Equal(testInstance, ".github/CODEOWNERS", edits[1].Path)
	require.True(testInstance, edits[1].IsDeletion())
	require.Equal(testInstance, ".github/workflows/test.yml", edits[2].Path)
	require.False(testInstance, edits[2].IsDeletion())

	require.Equal(testInstance, "Refresh workflows", client.createdCommits[0].message)
	require.Equal(testInstance, []updatedReference{{branch: testDefaultBranchConstant, commitSHA: testNewCommitSHAConstant, force: true}}, client.updatedRefs)
}

func TestRemoteTreeBuilderSkipsIdenticalBlobs(testInstance *testing.T) {
	identicalEntry := blobEntry(".github/workflows/test.yml")
	identicalEntry.SHA = plumbing.ComputeHash(plumbing.BlobObject, []byte(testWorkflowContentConstant)).String()
	client := &stubGitDataClient{treeEntries: []githubcli.TreeEntry{identicalEntry}}

	request := templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub, OverwriteManaged: true}
	result, syncError := runRemoteSync(testInstance, client, remoteArchive(testInstance), request, templatesync.RemoteApplyOptions{Clean: true})
	require.NoError(testInstance, syncError)
	require.False(testInstance, result.Committed)
	require.Empty(testInstance, client.blobContents)
	require.Empty(testInstance, client.createdTrees)
	require.Empty(testInstance, client.updatedRefs)
	require.Equal(testInstance, []string{".github/workflows/test.yml"}, result.Skipped)
	require.Equal(testInstance, []string{".github/workflows/test.yml"}, result.Unchanged)
}

func TestRemoteTreeBuilderPreservesExecutableMode(testInstance *testing.T) {
	testCases := []struct {
		name         string
		scriptMode   fs.FileMode
		expectedMode string
	}{
		{name: "owner_executable", scriptMode: testExecutableFileModeConstant, expectedMode: testExecutableModeConstant},
		{name: "group_executable_only", scriptMode: fs.FileMode(0o654), expectedMode: testExecutableModeConstant},
		{name: "other_executable_only", scriptMode: fs.FileMode(0o645), expectedMode: testExecutableModeConstant},
		{name: "not_executable", scriptMode: testRegularFileModeConstant, expectedMode: testRegularModeConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			archive, openError := templatesync.OpenArchive(buildArchive(testInstance,
				archiveFixtureEntry{name: testArchivePrefixConstant + "/.github/scripts/run.sh", content: "#!/bin/sh", mode: testCase.scriptMode},
				templateFile(testWorkflowPathConstant, testWorkflowContentConstant),
			))
			require.NoError(testInstance, openError)

			scriptEntry, found := archive.Lookup(".github/scripts/run.sh")
			require.True(testInstance, found)
			require.Equal(testInstance, testCase.expectedMode == testExecutableModeConstant, scriptEntry.Executable())

			client := &stubGitDataClient{}
			_, syncError := runRemoteSync(testInstance, client, archive, templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub}, templatesync.RemoteApplyOptions{})
			require.NoError(testInstance, syncError)

			edits := client.createdTrees[0].edits
			require.Equal(testInstance, testCase.expectedMode, edits[0].Mode)
			require.Equal(testInstance, testRegularModeConstant, edits[1].Mode)
			require.Equal(testInstance, githubcli.TreeEntryTypeBlob, edits[1].Type)
		})
	}
}

func TestRemoteTreeBuilderAbortsOnAPIFailure(testInstance *testing.T) {
	testCases := []struct {
		name         string
		client       *stubGitDataClient
		expectedStep string
	}{
		{name: "blob_upload_failure", client: &stubGitDataClient{blobError: errors.New("blob rejected")}, expectedStep: "uploading .github/workflows/test.yml"},
		{name: "tree_creation_failure", client: &stubGitDataClient{treeError: errors.New("tree rejected")}, expectedStep: "creating the tree"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, syncError := runRemoteSync(testInstance, testCase.client, remoteArchive(testInstance), templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub}, templatesync.RemoteApplyOptions{ConfigurePages: true})

			var remoteError templatesync.RemoteAPIError
			require.ErrorAs(testInstance, syncError, &remoteError)
			require.Equal(testInstance, testCase.expectedStep, remoteError.Step)
			require.Empty(testInstance, testCase.client.createdCommits)
			require.Empty(testInstance, testCase.client.updatedRefs)
			require.Zero(testInstance, testCase.client.pagesCalls)
		})
	}
}

func TestRemoteTreeBuilderFetchBaseFailure(testInstance *testing.T) {
	client := &stubGitDataClient{referenceError: errors.New("no such branch")}
	builder, builderError := templatesync.NewRemoteTreeBuilder(client, nil, nil)
	require.NoError(testInstance, builderError)

	_, baseError := builder.FetchBase(context.Background(), testTargetRepositoryConstant, "feature")
	var remoteError templatesync.RemoteAPIError
	require.ErrorAs(testInstance, baseError, &remoteError)
	require.Equal(testInstance, "feature", client.referenceBranch)
	require.Zero(testInstance, client.metadataCalls)
}

func TestRemoteTreeBuilderPagesFailureIsWarning(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	client := &stubGitDataClient{pagesError: errors.New("pages unavailable")}

	builder, builderError := templatesync.NewRemoteTreeBuilder(client, client, zap.New(observedCore))
	require.NoError(testInstance, builderError)

	base, baseError := builder.FetchBase(context.Background(), testTargetRepositoryConstant, testDefaultBranchConstant)
	require.NoError(testInstance, baseError)

	plan, planError := templatesync.NewPlanner(nil).Plan(remoteArchive(testInstance), templatesync.Request{ManagedDirectory: templatesync.ManagedDirectoryGitHub}, base.Inventory)
	require.NoError(testInstance, planError)

	result, applyError := builder.Apply(context.Background(), base, plan, templatesync.RemoteApplyOptions{ConfigurePages: true})
	require.NoError(testInstance, applyError)
	require.True(testInstance, result.Committed)
	require.Equal(testInstance, 1, client.pagesCalls)
	require.Len(testInstance, result.Warnings, 1)
	require.Contains(testInstance, result.Warnings[0], "pages unavailable")
	require.Equal(testInstance, 1, observedLogs.FilterMessage("Pages configuration failed").Len())
}

func TestRemoteTreeBuilderCleanRequiresManagedDirectory(testInstance *testing.T) {
	builder, builderError := templatesync.NewRemoteTreeBuilder(&stubGitDataClient{}, nil, nil)
	require.NoError(testInstance, builderError)

	_, applyError := builder.Apply(context.Background(), templatesync.RemoteBase{}, templatesync.Plan{}, templatesync.RemoteApplyOptions{Clean: true})
	require.ErrorIs(testInstance, applyError, templatesync.ErrCleanRequiresManagedDirectory)
}

func TestNewRemoteTreeBuilderRequiresClient(testInstance *testing.T) {
	builder, builderError := templatesync.NewRemoteTreeBuilder(nil, nil, nil)
	require.Nil(testInstance, builder)
	require.ErrorIs(testInstance, builderError, templatesync.ErrClientNotConfigured)
}
