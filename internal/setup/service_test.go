package setup_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/branches"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/contentsync"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/presets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/secrets"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/setup"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

const (
	testRepositoryConstant         = "owner/example"
	testCloneURLConstant           = "git@github.com:owner/example.git"
	testTemplateRepositoryConstant = "template/source"
	testArchivePrefixConstant      = "template-main/"
	testWorkflowNameConstant       = "ci.yml"
	testWorkflowPathConstant       = ".github/workflows/ci.yml"
	testSecretNameConstant         = "GEMINI_API_KEY"
	testStepFailedLogConstant      = "Setup step failed"
)

var (
	errTestArchive  = errors.New("archive unavailable")
	errTestBranches = errors.New("base branch main not found")
	errTestContents = errors.New("contents unavailable")
)

type stubArchiveFetcher struct {
	archive *templatesync.Archive
	err     error
	calls   int
}

func (fetcher *stubArchiveFetcher) FetchArchive(context.Context, string, string) (*templatesync.Archive, error) {
	fetcher.calls++
	return fetcher.archive, fetcher.err
}

type stubFileSynchronizer struct {
	calls         []contentsync.Options
	workflowError error
}

func (synchronizer *stubFileSynchronizer) SyncFiles(_ context.Context, options contentsync.Options) (templatesync.SyncResult, error) {
	synchronizer.calls = append(synchronizer.calls, options)
	if options.CommitMessageTemplate == contentsync.WorkflowCommitMessageTemplate && synchronizer.workflowError != nil {
		return templatesync.SyncResult{}, synchronizer.workflowError
	}
	var result templatesync.SyncResult
	for _, file := range options.Files {
		result.RecordWritten(file.Path)
	}
	return result, nil
}

type stubSecretSynchronizer struct {
	calls  []secrets.Options
	failed []secrets.Failure
}

func (synchronizer *stubSecretSynchronizer) Sync(_ context.Context, options secrets.Options) (secrets.Result, error) {
	synchronizer.calls = append(synchronizer.calls, options)
	result := secrets.Result{Repository: options.Repository, Failed: synchronizer.failed}
	for name := range options.Variables {
		if options.DryRun {
			result.Planned = append(result.Planned, name)
			continue
		}
		result.Updated = append(result.Updated, name)
	}
	return result, nil
}

type stubBranchSynchronizer struct {
	calls []branches.Options
	err   error
}

func (synchronizer *stubBranchSynchronizer) Sync(_ context.Context, options branches.Options) (branches.Result, error) {
	synchronizer.calls = append(synchronizer.calls, options)
	if synchronizer.err != nil {
		return branches.Result{}, synchronizer.err
	}
	return branches.Result{Repository: options.Repository, BaseBranch: "main", DryRun: options.DryRun, Created: options.Branches}, nil
}

type serviceFixture struct {
	archives *stubArchiveFetcher
	files    *stubFileSynchronizer
	secrets  *stubSecretSynchronizer
	branches *stubBranchSynchronizer
	service  *setup.Service
}

func newServiceFixture(testInstance *testing.T, archiveFiles map[string]string, logger *zap.Logger) *serviceFixture {
	testInstance.Helper()
	archive, openError := templatesync.OpenArchive(buildTemplateArchive(testInstance, archiveFiles))
	require.NoError(testInstance, openError)

	fixture := &serviceFixture{
		archives: &stubArchiveFetcher{archive: archive},
		files:    &stubFileSynchronizer{},
		secrets:  &stubSecretSynchronizer{},
		branches: &stubBranchSynchronizer{},
	}
	service, serviceError := setup.NewService(setup.ServiceDependencies{
		Logger:   logger,
		Archives: fixture.archives,
		Files:    fixture.files,
		Secrets:  fixture.secrets,
		Branches: fixture.branches,
	})
	require.NoError(testInstance, serviceError)
	fixture.service = service
	return fixture
}

func buildTemplateArchive(testInstance *testing.T, files map[string]string) []byte {
	testInstance.Helper()

	buffer := &bytes.Buffer{}
	writer := zip.NewWriter(buffer)
	_, directoryError := writer.Create(testArchivePrefixConstant)
	require.NoError(testInstance, directoryError)
	for filePath, content := range files {
		fileWriter, createError := writer.Create(testArchivePrefixConstant + filePath)
		require.NoError(testInstance, createError)
		_, writeError := fileWriter.Write([]byte(content))
		require.NoError(testInstance, writeError)
	}
	require.NoError(testInstance, writer.Close())
	return buffer.Bytes()
}

func completeTemplateFiles() map[string]string {
	return map[string]string{
		testWorkflowPathConstant: "name: CI",
		"AGENTS.md":              "# agents",
		"Claude.md":              "# claude",
		"GEMINI.md":              "# gemini",
	}
}

func basicOptions(dryRun bool) setup.Options {
	return setup.Options{
		Repository:         testCloneURLConstant,
		TemplateRepository: testTemplateRepositoryConstant,
		Preset:             presets.Preset{Name: "basic", Workflows: []string{testWorkflowNameConstant}},
		Variables:          map[string]string{testSecretNameConstant: "value"},
		DryRun:             dryRun,
		CreateBranches:     true,
		SyncDocuments:      true,
	}
}

func TestRunChainsEveryStep(testInstance *testing.T) {
	testCases := []struct {
		name   string
		dryRun bool
	}{
		{name: "apply", dryRun: false},
		{name: "dry_run", dryRun: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			dryRun := testCase.dryRun
			fixture := newServiceFixture(subtest, completeTemplateFiles(), zap.NewNop())

			result, runError := fixture.service.Run(context.Background(), basicOptions(dryRun))
			require.NoError(subtest, runError)

			require.Equal(subtest, testRepositoryConstant, result.Repository)
			require.Equal(subtest, dryRun, result.DryRun)
			require.True(subtest, result.Succeeded())
			require.Equal(subtest, 1, fixture.archives.calls)

			require.Len(subtest, fixture.files.calls, 2)
			require.Equal(subtest, contentsync.WorkflowCommitMessageTemplate, fixture.files.calls[0].CommitMessageTemplate)
			require.Equal(subtest, contentsync.DocumentationCommitMessageTemplate, fixture.files.calls[1].CommitMessageTemplate)
			for _, fileOptions := range fixture.files.calls {
				require.Equal(subtest, testRepositoryConstant, fileOptions.Repository)
				require.Equal(subtest, dryRun, fileOptions.DryRun)
			}
			require.Equal(subtest, []string{testWorkflowPathConstant}, result.Workflows.Written)
			require.NotNil(subtest, result.Documents)
			require.ElementsMatch(subtest, contentsync.DefaultDocumentationFiles, result.Documents.Written)

			require.Len(subtest, fixture.secrets.calls, 1)
			require.Equal(subtest, testRepositoryConstant, fixture.secrets.calls[0].Repository)
			require.Equal(subtest, dryRun, fixture.secrets.calls[0].DryRun)

			require.Len(subtest, fixture.branches.calls, 1)
			require.Equal(subtest, setup.DefaultBranches, fixture.branches.calls[0].Branches)
			require.Equal(subtest, dryRun, fixture.branches.calls[0].DryRun)
			require.NotNil(subtest, result.Branches)
		})
	}
}

func TestRunAbortsWhenWorkflowStepFails(testInstance *testing.T) {
	testCases := []struct {
		name          string
		archiveError  error
		workflowError error
		templateFiles map[string]string
		expectedError error
	}{
		{
			name:          "archive_unavailable",
			archiveError:  errTestArchive,
			templateFiles: completeTemplateFiles(),
			expectedError: errTestArchive,
		},
		{
			name:          "workflow_sync_error",
			workflowError: errTestContents,
			templateFiles: completeTemplateFiles(),
			expectedError: errTestContents,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			fixture := newServiceFixture(subtest, testCase.templateFiles, zap.NewNop())
			fixture.archives.err = testCase.archiveError
			fixture.files.workflowError = testCase.workflowError

			_, runError := fixture.service.Run(context.Background(), basicOptions(false))
			require.ErrorIs(subtest, runError, testCase.expectedError)
			require.Contains(subtest, runError.Error(), "workflow preset basic")
			require.Empty(subtest, fixture.secrets.calls)
			require.Empty(subtest, fixture.branches.calls)
		})
	}
}

func TestRunAbortsWhenPresetFileIsMissing(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, map[string]string{"AGENTS.md": "# agents"}, zap.NewNop())

	_, runError := fixture.service.Run(context.Background(), basicOptions(false))
	require.Error(testInstance, runError)
	require.Empty(testInstance, fixture.files.calls)
	require.Empty(testInstance, fixture.secrets.calls)
}

func TestRunRecordsBranchAndDocumentFailures(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	fixture := newServiceFixture(testInstance, map[string]string{testWorkflowPathConstant: "name: CI"}, zap.New(observedCore))
	fixture.branches.err = errTestBranches

	result, runError := fixture.service.Run(context.Background(), basicOptions(false))
	require.NoError(testInstance, runError)

	require.False(testInstance, result.Succeeded())
	require.Nil(testInstance, result.Branches)
	require.Nil(testInstance, result.Documents)
	require.Len(testInstance, result.StepFailures, 2)
	require.Equal(testInstance, "branches", result.StepFailures[0].Step)
	require.Equal(testInstance, errTestBranches.Error(), result.StepFailures[0].Message)
	require.Equal(testInstance, "docs", result.StepFailures[1].Step)
	require.Len(testInstance, fixture.secrets.calls, 1)
	require.Len(testInstance, fixture.files.calls, 1)
	require.Equal(testInstance, 2, observedLogs.FilterMessage(testStepFailedLogConstant).Len())
}

func TestRunSkipsDisabledSteps(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, completeTemplateFiles(), zap.NewNop())
	options := basicOptions(false)
	options.CreateBranches = false
	options.SyncDocuments = false
	options.Branches = []string{"ignored"}

	result, runError := fixture.service.Run(context.Background(), options)
	require.NoError(testInstance, runError)
	require.True(testInstance, result.Succeeded())
	require.Nil(testInstance, result.Branches)
	require.Nil(testInstance, result.Documents)
	require.Empty(testInstance, fixture.branches.calls)
	require.Len(testInstance, fixture.files.calls, 1)
}

func TestRunPassesConfiguredBranches(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, completeTemplateFiles(), zap.NewNop())
	options := basicOptions(false)
	options.Branches = []string{"main", "staging"}

	_, runError := fixture.service.Run(context.Background(), options)
	require.NoError(testInstance, runError)
	require.Len(testInstance, fixture.branches.calls, 1)
	require.Equal(testInstance, []string{"main", "staging"}, fixture.branches.calls[0].Branches)
}

func TestRunValidatesOptions(testInstance *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(*setup.Options)
		assertError func(*testing.T, error)
	}{
		{
			name:   "missing_repository",
			mutate: func(options *setup.Options) { options.Repository = " " },
			assertError: func(subtest *testing.T, runError error) {
				require.ErrorIs(subtest, runError, setup.ErrRepositoryRequired)
			},
		},
		{
			name:   "malformed_repository",
			mutate: func(options *setup.Options) { options.Repository = "example" },
			assertError: func(subtest *testing.T, runError error) {
				var inputError githubcli.InvalidInputError
				require.ErrorAs(subtest, runError, &inputError)
			},
		},
		{
			name:   "no_variables",
			mutate: func(options *setup.Options) { options.Variables = map[string]string{} },
			assertError: func(subtest *testing.T, runError error) {
				require.ErrorIs(subtest, runError, setup.ErrVariablesRequired)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			fixture := newServiceFixture(subtest, completeTemplateFiles(), zap.NewNop())
			options := basicOptions(false)
			testCase.mutate(&options)

			_, runError := fixture.service.Run(context.Background(), options)
			require.Error(subtest, runError)
			testCase.assertError(subtest, runError)
			require.Zero(subtest, fixture.archives.calls)
		})
	}
}

func TestResultSucceeded(testInstance *testing.T) {
	testCases := []struct {
		name     string
		result   setup.Result
		expected bool
	}{
		{name: "empty", result: setup.Result{}, expected: true},
		{name: "workflow_failure", result: setup.Result{Workflows: templatesync.SyncResult{Failed: []templatesync.FileFailure{{Path: testWorkflowPathConstant}}}}, expected: false},
		{name: "secret_failure", result: setup.Result{Secrets: secrets.Result{Failed: []secrets.Failure{{Name: testSecretNameConstant}}}}, expected: false},
		{name: "branch_failure", result: setup.Result{Branches: &branches.Result{Failed: []branches.Failure{{Branch: "develop"}}}}, expected: false},
		{name: "document_failure", result: setup.Result{Documents: &templatesync.SyncResult{Failed: []templatesync.FileFailure{{Path: "AGENTS.md"}}}}, expected: false},
		{name: "step_failure", result: setup.Result{StepFailures: []setup.StepFailure{{Step: "docs"}}}, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expected, testCase.result.Succeeded())
		})
	}
}

func TestNewServiceRequiresDependencies(testInstance *testing.T) {
	_, serviceError := setup.NewService(setup.ServiceDependencies{Archives: &stubArchiveFetcher{}})
	require.ErrorIs(testInstance, serviceError, setup.ErrDependenciesMissing)
}
