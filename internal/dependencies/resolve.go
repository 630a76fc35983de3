package dependencies

import (
	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/execshell"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubauth"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/ui"
)

// ResolveGitHubExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging attaches a console observer that narrates each gh invocation.
func ResolveGitHubExecutor(existing githubcli.GitHubCommandExecutor, logger *zap.Logger, humanReadableLogging bool) (githubcli.GitHubCommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	if humanReadableLogging {
		return shellExecutor.WithObserver(ui.NewCommandProgressLogger(logger)), nil
	}
	return shellExecutor, nil
}

// ResolveGitHubClient builds an authenticated GitHub client on top of the executor.
// The token comes from GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN; without one gh uses its stored login.
func ResolveGitHubClient(executor githubcli.GitHubCommandExecutor, githubHost string) (*githubcli.Client, error) {
	client, clientError := githubcli.NewClient(executor)
	if clientError != nil {
		return nil, clientError
	}
	token, _ := githubauth.ResolveToken()
	return client.WithAuthentication(token, githubHost), nil
}
