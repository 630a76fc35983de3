// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and optional
// CommandEventObserver notifications. OSCommandRunner executes processes via
// os/exec. CommandMessageFormatter renders GitHub CLI invocations, mostly
// `gh api` calls against the git data, contents, secrets and pages endpoints,
// as readable progress messages.
package execshell
