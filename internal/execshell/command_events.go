package execshell

// CommandEventObserver is notified as the ShellExecutor runs each command.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	// CommandCompleted receives every result, including non-zero exits.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed is called instead of CommandCompleted when the process could not run.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type discardingObserver struct{}

func (discardingObserver) CommandStarted(ShellCommand) {}

func (discardingObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (discardingObserver) CommandExecutionFailed(ShellCommand, error) {}
