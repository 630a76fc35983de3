package ui

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/execshell"
)

const (
	stepMessageTemplateConstant = "[%d] %s"
	elapsedFieldConstant        = "elapsed"
)

// Clock returns the current time.
type Clock func() time.Time

// CommandProgressLogger narrates gh invocations as numbered steps for console output.
// Starts are logged at debug level; outcomes at info, warn or error with the elapsed time.
type CommandProgressLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
	clock     Clock

	mutex       sync.Mutex
	stepCount   int
	stepStarted time.Time
}

// NewCommandProgressLogger constructs a progress logger backed by the provided zap logger.
func NewCommandProgressLogger(logger *zap.Logger) *CommandProgressLogger {
	return NewCommandProgressLoggerWithClock(logger, time.Now)
}

// NewCommandProgressLoggerWithClock constructs a progress logger with an injected clock.
func NewCommandProgressLoggerWithClock(logger *zap.Logger, clock Clock) *CommandProgressLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &CommandProgressLogger{logger: logger, clock: clock}
}

// CommandStarted implements execshell.CommandEventObserver.
func (progressLogger *CommandProgressLogger) CommandStarted(command execshell.ShellCommand) {
	if progressLogger == nil {
		return
	}
	progressLogger.mutex.Lock()
	progressLogger.stepCount++
	progressLogger.stepStarted = progressLogger.clock()
	step := progressLogger.stepCount
	progressLogger.mutex.Unlock()

	progressLogger.logger.Debug(fmt.Sprintf(stepMessageTemplateConstant, step, progressLogger.formatter.BuildStartedMessage(command)))
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exits are reported as warnings.
func (progressLogger *CommandProgressLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if progressLogger == nil {
		return
	}
	step, elapsed := progressLogger.finishStep()
	if result.ExitCode == 0 {
		progressLogger.logger.Info(fmt.Sprintf(stepMessageTemplateConstant, step, progressLogger.formatter.BuildSuccessMessage(command)), zap.Duration(elapsedFieldConstant, elapsed))
		return
	}
	progressLogger.logger.Warn(fmt.Sprintf(stepMessageTemplateConstant, step, progressLogger.formatter.BuildFailureMessage(command, result)), zap.Duration(elapsedFieldConstant, elapsed))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (progressLogger *CommandProgressLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if progressLogger == nil {
		return
	}
	step, elapsed := progressLogger.finishStep()
	progressLogger.logger.Error(fmt.Sprintf(stepMessageTemplateConstant, step, progressLogger.formatter.BuildExecutionFailureMessage(command, failure)), zap.Duration(elapsedFieldConstant, elapsed))
}

func (progressLogger *CommandProgressLogger) finishStep() (int, time.Duration) {
	progressLogger.mutex.Lock()
	defer progressLogger.mutex.Unlock()
	if progressLogger.stepStarted.IsZero() {
		return progressLogger.stepCount, 0
	}
	return progressLogger.stepCount, progressLogger.clock().Sub(progressLogger.stepStarted)
}
