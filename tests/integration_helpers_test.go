package tests

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

const structuredLogLinePrefixConstant = "{"

// runIntegrationCommand runs go with arguments from repositoryRoot and fails the test on a non-zero exit.
// extraEnvironment entries are KEY=VALUE assignments appended to the inherited environment.
func runIntegrationCommand(testInstance *testing.T, repositoryRoot string, timeout time.Duration, arguments []string, extraEnvironment ...string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", arguments...)
	command.Dir = repositoryRoot
	command.Env = append(os.Environ(), extraEnvironment...)

	outputBytes, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("go %s failed: %v\n%s", strings.Join(arguments, " "), runError, outputBytes)
	}
	return string(outputBytes)
}

// filterStructuredOutput drops blank lines and JSON log lines, keeping report output.
func filterStructuredOutput(rawOutput string) string {
	var reportLines []string
	for _, line := range strings.Split(rawOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, structuredLogLinePrefixConstant) {
			continue
		}
		reportLines = append(reportLines, line)
	}
	if len(reportLines) == 0 {
		return ""
	}
	return strings.Join(reportLines, "\n") + "\n"
}
