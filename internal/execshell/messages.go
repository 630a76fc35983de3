package execshell

import (
	"fmt"
	"net/url"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	exitCodeSuffixTemplateConstant          = " (exit code %d%s)"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
	endpointPathSeparatorConstant           = "/"
	endpointQuerySeparatorConstant          = "?"
	repositoryPathPrefixConstant            = "repos"
	usersPathPrefixConstant                 = "users"
	httpMethodGetConstant                   = "GET"
	httpMethodPostConstant                  = "POST"
	httpMethodPutConstant                   = "PUT"
	httpMethodPatchConstant                 = "PATCH"
	methodFlagConstant                      = "-X"
	methodLongFlagConstant                  = "--method"
	githubAPISubcommandConstant             = "api"
	githubRepoSubcommandConstant            = "repo"
	githubViewSubcommandConstant            = "view"
	zipballSegmentConstant                  = "zipball"
	gitSegmentConstant                      = "git"
	refSegmentConstant                      = "ref"
	refsSegmentConstant                     = "refs"
	commitsSegmentConstant                  = "commits"
	treesSegmentConstant                    = "trees"
	blobsSegmentConstant                    = "blobs"
	contentsSegmentConstant                 = "contents"
	actionsSegmentConstant                  = "actions"
	secretsSegmentConstant                  = "secrets"
	publicKeySegmentConstant                = "public-key"
	pagesSegmentConstant                    = "pages"
	headsSegmentConstant                    = "heads"
	shortObjectIdentifierLengthConstant     = 7
)

type operationTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	repositoryMetadataTemplates = operationTemplates{
		start:            "Resolving metadata for %s",
		success:          "Resolved metadata for %s",
		failure:          "Failed to resolve metadata for %s",
		executionFailure: "Unable to resolve metadata for %s",
	}
	archiveDownloadTemplates = operationTemplates{
		start:            "Downloading archive of %s",
		success:          "Downloaded archive of %s",
		failure:          "Failed to download archive of %s",
		executionFailure: "Unable to download archive of %s",
	}
	referenceReadTemplates = operationTemplates{
		start:            "Reading %s",
		success:          "Read %s",
		failure:          "Failed to read %s",
		executionFailure: "Unable to read %s",
	}
	referenceCreateTemplates = operationTemplates{
		start:            "Creating branch in %s",
		success:          "Created branch in %s",
		failure:          "Failed to create branch in %s",
		executionFailure: "Unable to create branch in %s",
	}
	referenceUpdateTemplates = operationTemplates{
		start:            "Moving %s",
		success:          "Moved %s",
		failure:          "Failed to move %s",
		executionFailure: "Unable to move %s",
	}
	commitReadTemplates = operationTemplates{
		start:            "Reading commit %s",
		success:          "Read commit %s",
		failure:          "Failed to read commit %s",
		executionFailure: "Unable to read commit %s",
	}
	commitCreateTemplates = operationTemplates{
		start:            "Creating commit in %s",
		success:          "Created commit in %s",
		failure:          "Failed to create commit in %s",
		executionFailure: "Unable to create commit in %s",
	}
	treeReadTemplates = operationTemplates{
		start:            "Listing tree %s",
		success:          "Listed tree %s",
		failure:          "Failed to list tree %s",
		executionFailure: "Unable to list tree %s",
	}
	treeCreateTemplates = operationTemplates{
		start:            "Creating tree in %s",
		success:          "Created tree in %s",
		failure:          "Failed to create tree in %s",
		executionFailure: "Unable to create tree in %s",
	}
	blobCreateTemplates = operationTemplates{
		start:            "Uploading blob to %s",
		success:          "Uploaded blob to %s",
		failure:          "Failed to upload blob to %s",
		executionFailure: "Unable to upload blob to %s",
	}
	contentReadTemplates = operationTemplates{
		start:            "Checking %s",
		success:          "Checked %s",
		failure:          "Could not find %s",
		executionFailure: "Unable to check %s",
	}
	contentWriteTemplates = operationTemplates{
		start:            "Writing %s",
		success:          "Wrote %s",
		failure:          "Failed to write %s",
		executionFailure: "Unable to write %s",
	}
	publicKeyTemplates = operationTemplates{
		start:            "Fetching Actions public key for %s",
		success:          "Fetched Actions public key for %s",
		failure:          "Failed to fetch Actions public key for %s",
		executionFailure: "Unable to fetch Actions public key for %s",
	}
	secretWriteTemplates = operationTemplates{
		start:            "Updating secret %s",
		success:          "Updated secret %s",
		failure:          "Failed to update secret %s",
		executionFailure: "Unable to update secret %s",
	}
	pagesTemplates = operationTemplates{
		start:            "Configuring GitHub Pages for %s",
		success:          "Configured GitHub Pages for %s",
		failure:          "Failed to configure GitHub Pages for %s",
		executionFailure: "Unable to configure GitHub Pages for %s",
	}
	repositoryListTemplates = operationTemplates{
		start:            "Listing repositories of %s",
		success:          "Listed repositories of %s",
		failure:          "Failed to list repositories of %s",
		executionFailure: "Unable to list repositories of %s",
	}
)

// CommandMessageFormatter builds human-readable descriptions of shell commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that exited with a zero code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGitHub {
		templates, subject, described := formatter.describeGitHubCommand(command.Details.Arguments)
		if described {
			return formatter.renderTemplates(templates, subject, result, failure, stage)
		}
	}
	return formatter.describeGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubCommand(arguments []string) (operationTemplates, string, bool) {
	if len(arguments) >= 3 && arguments[0] == githubRepoSubcommandConstant && arguments[1] == githubViewSubcommandConstant {
		return repositoryMetadataTemplates, arguments[2], true
	}
	if len(arguments) < 2 || arguments[0] != githubAPISubcommandConstant {
		return operationTemplates{}, emptyStringConstant, false
	}

	method := formatter.resolveHTTPMethod(arguments)
	endpointPath := arguments[1]
	if queryIndex := strings.Index(endpointPath, endpointQuerySeparatorConstant); queryIndex >= 0 {
		endpointPath = endpointPath[:queryIndex]
	}
	segments := strings.Split(strings.Trim(endpointPath, endpointPathSeparatorConstant), endpointPathSeparatorConstant)

	if len(segments) >= 2 && segments[0] == usersPathPrefixConstant {
		return repositoryListTemplates, segments[1], true
	}
	if len(segments) < 4 || segments[0] != repositoryPathPrefixConstant {
		return operationTemplates{}, emptyStringConstant, false
	}

	repository := segments[1] + endpointPathSeparatorConstant + segments[2]
	remainder := segments[3:]

	switch remainder[0] {
	case zipballSegmentConstant:
		if len(remainder) > 1 {
			return archiveDownloadTemplates, fmt.Sprintf("%s@%s", repository, strings.Join(remainder[1:], endpointPathSeparatorConstant)), true
		}
		return archiveDownloadTemplates, repository, true
	case gitSegmentConstant:
		return formatter.describeGitDataCommand(method, repository, remainder[1:])
	case contentsSegmentConstant:
		contentPath := formatter.unescapePath(strings.Join(remainder[1:], endpointPathSeparatorConstant))
		subject := fmt.Sprintf("%s in %s", contentPath, repository)
		if method == httpMethodPutConstant {
			return contentWriteTemplates, subject, true
		}
		return contentReadTemplates, subject, true
	case actionsSegmentConstant:
		if len(remainder) >= 3 && remainder[1] == secretsSegmentConstant {
			if remainder[2] == publicKeySegmentConstant {
				return publicKeyTemplates, repository, true
			}
			return secretWriteTemplates, fmt.Sprintf("%s in %s", remainder[2], repository), true
		}
	case pagesSegmentConstant:
		return pagesTemplates, repository, true
	}

	return operationTemplates{}, emptyStringConstant, false
}

func (formatter CommandMessageFormatter) describeGitDataCommand(method string, repository string, segments []string) (operationTemplates, string, bool) {
	if len(segments) == 0 {
		return operationTemplates{}, emptyStringConstant, false
	}

	switch segments[0] {
	case refSegmentConstant, refsSegmentConstant:
		if method == httpMethodPostConstant {
			return referenceCreateTemplates, repository, true
		}
		branchName := strings.Join(segments[1:], endpointPathSeparatorConstant)
		branchName = strings.TrimPrefix(branchName, headsSegmentConstant+endpointPathSeparatorConstant)
		subject := fmt.Sprintf("branch %s of %s", formatter.unescapePath(branchName), repository)
		if method == httpMethodPatchConstant {
			return referenceUpdateTemplates, subject, true
		}
		return referenceReadTemplates, subject, true
	case commitsSegmentConstant:
		if method == httpMethodPostConstant {
			return commitCreateTemplates, repository, true
		}
		return commitReadTemplates, fmt.Sprintf("%s in %s", formatter.shortObjectIdentifier(segments), repository), true
	case treesSegmentConstant:
		if method == httpMethodPostConstant {
			return treeCreateTemplates, repository, true
		}
		return treeReadTemplates, fmt.Sprintf("%s in %s", formatter.shortObjectIdentifier(segments), repository), true
	case blobsSegmentConstant:
		return blobCreateTemplates, repository, true
	}

	return operationTemplates{}, emptyStringConstant, false
}

func (formatter CommandMessageFormatter) renderTemplates(templates operationTemplates, subject string, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject) + fmt.Sprintf(exitCodeSuffixTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, subject) + fmt.Sprintf(standardErrorSuffixTemplateConstant, formatter.failureText(failure))
	}
}

func (formatter CommandMessageFormatter) describeGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.failureText(failure))
	}
}

func (formatter CommandMessageFormatter) resolveHTTPMethod(arguments []string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == methodFlagConstant || arguments[argumentIndex] == methodLongFlagConstant {
			return strings.ToUpper(arguments[argumentIndex+1])
		}
	}
	return httpMethodGetConstant
}

func (formatter CommandMessageFormatter) shortObjectIdentifier(segments []string) string {
	if len(segments) < 2 || len(segments[1]) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	identifier := segments[1]
	if len(identifier) > shortObjectIdentifierLengthConstant {
		return identifier[:shortObjectIdentifierLengthConstant]
	}
	return identifier
}

func (formatter CommandMessageFormatter) unescapePath(escapedPath string) string {
	unescaped, unescapeError := url.PathUnescape(escapedPath)
	if unescapeError != nil {
		return escapedPath
	}
	return unescaped
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := emptyStringConstant
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, strings.Join(commandParts, commandArgumentsJoinSeparatorConstant), workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) failureText(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
