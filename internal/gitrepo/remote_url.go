package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	referenceParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidReferenceMessageConstant     = "expected owner/name or a repository url"
	remoteSegmentCountConstant          = 2
)

// RepositoryReference identifies a hosted repository. Host is empty for bare owner/name input.
type RepositoryReference struct {
	Host  string
	Owner string
	Name  string
}

// FullName returns the owner/name form used by the GitHub API.
func (reference RepositoryReference) FullName() string {
	return reference.Owner + pathSeparatorConstant + reference.Name
}

// ReferenceParseError indicates the input could not be read as a repository reference.
type ReferenceParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError ReferenceParseError) Error() string {
	return fmt.Sprintf(referenceParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRepositoryReference accepts owner/name, an https clone URL, an scp-style
// git@host:owner/name remote, or an ssh:// URL.
func ParseRepositoryReference(input string) (RepositoryReference, error) {
	trimmedInput := strings.TrimSpace(input)
	if len(trimmedInput) == 0 {
		return RepositoryReference{}, ReferenceParseError{Input: input, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedInput, httpsProtocolPrefixConstant):
		return parseHostedPath(input, strings.TrimPrefix(trimmedInput, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedInput, httpProtocolPrefixConstant):
		return parseHostedPath(input, strings.TrimPrefix(trimmedInput, httpProtocolPrefixConstant))
	case strings.HasPrefix(trimmedInput, sshProtocolPrefixConstant):
		return parseHostedPath(input, stripUser(strings.TrimPrefix(trimmedInput, sshProtocolPrefixConstant)))
	case strings.Contains(trimmedInput, sshUserDelimiterConstant):
		return parseScpRemote(input, trimmedInput)
	default:
		owner, name, splitError := splitOwnerAndName(input, trimmedInput)
		if splitError != nil {
			return RepositoryReference{}, splitError
		}
		return RepositoryReference{Owner: owner, Name: name}, nil
	}
}

func parseScpRemote(input string, remote string) (RepositoryReference, error) {
	hostAndPath := stripUser(remote)
	delimiterIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if delimiterIndex <= 0 {
		return RepositoryReference{}, ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}
	owner, name, splitError := splitOwnerAndName(input, hostAndPath[delimiterIndex+1:])
	if splitError != nil {
		return RepositoryReference{}, splitError
	}
	return RepositoryReference{Host: hostAndPath[:delimiterIndex], Owner: owner, Name: name}, nil
}

func parseHostedPath(input string, hostAndPath string) (RepositoryReference, error) {
	separatorIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	if separatorIndex <= 0 {
		return RepositoryReference{}, ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}
	owner, name, splitError := splitOwnerAndName(input, hostAndPath[separatorIndex+1:])
	if splitError != nil {
		return RepositoryReference{}, splitError
	}
	return RepositoryReference{Host: hostAndPath[:separatorIndex], Owner: owner, Name: name}, nil
}

func stripUser(remote string) string {
	userIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userIndex == -1 {
		return remote
	}
	return remote[userIndex+1:]
}

func splitOwnerAndName(input string, path string) (string, string, error) {
	trimmedPath := strings.Trim(path, pathSeparatorConstant)
	segments := strings.Split(trimmedPath, pathSeparatorConstant)
	if len(segments) != remoteSegmentCountConstant {
		return "", "", ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}
	owner := strings.TrimSpace(segments[0])
	name := strings.TrimSpace(strings.TrimSuffix(segments[1], gitSuffixConstant))
	if len(owner) == 0 || len(name) == 0 {
		return "", "", ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}
	return owner, name, nil
}
