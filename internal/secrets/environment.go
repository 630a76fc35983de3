package secrets

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/subosito/gotenv"

	pathutils "github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/utils/path"
)

const (
	environmentFileErrorTemplateConstant = "unable to read environment file %s: %s"
	environmentAssignmentConstant        = "="
	environmentCommentPrefixConstant     = "#"
	environmentByteOrderMarkConstant     = "\ufeff"
	doubleQuoteConstant                  = `"`
	singleQuoteConstant                  = "'"
)

var environmentLineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// EnvironmentFileError reports an unreadable .env file.
type EnvironmentFileError struct {
	Path  string
	Cause error
}

// Error describes the file problem.
func (fileError EnvironmentFileError) Error() string {
	return fmt.Sprintf(environmentFileErrorTemplateConstant, fileError.Path, fileError.Cause)
}

// Unwrap exposes the underlying error.
func (fileError EnvironmentFileError) Unwrap() error {
	return fileError.Cause
}

// LoadEnvironmentFile reads NAME=value lines from a .env file, expanding a leading ~ to the home directory.
// Blank lines, # comments and lines without = are skipped. Values keep everything after the first =
// with one pair of matching surrounding quotes removed; no escapes or variable references are interpreted.
func LoadEnvironmentFile(filePath string, homeExpander *pathutils.HomeExpander) (map[string]string, error) {
	resolvedPath := strings.TrimSpace(filePath)
	if homeExpander != nil {
		resolvedPath = homeExpander.Expand(resolvedPath)
	}

	contents, readError := os.ReadFile(resolvedPath)
	if readError != nil {
		return nil, EnvironmentFileError{Path: resolvedPath, Cause: readError}
	}

	return ParseEnvironment(string(contents)), nil
}

// ParseEnvironment parses .env text line by line. Lines whose name is not a valid
// variable name are skipped rather than failing the whole file.
func ParseEnvironment(contents string) map[string]string {
	normalizedContents := environmentLineReplacer.Replace(strings.TrimPrefix(contents, environmentByteOrderMarkConstant))

	variables := map[string]string{}
	for _, rawLine := range strings.Split(normalizedContents, "\n") {
		line := strings.TrimSpace(rawLine)
		if len(line) == 0 || strings.HasPrefix(line, environmentCommentPrefixConstant) {
			continue
		}

		rawName, rawValue, hasAssignment := strings.Cut(line, environmentAssignmentConstant)
		if !hasAssignment {
			continue
		}

		name, valid := environmentVariableName(rawName)
		if !valid {
			continue
		}
		variables[name] = unquoteEnvironmentValue(strings.TrimSpace(rawValue))
	}
	return variables
}

// environmentVariableName lets gotenv validate the name and strip an export prefix.
func environmentVariableName(rawName string) (string, bool) {
	trimmedName := strings.TrimSpace(rawName)
	if len(trimmedName) == 0 {
		return "", false
	}

	parsed, parseError := gotenv.Unmarshal(trimmedName + environmentAssignmentConstant)
	if parseError != nil || len(parsed) != 1 {
		return "", false
	}
	for name := range parsed {
		return name, true
	}
	return "", false
}

func unquoteEnvironmentValue(value string) string {
	if len(value) < 2 {
		return value
	}
	for _, quote := range []string{doubleQuoteConstant, singleQuoteConstant} {
		if strings.HasPrefix(value, quote) && strings.HasSuffix(value, quote) {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// Filter keeps variables named in include (all when include is empty) and drops those named in exclude.
func Filter(variables map[string]string, include []string, exclude []string) map[string]string {
	includeSet := nameSet(include)
	excludeSet := nameSet(exclude)

	filtered := make(map[string]string, len(variables))
	for name, value := range variables {
		if len(includeSet) > 0 {
			if _, included := includeSet[name]; !included {
				continue
			}
		}
		if _, excluded := excludeSet[name]; excluded {
			continue
		}
		filtered[name] = value
	}
	return filtered
}

// SortedNames returns the variable names in lexical order.
func SortedNames(variables map[string]string) []string {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func nameSet(names []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) > 0 {
			set[trimmedName] = struct{}{}
		}
	}
	return set
}
