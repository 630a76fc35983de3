// Package githubauth locates the GitHub token handed to the gh CLI.
package githubauth

import (
	"os"
	"strings"
)

// Environment variables consulted for a token, in order of preference.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

// EnvironmentLookup reports the value of an environment variable and whether it is set.
type EnvironmentLookup func(key string) (string, bool)

var tokenEnvironmentVariables = [...]string{EnvGitHubCLIToken, EnvGitHubToken, EnvGitHubAPIToken}

// ResolveToken returns the first non-blank token in the process environment.
func ResolveToken() (string, bool) {
	return ResolveTokenFrom(os.LookupEnv)
}

// ResolveTokenFrom returns the first non-blank token reported by lookup.
func ResolveTokenFrom(lookup EnvironmentLookup) (string, bool) {
	if lookup == nil {
		return "", false
	}
	for _, variableName := range tokenEnvironmentVariables {
		value, present := lookup(variableName)
		if !present {
			continue
		}
		if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
			return trimmedValue, true
		}
	}
	return "", false
}
