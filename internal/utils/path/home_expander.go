// Package pathutils resolves user-supplied file paths such as .env files,
// preset catalogs and the history store location.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant         = "~"
	environmentReferenceConstant = "$"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander expands a leading ~ and environment variable references in paths.
// The home directory is looked up once, on first use.
type HomeExpander struct {
	resolveHome func() (string, error)
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom home directory provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{resolveHome: sync.OnceValues(provider)}
}

// Expand returns candidatePath with $VAR references and a leading ~ or ~/ resolved.
// Paths such as ~other are returned unchanged, as is everything when the home directory is unknown.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || len(candidatePath) == 0 {
		return candidatePath
	}

	expandedPath := candidatePath
	if strings.Contains(expandedPath, environmentReferenceConstant) {
		expandedPath = os.ExpandEnv(expandedPath)
	}
	if !strings.HasPrefix(expandedPath, homeShortcutConstant) {
		return expandedPath
	}

	remainder := strings.TrimPrefix(expandedPath, homeShortcutConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return expandedPath
	}

	homeDirectory, homeError := expander.resolveHome()
	if homeError != nil || len(homeDirectory) == 0 {
		return expandedPath
	}
	return filepath.Join(homeDirectory, remainder)
}
