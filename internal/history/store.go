package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const (
	defaultStoreRelativePathConstant       = "gemini-actions-lab/history.json"
	storePathRequiredMessageConstant       = "history file path must be provided"
	fileSystemNotConfiguredMessageConstant = "history filesystem not configured"
	documentIndentConstant                 = "  "
	currentDirectoryConstant               = "."
)

// DefaultStoreLimit bounds the number of remembered repositories.
const DefaultStoreLimit = 50

// DefaultRecentLimit bounds the number of repositories returned by a lookup.
const DefaultRecentLimit = 25

const (
	historyFilePermissionsConstant fs.FileMode = 0o644
	directoryPermissionsConstant   fs.FileMode = 0o755
)

var (
	// ErrStorePathRequired indicates the history file path was empty.
	ErrStorePathRequired = errors.New(storePathRequiredMessageConstant)
	// ErrFileSystemNotConfigured indicates the store was built without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
)

type historyDocument struct {
	Repositories []string `json:"repos"`
}

// Store persists recently used owner/name identifiers, most recent first.
type Store struct {
	fileSystem billy.Filesystem
	filePath   string
	limit      int
}

// DefaultStorePath returns the history file location under the XDG data directory, creating its parent directory.
func DefaultStorePath() (string, error) {
	return xdg.DataFile(defaultStoreRelativePathConstant)
}

// NewStore constructs a Store reading and writing filePath on fileSystem. A non-positive limit selects DefaultStoreLimit.
func NewStore(fileSystem billy.Filesystem, filePath string, limit int) (*Store, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathRequired
	}
	if limit <= 0 {
		limit = DefaultStoreLimit
	}
	return &Store{fileSystem: fileSystem, filePath: trimmedPath, limit: limit}, nil
}

// OpenStore constructs a Store backed by the operating system file at filePath.
func OpenStore(filePath string, limit int) (*Store, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathRequired
	}
	return NewStore(osfs.New(filepath.Dir(trimmedPath)), filepath.Base(trimmedPath), limit)
}

// Remember moves repository to the front of the history, dropping case-insensitive duplicates
// and entries beyond the store limit. Blank identifiers are ignored.
func (store *Store) Remember(repository string) error {
	normalized := strings.TrimSpace(repository)
	if len(normalized) == 0 {
		return nil
	}

	repositories, loadError := store.load()
	if loadError != nil {
		return loadError
	}

	updated := make([]string, 0, len(repositories)+1)
	updated = append(updated, normalized)
	for _, existing := range repositories {
		if strings.EqualFold(existing, normalized) {
			continue
		}
		updated = append(updated, existing)
	}
	if len(updated) > store.limit {
		updated = updated[:store.limit]
	}

	return store.save(updated)
}

// Recent returns remembered repositories containing query (case-insensitive), most recent first.
// A non-positive limit selects DefaultRecentLimit.
func (store *Store) Recent(query string, limit int) ([]string, error) {
	repositories, loadError := store.load()
	if loadError != nil {
		return nil, loadError
	}
	return MergeCandidates(query, limit, repositories), nil
}

// MergeCandidates concatenates candidate lists in order, keeping the first spelling of each
// repository, dropping entries that do not contain query and stopping at limit.
func MergeCandidates(query string, limit int, candidateLists ...[]string) []string {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	loweredQuery := strings.ToLower(strings.TrimSpace(query))

	merged := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, candidates := range candidateLists {
		for _, candidate := range candidates {
			trimmedCandidate := strings.TrimSpace(candidate)
			if len(trimmedCandidate) == 0 {
				continue
			}
			key := strings.ToLower(trimmedCandidate)
			if len(loweredQuery) > 0 && !strings.Contains(key, loweredQuery) {
				continue
			}
			if _, duplicate := seen[key]; duplicate {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, trimmedCandidate)
			if len(merged) >= limit {
				return merged
			}
		}
	}
	return merged
}

// load reads the history. A missing or unparseable file is an empty history.
func (store *Store) load() ([]string, error) {
	content, readError := util.ReadFile(store.fileSystem, store.filePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, readError
	}

	var document historyDocument
	if decodeError := json.Unmarshal(content, &document); decodeError != nil {
		return nil, nil
	}
	return document.Repositories, nil
}

func (store *Store) save(repositories []string) error {
	content, encodeError := json.MarshalIndent(historyDocument{Repositories: repositories}, "", documentIndentConstant)
	if encodeError != nil {
		return encodeError
	}

	if parentDirectory := path.Dir(filepath.ToSlash(store.filePath)); parentDirectory != currentDirectoryConstant {
		if mkdirError := store.fileSystem.MkdirAll(parentDirectory, directoryPermissionsConstant); mkdirError != nil {
			return mkdirError
		}
	}
	return util.WriteFile(store.fileSystem, store.filePath, content, historyFilePermissionsConstant)
}
