package templatesync

import (
	"errors"
	"io/fs"

	"github.com/go-git/go-billy/v5"

	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/githubcli"
)

// Inventory reports which destination paths already exist.
type Inventory interface {
	Contains(relativePath string) bool
}

// FileSystemInventory answers existence queries against a billy file system.
type FileSystemInventory struct {
	fileSystem billy.Filesystem
}

// NewFileSystemInventory wraps the file system rooted at the destination.
func NewFileSystemInventory(fileSystem billy.Filesystem) FileSystemInventory {
	return FileSystemInventory{fileSystem: fileSystem}
}

// Contains reports whether the path exists on disk.
func (inventory FileSystemInventory) Contains(relativePath string) bool {
	if inventory.fileSystem == nil {
		return false
	}
	_, statError := inventory.fileSystem.Lstat(relativePath)
	if statError == nil {
		return true
	}
	return !errors.Is(statError, fs.ErrNotExist)
}

// TreeInventory is the flat listing of a remote git tree. Only non-tree entries are tracked.
type TreeInventory struct {
	entries map[string]githubcli.TreeEntry
	order   []string
}

// NewTreeInventory indexes the entries of a recursive tree listing.
func NewTreeInventory(treeEntries []githubcli.TreeEntry) TreeInventory {
	inventory := TreeInventory{entries: map[string]githubcli.TreeEntry{}}
	for _, treeEntry := range treeEntries {
		if treeEntry.Type == githubcli.TreeEntryTypeTree {
			continue
		}
		if _, duplicate := inventory.entries[treeEntry.Path]; !duplicate {
			inventory.order = append(inventory.order, treeEntry.Path)
		}
		inventory.entries[treeEntry.Path] = treeEntry
	}
	return inventory
}

// Contains reports whether the tree holds a file at the path.
func (inventory TreeInventory) Contains(relativePath string) bool {
	_, exists := inventory.entries[relativePath]
	return exists
}

// Entry returns the tree entry stored at the path.
func (inventory TreeInventory) Entry(relativePath string) (githubcli.TreeEntry, bool) {
	treeEntry, exists := inventory.entries[relativePath]
	return treeEntry, exists
}

// EntriesUnder returns the files below the directory in listing order.
func (inventory TreeInventory) EntriesUnder(directory string) []githubcli.TreeEntry {
	var matchingEntries []githubcli.TreeEntry
	for _, entryPath := range inventory.order {
		if isUnder(entryPath, directory) {
			matchingEntries = append(matchingEntries, inventory.entries[entryPath])
		}
	}
	return matchingEntries
}

// Len returns the number of tracked files.
func (inventory TreeInventory) Len() int {
	return len(inventory.order)
}

type directoryMaskedInventory struct {
	inventory Inventory
	directory string
}

// WithoutDirectory hides every path below directory, so those paths plan as fresh writes.
func WithoutDirectory(inventory Inventory, directory string) Inventory {
	if inventory == nil {
		return emptyInventory{}
	}
	return directoryMaskedInventory{inventory: inventory, directory: directory}
}

func (masked directoryMaskedInventory) Contains(relativePath string) bool {
	if isUnder(relativePath, masked.directory) {
		return false
	}
	return masked.inventory.Contains(relativePath)
}

type emptyInventory struct{}

func (emptyInventory) Contains(string) bool {
	return false
}
