package templatesync

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

const (
	archivePathSeparatorConstant           = "/"
	parentDirectorySegmentConstant         = ".."
	currentDirectoryConstant               = "."
	archiveNotZipReasonConstant            = "not a zip archive"
	archiveEmptyReasonConstant             = "archive contains no files"
	archiveNoTopLevelReasonConstant        = "archive has no top-level directory"
	archiveEntryUnreadableTemplateConstant = "entry %s is unreadable"
	entryNotFoundTemplateConstant          = "%w: %s"
	anyExecuteBitsConstant                 = fs.FileMode(0o111)
)

// ArchiveEntry is a file of the archive, addressed relative to the top-level directory.
type ArchiveEntry struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
}

// Executable reports whether any execute permission bit is set.
func (entry ArchiveEntry) Executable() bool {
	return IsExecutable(entry.Mode)
}

// IsExecutable reports whether mode carries an owner, group or other execute bit.
func IsExecutable(mode fs.FileMode) bool {
	return mode.Perm()&anyExecuteBitsConstant != 0
}

// Archive is an opened repository snapshot rooted at a single top-level directory.
// Entries keep the zip central directory order, which is fixed for a given byte stream.
type Archive struct {
	prefix  string
	entries []ArchiveEntry
	index   map[string]int
}

// OpenArchive reads a zipball. The top-level prefix is taken from the first file entry;
// files outside that directory are ignored.
func OpenArchive(archiveBytes []byte) (*Archive, error) {
	zipReader, readerError := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if readerError != nil {
		return nil, InvalidArchiveError{Reason: archiveNotZipReasonConstant, Cause: readerError}
	}

	archive := &Archive{index: map[string]int{}}
	prefixResolved := false

	for _, zipFile := range zipReader.File {
		if isDirectoryEntry(zipFile) {
			continue
		}

		if !prefixResolved {
			separatorIndex := strings.Index(zipFile.Name, archivePathSeparatorConstant)
			if separatorIndex <= 0 {
				return nil, InvalidArchiveError{Reason: archiveNoTopLevelReasonConstant}
			}
			archive.prefix = zipFile.Name[:separatorIndex]
			prefixResolved = true
		}

		relativePath, underPrefix := archive.relativePath(zipFile.Name)
		if !underPrefix {
			continue
		}
		if _, duplicate := archive.index[relativePath]; duplicate {
			continue
		}

		content, contentError := readZipFile(zipFile)
		if contentError != nil {
			return nil, InvalidArchiveError{Reason: fmt.Sprintf(archiveEntryUnreadableTemplateConstant, zipFile.Name), Cause: contentError}
		}

		archive.index[relativePath] = len(archive.entries)
		archive.entries = append(archive.entries, ArchiveEntry{Path: relativePath, Content: content, Mode: zipFile.Mode()})
	}

	if len(archive.entries) == 0 {
		return nil, InvalidArchiveError{Reason: archiveEmptyReasonConstant}
	}

	return archive, nil
}

// Prefix returns the top-level directory name shared by the archive entries.
func (archive *Archive) Prefix() string {
	return archive.prefix
}

// Entries returns all file entries in archive order.
func (archive *Archive) Entries() []ArchiveEntry {
	return append([]ArchiveEntry{}, archive.entries...)
}

// Lookup finds the entry stored at the relative path.
func (archive *Archive) Lookup(relativePath string) (ArchiveEntry, bool) {
	cleanedPath, valid := cleanRelativePath(relativePath)
	if !valid {
		return ArchiveEntry{}, false
	}
	entryIndex, exists := archive.index[cleanedPath]
	if !exists {
		return ArchiveEntry{}, false
	}
	return archive.entries[entryIndex], true
}

// Resolve returns the content stored at the relative path or an error wrapping ErrEntryNotFound.
func (archive *Archive) Resolve(relativePath string) ([]byte, error) {
	entry, exists := archive.Lookup(relativePath)
	if !exists {
		return nil, fmt.Errorf(entryNotFoundTemplateConstant, ErrEntryNotFound, relativePath)
	}
	return entry.Content, nil
}

// EntriesUnder returns the files below the directory in archive order.
func (archive *Archive) EntriesUnder(directory string) []ArchiveEntry {
	cleanedDirectory, valid := cleanRelativePath(directory)
	if !valid {
		return nil
	}
	directoryPrefix := cleanedDirectory + archivePathSeparatorConstant

	var matchingEntries []ArchiveEntry
	for _, entry := range archive.entries {
		if strings.HasPrefix(entry.Path, directoryPrefix) {
			matchingEntries = append(matchingEntries, entry)
		}
	}
	return matchingEntries
}

func (archive *Archive) relativePath(entryName string) (string, bool) {
	prefixWithSeparator := archive.prefix + archivePathSeparatorConstant
	if !strings.HasPrefix(entryName, prefixWithSeparator) {
		return "", false
	}
	return cleanRelativePath(strings.TrimPrefix(entryName, prefixWithSeparator))
}

func isDirectoryEntry(zipFile *zip.File) bool {
	return strings.HasSuffix(zipFile.Name, archivePathSeparatorConstant) || zipFile.FileInfo().IsDir()
}

func readZipFile(zipFile *zip.File) ([]byte, error) {
	fileReader, openError := zipFile.Open()
	if openError != nil {
		return nil, openError
	}
	defer fileReader.Close()
	return io.ReadAll(fileReader)
}

// cleanRelativePath normalizes a slash separated path and rejects absolute or escaping paths.
func cleanRelativePath(rawPath string) (string, bool) {
	trimmedPath := strings.TrimSpace(rawPath)
	if len(trimmedPath) == 0 || strings.HasPrefix(trimmedPath, archivePathSeparatorConstant) {
		return "", false
	}
	cleanedPath := path.Clean(trimmedPath)
	if cleanedPath == currentDirectoryConstant {
		return "", false
	}
	for _, segment := range strings.Split(cleanedPath, archivePathSeparatorConstant) {
		if segment == parentDirectorySegmentConstant {
			return "", false
		}
	}
	return cleanedPath, true
}
