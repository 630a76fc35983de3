package templatesync

import (
	"errors"
	"fmt"
	"strings"
)

const (
	invalidArchiveTemplateConstant          = "template archive is empty or invalid: %s"
	invalidArchiveWithCauseTemplateConstant = "template archive is empty or invalid: %s: %s"
	missingFilesTemplateConstant            = "template archive is missing %s"
	missingFileSearchedTemplateConstant     = "%s (searched %s)"
	missingFileSeparatorConstant            = ", "
	remoteAPIErrorTemplateConstant          = "remote sync failed while %s: %s"
	localIOErrorTemplateConstant            = "unable to %s %s: %s"
	entryNotFoundMessageConstant            = "archive entry not found"
	fileSystemNotConfiguredMessageConstant  = "local extractor file system not configured"
	clientNotConfiguredMessageConstant      = "remote tree builder client not configured"
	cleanRequiresDirectoryMessageConstant   = "clean requires a managed directory request without named files"
)

var (
	// ErrEntryNotFound reports a lookup of a path the archive does not contain.
	ErrEntryNotFound = errors.New(entryNotFoundMessageConstant)
	// ErrFileSystemNotConfigured indicates a LocalExtractor without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrClientNotConfigured indicates a RemoteTreeBuilder without a git data client.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
	// ErrCleanRequiresManagedDirectory rejects clean runs for named-file requests.
	ErrCleanRequiresManagedDirectory = errors.New(cleanRequiresDirectoryMessageConstant)
)

// InvalidArchiveError reports a byte stream that is not a usable zip archive.
type InvalidArchiveError struct {
	Reason string
	Cause  error
}

// Error describes the archive problem.
func (archiveError InvalidArchiveError) Error() string {
	if archiveError.Cause == nil {
		return fmt.Sprintf(invalidArchiveTemplateConstant, archiveError.Reason)
	}
	return fmt.Sprintf(invalidArchiveWithCauseTemplateConstant, archiveError.Reason, archiveError.Cause)
}

// Unwrap exposes the underlying zip error.
func (archiveError InvalidArchiveError) Unwrap() error {
	return archiveError.Cause
}

// MissingFile names a requested file and the archive directories that were searched for it.
type MissingFile struct {
	Name                string
	SearchedDirectories []string
}

// MissingFileError lists every requested file the archive does not provide.
type MissingFileError struct {
	Files []MissingFile
}

// Error describes all missing files.
func (missingError MissingFileError) Error() string {
	descriptions := make([]string, 0, len(missingError.Files))
	for _, missingFile := range missingError.Files {
		if len(missingFile.SearchedDirectories) == 0 {
			descriptions = append(descriptions, missingFile.Name)
			continue
		}
		descriptions = append(descriptions, fmt.Sprintf(missingFileSearchedTemplateConstant, missingFile.Name, strings.Join(missingFile.SearchedDirectories, missingFileSeparatorConstant)))
	}
	return fmt.Sprintf(missingFilesTemplateConstant, strings.Join(descriptions, missingFileSeparatorConstant))
}

// Names returns the missing file names in request order.
func (missingError MissingFileError) Names() []string {
	names := make([]string, 0, len(missingError.Files))
	for _, missingFile := range missingError.Files {
		names = append(names, missingFile.Name)
	}
	return names
}

// RemoteAPIError reports a failed hosting API call while applying a plan remotely.
type RemoteAPIError struct {
	Step  string
	Cause error
}

// Error describes the failed step.
func (remoteError RemoteAPIError) Error() string {
	return fmt.Sprintf(remoteAPIErrorTemplateConstant, remoteError.Step, remoteError.Cause)
}

// Unwrap exposes the client error.
func (remoteError RemoteAPIError) Unwrap() error {
	return remoteError.Cause
}

// LocalIOError reports a file system failure on a specific path.
type LocalIOError struct {
	Operation string
	Path      string
	Cause     error
}

// Error describes the failed operation.
func (ioError LocalIOError) Error() string {
	return fmt.Sprintf(localIOErrorTemplateConstant, ioError.Operation, ioError.Path, ioError.Cause)
}

// Unwrap exposes the file system error.
func (ioError LocalIOError) Unwrap() error {
	return ioError.Cause
}
