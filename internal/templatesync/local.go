package templatesync

import (
	"errors"
	"io/fs"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

const (
	removeOperationConstant          = "remove"
	createDirectoryOperationConstant = "create directory"
	writeOperationConstant           = "write"
	executableFilePermissionConstant = fs.FileMode(0o755)
	regularFilePermissionConstant    = fs.FileMode(0o644)
	directoryPermissionConstant      = fs.FileMode(0o755)
	localCleanMessageConstant        = "Removed managed directory before extraction"
	localWriteMessageConstant        = "Wrote template file"
	localSkipMessageConstant         = "Kept existing file"
	pathFieldConstant                = "path"
)

// LocalExtractor applies plans to a destination directory.
// Invocations against one destination must be serialized by the caller.
type LocalExtractor struct {
	fileSystem billy.Filesystem
	logger     *zap.Logger
}

// NewLocalExtractor constructs an extractor writing into the file system root.
func NewLocalExtractor(fileSystem billy.Filesystem, logger *zap.Logger) (*LocalExtractor, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalExtractor{fileSystem: fileSystem, logger: logger}, nil
}

// Inventory exposes the destination as a planning inventory.
func (extractor *LocalExtractor) Inventory() Inventory {
	return NewFileSystemInventory(extractor.fileSystem)
}

// Apply writes the plan. With clean the plan's managed directory is removed first.
// The first file system error aborts extraction and is returned as a LocalIOError.
func (extractor *LocalExtractor) Apply(plan Plan, clean bool) (SyncResult, error) {
	if clean {
		if len(plan.ManagedDirectory) == 0 {
			return SyncResult{}, ErrCleanRequiresManagedDirectory
		}
		if removeError := util.RemoveAll(extractor.fileSystem, plan.ManagedDirectory); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
			return SyncResult{}, LocalIOError{Operation: removeOperationConstant, Path: plan.ManagedDirectory, Cause: removeError}
		}
		extractor.logger.Debug(localCleanMessageConstant, zap.String(pathFieldConstant, plan.ManagedDirectory))
	}

	var result SyncResult
	for _, item := range plan.Items {
		if !item.Writes() {
			extractor.logger.Debug(localSkipMessageConstant, zap.String(pathFieldConstant, item.Path))
			result.RecordSkipped(item.Path)
			continue
		}

		parentDirectory := path.Dir(item.Path)
		if parentDirectory != currentDirectoryConstant {
			if directoryError := extractor.fileSystem.MkdirAll(parentDirectory, directoryPermissionConstant); directoryError != nil {
				return result, LocalIOError{Operation: createDirectoryOperationConstant, Path: parentDirectory, Cause: directoryError}
			}
		}

		if writeError := util.WriteFile(extractor.fileSystem, item.Path, item.Content, localFilePermission(item)); writeError != nil {
			return result, LocalIOError{Operation: writeOperationConstant, Path: item.Path, Cause: writeError}
		}

		extractor.logger.Debug(localWriteMessageConstant, zap.String(pathFieldConstant, item.Path))
		result.RecordWritten(item.Path)
	}

	return result, nil
}

func localFilePermission(item PlanItem) fs.FileMode {
	if IsExecutable(item.Mode) {
		return executableFilePermissionConstant
	}
	return regularFilePermissionConstant
}
