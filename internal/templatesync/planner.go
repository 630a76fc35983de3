package templatesync

import (
	"go.uber.org/zap"
)

const (
	archiveNotProvidedReasonConstant = "archive not provided"
	planCreatedMessageConstant       = "Planned template sync"
	plannedWritesFieldConstant       = "writes"
	plannedSkipsFieldConstant        = "skips"
	managedDirectoryFieldConstant    = "managed_directory"
)

// Planner classifies archive content against a destination inventory.
type Planner struct {
	logger *zap.Logger
}

// NewPlanner constructs a Planner.
func NewPlanner(logger *zap.Logger) Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Planner{logger: logger}
}

// Plan resolves the request against the archive and decides per path whether to write or skip.
// Managed content is resolved first, then named groups, then extra files; a path already planned
// is never planned twice. Any missing file aborts the whole plan with a MissingFileError listing
// every missing name.
func (planner Planner) Plan(archive *Archive, request Request, inventory Inventory) (Plan, error) {
	if archive == nil {
		return Plan{}, InvalidArchiveError{Reason: archiveNotProvidedReasonConstant}
	}
	if inventory == nil {
		inventory = emptyInventory{}
	}

	managedDirectory := request.managedDirectory()
	builder := planBuilder{inventory: inventory, plannedPaths: map[string]struct{}{}}
	var missingFiles []MissingFile

	if len(managedDirectory) > 0 {
		managedEntries := archive.EntriesUnder(managedDirectory)
		if len(managedEntries) == 0 {
			missingFiles = append(missingFiles, MissingFile{Name: managedDirectory})
		}
		for _, entry := range managedEntries {
			builder.add(entry, entry.Path, CategoryManaged, request.OverwriteManaged)
		}
	}

	for _, group := range request.Groups {
		for _, name := range group.Names {
			entry, found := resolveNamedFile(archive, group.CandidateDirectories, name)
			if !found {
				missingFiles = append(missingFiles, MissingFile{Name: name, SearchedDirectories: append([]string{}, group.CandidateDirectories...)})
				continue
			}
			targetPath, valid := destinationPath(group.DestinationDirectory, name)
			if !valid {
				missingFiles = append(missingFiles, MissingFile{Name: name, SearchedDirectories: append([]string{}, group.CandidateDirectories...)})
				continue
			}
			builder.add(entry, targetPath, CategoryManaged, request.OverwriteManaged)
		}
	}

	for _, extraFile := range request.ExtraFiles {
		extraPath, valid := normalizeExtraFile(extraFile)
		if !valid {
			missingFiles = append(missingFiles, MissingFile{Name: extraFile})
			continue
		}
		entry, found := archive.Lookup(extraPath)
		if !found {
			missingFiles = append(missingFiles, MissingFile{Name: extraPath})
			continue
		}
		builder.add(entry, extraPath, CategoryExtra, request.OverwriteExtras)
	}

	if len(missingFiles) > 0 {
		return Plan{}, MissingFileError{Files: missingFiles}
	}

	plan := Plan{Items: builder.items}
	if len(request.Groups) == 0 {
		plan.ManagedDirectory = managedDirectory
	}

	planner.logger.Debug(
		planCreatedMessageConstant,
		zap.String(managedDirectoryFieldConstant, managedDirectory),
		zap.Int(plannedWritesFieldConstant, len(plan.WritePaths())),
		zap.Int(plannedSkipsFieldConstant, len(plan.SkippedPaths())),
	)

	return plan, nil
}

func resolveNamedFile(archive *Archive, candidateDirectories []string, name string) (ArchiveEntry, bool) {
	for _, candidateDirectory := range candidateDirectories {
		candidatePath, valid := destinationPath(candidateDirectory, name)
		if !valid {
			continue
		}
		if entry, found := archive.Lookup(candidatePath); found {
			return entry, true
		}
	}
	return ArchiveEntry{}, false
}

type planBuilder struct {
	inventory    Inventory
	plannedPaths map[string]struct{}
	items        []PlanItem
}

func (builder *planBuilder) add(entry ArchiveEntry, targetPath string, category Category, overwrite bool) {
	if _, alreadyPlanned := builder.plannedPaths[targetPath]; alreadyPlanned {
		return
	}
	builder.plannedPaths[targetPath] = struct{}{}

	disposition := DispositionWrite
	if builder.inventory.Contains(targetPath) {
		disposition = DispositionSkipExisting
		if overwrite {
			disposition = DispositionWriteForced
		}
	}

	builder.items = append(builder.items, PlanItem{
		Path:        targetPath,
		SourcePath:  entry.Path,
		Content:     entry.Content,
		Mode:        entry.Mode,
		Category:    category,
		Disposition: disposition,
	})
}
