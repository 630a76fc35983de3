package templatesync

import (
	"path"
	"strings"
)

// Directories of the template repository layout.
const (
	ManagedDirectoryGitHub   = ".github"
	WorkflowsDirectory       = ".github/workflows"
	RemoteWorkflowsDirectory = ".github/workflows_remote"
	PromptsDirectory         = ".github/prompts"
	AgentsDirectory          = ".github/agents"
)

// NamedFileGroup requests explicit file names probed in CandidateDirectories in order.
// A resolved file is written to DestinationDirectory under its own name.
type NamedFileGroup struct {
	Names                []string
	CandidateDirectories []string
	DestinationDirectory string
}

// Request describes what to extract from an archive.
// ManagedDirectory selects every file below a directory; Groups select named files;
// ExtraFiles are repository-root relative paths outside the managed directory.
type Request struct {
	ManagedDirectory string
	Groups           []NamedFileGroup
	ExtraFiles       []string
	OverwriteManaged bool
	OverwriteExtras  bool
}

// WorkflowGroup builds the group for workflow files, probing the remote variant first when preferRemote is set.
// Files found in the remote variant still land in the standard workflows directory.
func WorkflowGroup(names []string, preferRemote bool) NamedFileGroup {
	candidateDirectories := []string{WorkflowsDirectory, RemoteWorkflowsDirectory}
	if preferRemote {
		candidateDirectories = []string{RemoteWorkflowsDirectory, WorkflowsDirectory}
	}
	return NamedFileGroup{
		Names:                append([]string{}, names...),
		CandidateDirectories: candidateDirectories,
		DestinationDirectory: WorkflowsDirectory,
	}
}

// DirectoryGroup builds a group whose files are read from and written to the same directory.
func DirectoryGroup(names []string, directory string) NamedFileGroup {
	return NamedFileGroup{
		Names:                append([]string{}, names...),
		CandidateDirectories: []string{directory},
		DestinationDirectory: directory,
	}
}

func (request Request) managedDirectory() string {
	cleanedDirectory, valid := cleanRelativePath(strings.Trim(request.ManagedDirectory, archivePathSeparatorConstant))
	if !valid {
		return ""
	}
	return cleanedDirectory
}

func normalizeExtraFile(extraFile string) (string, bool) {
	return cleanRelativePath(strings.TrimLeft(strings.TrimSpace(extraFile), archivePathSeparatorConstant))
}

func destinationPath(directory string, name string) (string, bool) {
	return cleanRelativePath(path.Join(directory, name))
}

// isUnder reports whether candidatePath lies strictly below directory.
func isUnder(candidatePath string, directory string) bool {
	if len(directory) == 0 {
		return false
	}
	return strings.HasPrefix(candidatePath, directory+archivePathSeparatorConstant)
}
