package contentsync

import (
	"github.com/Sunwood-ai-labsII/gemini-actions-lab/internal/templatesync"
)

// Commit message templates for the supported file kinds.
const (
	DocumentationCommitMessageTemplate = "Sync documentation file: %s"
	WorkflowCommitMessageTemplate      = "Sync workflow file: %s"
)

// DefaultDocumentationFiles are the agent guidance documents kept at the template repository root.
var DefaultDocumentationFiles = []string{"AGENTS.md", "Claude.md", "GEMINI.md"}

// File is a repository path with the content to store there.
type File struct {
	Path    string
	Content []byte
}

// DocumentationFiles resolves repository-root documents from the archive.
// Every missing document is reported in a single MissingFileError.
func DocumentationFiles(archive *templatesync.Archive, names []string) ([]File, error) {
	if len(names) == 0 {
		names = DefaultDocumentationFiles
	}
	return resolveFiles(archive, templatesync.Request{ExtraFiles: names})
}

// GroupFiles resolves named file groups, such as a workflow preset, from the archive.
func GroupFiles(archive *templatesync.Archive, groups []templatesync.NamedFileGroup) ([]File, error) {
	return resolveFiles(archive, templatesync.Request{Groups: groups})
}

func resolveFiles(archive *templatesync.Archive, request templatesync.Request) ([]File, error) {
	plan, planError := templatesync.NewPlanner(nil).Plan(archive, request, nil)
	if planError != nil {
		return nil, planError
	}
	files := make([]File, 0, len(plan.Items))
	for _, item := range plan.Items {
		files = append(files, File{Path: item.Path, Content: item.Content})
	}
	return files, nil
}
