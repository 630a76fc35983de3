package templatesync

import "io/fs"

// Disposition states what applying a plan does with an item.
type Disposition string

// Dispositions of plan items.
const (
	DispositionWrite        Disposition = Disposition("write")
	DispositionSkipExisting Disposition = Disposition("skip-existing")
	DispositionWriteForced  Disposition = Disposition("write-forced")
)

// Category separates managed files from extra repository files; each has its own overwrite flag.
type Category string

// Categories of plan items.
const (
	CategoryManaged Category = Category("managed")
	CategoryExtra   Category = Category("extra")
)

// PlanItem is a destination path with the archive content planned for it.
type PlanItem struct {
	Path        string
	SourcePath  string
	Content     []byte
	Mode        fs.FileMode
	Category    Category
	Disposition Disposition
}

// Writes reports whether applying the item writes content.
func (item PlanItem) Writes() bool {
	return item.Disposition == DispositionWrite || item.Disposition == DispositionWriteForced
}

// Plan is an ordered set of items. ManagedDirectory is set only for whole-directory requests
// and names the subtree that clean runs may purge.
type Plan struct {
	Items            []PlanItem
	ManagedDirectory string
}

// WritePaths returns the destination paths that will be written.
func (plan Plan) WritePaths() []string {
	var writePaths []string
	for _, item := range plan.Items {
		if item.Writes() {
			writePaths = append(writePaths, item.Path)
		}
	}
	return writePaths
}

// SkippedPaths returns the destination paths left untouched.
func (plan Plan) SkippedPaths() []string {
	var skippedPaths []string
	for _, item := range plan.Items {
		if !item.Writes() {
			skippedPaths = append(skippedPaths, item.Path)
		}
	}
	return skippedPaths
}
