// Package templatesync synchronizes files from a template repository archive into a destination.
//
// An Archive is opened from a zipball, a Planner classifies the requested files against the
// destination inventory, and either a LocalExtractor writes them to disk or a RemoteTreeBuilder
// commits them through the git data API in a single tree, commit and reference update.
package templatesync
