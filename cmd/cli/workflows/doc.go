// Package workflows exposes the workflows command group: local template extraction, remote template commits and preset sync.
package workflows
