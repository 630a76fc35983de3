// Package presets defines named bundles of workflow, prompt and agent files copied from the template repository.
package presets
