// Package tags creates lightweight tags on the tip of a GitHub repository branch.
//
// Service resolves the branch tip through the git references API and points a new
// refs/tags reference at it; CommandBuilder exposes it as "tags latest".
package tags
