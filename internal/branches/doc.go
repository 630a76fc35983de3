// Package branches creates missing branches in a GitHub repository from a base branch tip.
//
// Service checks each requested branch through the git references API and creates
// the ones that do not exist yet; CommandBuilder exposes it as "branches sync".
package branches
