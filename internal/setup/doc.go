// Package setup prepares a GitHub repository from the template in one run.
//
// Service chains the workflow preset sync, the Actions secrets upload, the
// creation of the standard branches and the documentation sync against a single
// template archive. CommandBuilder exposes it as the top-level "setup" command.
package setup
