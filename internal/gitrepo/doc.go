// Package gitrepo reads repository references given on the command line,
// accepting both owner/name identifiers and the clone URLs users copy from a
// hosting provider.
package gitrepo
