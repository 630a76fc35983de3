// Package contentsync writes individual template files into a repository through the contents API.
// Each file is handled independently: a failure is recorded for its path and the remaining files continue.
package contentsync
