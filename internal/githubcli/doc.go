// Package githubcli wraps GitHub REST operations executed through the gh CLI.
//
// Every operation shells out via execshell, sending JSON payloads on stdin
// with `gh api --input -`. The client covers repository metadata, zipball
// downloads, git data objects (refs, commits, trees, blobs), the contents
// API, Actions secrets, Pages configuration and account repository listings.
package githubcli
