// Package history remembers the repositories the CLI has operated on and suggests
// repositories for interactive lookups.
//
// Store keeps a bounded, most-recent-first JSON list on disk. RemoteLookup adds
// recently active repositories of configured GitHub accounts, cached for a short TTL.
package history
