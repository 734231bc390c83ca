// Package cache stores model responses on disk so an unchanged prompt is not
// sent twice.
//
// Each entry lives in <dir>/<sha256(key)>.json and records the response and
// its creation time. Entries older than the TTL are treated as misses and
// deleted when read; [Cache.Prune] sweeps the rest. Writes go through a temp
// file and a rename.
//
// An optional hashicorp/golang-lru front keeps recent entries in memory for
// the lifetime of the process.
//
// The default directory is $XDG_CACHE_HOME/inspect or the OS equivalent.
package cache
