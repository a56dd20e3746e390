// Package archive implements the incremental archive engine.
//
// A run reads every page previously written for a listing, recovers the
// rendered post and comment fragments and the IDs they carry, and fetches
// only content whose ID is not already present. New fragments are placed
// ahead of the existing ones and the whole corpus is written again, split
// into numbered pages when a page size is set, plus one unpaged page holding
// everything. Fragments recovered from disk are never re-rendered, so a run
// without new content reproduces the same pages byte for byte.
//
// Posts whose media cannot be fetched are added to a blacklist and skipped
// by later runs. A lock file in the archive location keeps two runs from
// rewriting the same pages at once.
package archive
