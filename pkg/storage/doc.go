// Package storage owns the archive location on disk.
//
// Every write goes to a temporary file in the destination directory and is
// renamed into place, so an interrupted run never leaves a half-written page
// or media file behind.
package storage
