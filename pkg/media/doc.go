// Package media downloads the images and videos linked from posts.
//
// A Dispatcher holds an ordered routing table of strategies. The first entry
// whose predicate matches a post handles it and every handler reports the
// same Result: NoMedia, Fetched with the written file names, FetchFailed, or
// Inconclusive when the external extractor exited cleanly without leaving a
// file behind. Files land in the archive's media directory as
// {slug}_{id}.{ext}, or {slug}_{id}_{n}.{ext} for gallery items.
package media
