// Package stats renders a static statistics page for an archive listing
// from its post fragments: a subreddit breakdown and posts per year.
package stats
