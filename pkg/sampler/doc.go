// Package sampler builds a preview page from a random selection of posts
// taken from one or more archive listings, rewriting media paths so the
// sample works from its own directory.
package sampler
