// Package checkpoint persists a record of the most recent archive run per
// output page set, under <location>/.redditsave/. The status command reads it
// back.
package checkpoint
