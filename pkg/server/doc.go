// Package server serves a generated archive over HTTP for local browsing.
package server
