package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ModeKind selects which listing a run archives
type ModeKind string

const (
	ModeSaved   ModeKind = "saved"
	ModeUpvoted ModeKind = "upvoted"
	ModeUser    ModeKind = "user"
)

// Mode is a parsed --mode value
type Mode struct {
	Kind     ModeKind
	Username string
}

// usernamePattern is the character set reddit allows in account names
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseMode accepts "saved", "upvoted" or "user:<name>"
func ParseMode(s string) (Mode, error) {
	switch {
	case s == string(ModeSaved):
		return Mode{Kind: ModeSaved}, nil
	case s == string(ModeUpvoted):
		return Mode{Kind: ModeUpvoted}, nil
	case strings.HasPrefix(s, "user:"):
		name := strings.TrimSpace(strings.TrimPrefix(s, "user:"))
		if name == "" {
			return Mode{}, fmt.Errorf("invalid mode %q: missing username", s)
		}
		if !usernamePattern.MatchString(name) {
			return Mode{}, fmt.Errorf("invalid mode %q: username may only contain letters, digits, '_' and '-'", s)
		}
		return Mode{Kind: ModeUser, Username: name}, nil
	default:
		return Mode{}, fmt.Errorf("invalid mode %q: expected saved, upvoted or user:USERNAME", s)
	}
}

// String returns the flag form of the mode
func (m Mode) String() string {
	if m.Kind == ModeUser {
		return "user:" + m.Username
	}
	return string(m.Kind)
}

// BaseFilename is the canonical output page name for the mode
func (m Mode) BaseFilename() string {
	return m.DisplayName() + ".html"
}

// DisplayName is the name shown in page headings
func (m Mode) DisplayName() string {
	if m.Kind == ModeUser {
		return m.Username
	}
	return string(m.Kind)
}

// IncludesComments reports whether the mode archives comments
func (m Mode) IncludesComments() bool {
	return m.Kind != ModeUpvoted
}

// Post is a submission as yielded by the content source
type Post struct {
	ID           string
	Title        string
	URL          string
	Permalink    string
	Author       string // empty when deleted
	CreatedUTC   time.Time
	Score        int
	SelfTextHTML string
	Subreddit    string
	// PreviewURL is the source image of the post preview, when the source knows it
	PreviewURL string
}

// Comment is a comment with at most one level of replies attached
type Comment struct {
	ID         string
	Author     string
	BodyHTML   string
	Permalink  string
	CreatedUTC time.Time
	Score      int
	Replies    []Comment
}
