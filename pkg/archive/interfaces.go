package archive

import (
	"context"

	"redditsave/pkg/media"
	"redditsave/pkg/models"
)

// Source defines the upstream content operations an archive run needs
type Source interface {
	Posts(ctx context.Context, mode models.Mode) ([]models.Post, error)
	Comments(ctx context.Context, mode models.Mode) ([]models.Comment, error)
	PostComments(ctx context.Context, postID string) ([]models.Comment, error)
}

// MediaFetcher acquires the media a post links to
type MediaFetcher interface {
	Fetch(ctx context.Context, post *models.Post) media.Result
}

// PageRenderer produces fragments and pages from templates
type PageRenderer interface {
	PostFragment(post *models.Post) string
	CommentFragment(comment *models.Comment, op string) string
	AddMediaPreview(fragment string, files []string) string
	PostPage(post *models.Post, fragment string, comments []models.Comment) (string, error)
	ListingPage(mode models.Mode, posts, comments []string, page int, hasNext bool) string
}

// StatsRenderer renders the statistics page for a set of post fragments
type StatsRenderer interface {
	Render(title string, posts []string) (string, error)
}

// Progress receives per-item updates while new content is processed
type Progress interface {
	Start(label string, total int)
	Step(id string, outcome string)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(string, int)   {}
func (nopProgress) Step(string, string) {}
func (nopProgress) Finish()             {}
