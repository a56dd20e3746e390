package reddit

import (
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"

	"redditsave/pkg/models"
	"redditsave/pkg/render"
)

const deletedAuthor = "[deleted]"

func author(name string) string {
	if name == deletedAuthor {
		return ""
	}
	return name
}

func created(ts *reddit.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.Time.UTC()
}

func convertPost(p *reddit.Post) (models.Post, error) {
	body, err := render.MarkdownToHTML(p.Body)
	if err != nil {
		return models.Post{}, fmt.Errorf("post %s: %w", p.ID, err)
	}

	return models.Post{
		ID:           p.ID,
		Title:        p.Title,
		URL:          p.URL,
		Permalink:    p.Permalink,
		Author:       author(p.Author),
		CreatedUTC:   created(p.Created),
		Score:        p.Score,
		SelfTextHTML: body,
		Subreddit:    p.SubredditName,
	}, nil
}

// convertComments maps comments keeping depth levels of replies
func convertComments(raw []*reddit.Comment, depth int) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, len(raw))
	for _, c := range raw {
		if c == nil {
			continue
		}
		comment, err := convertComment(c, depth)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func convertComment(c *reddit.Comment, depth int) (models.Comment, error) {
	body, err := render.MarkdownToHTML(c.Body)
	if err != nil {
		return models.Comment{}, fmt.Errorf("comment %s: %w", c.ID, err)
	}

	comment := models.Comment{
		ID:         c.ID,
		Author:     author(c.Author),
		BodyHTML:   body,
		Permalink:  c.Permalink,
		CreatedUTC: created(c.Created),
		Score:      c.Score,
	}

	if depth > 0 && len(c.Replies.Comments) > 0 {
		comment.Replies, err = convertComments(c.Replies.Comments, depth-1)
		if err != nil {
			return models.Comment{}, err
		}
	}
	return comment, nil
}
