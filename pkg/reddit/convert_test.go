package reddit

import (
	"testing"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertPost(t *testing.T) {
	when := time.Date(2021, 6, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	post, err := convertPost(&reddit.Post{
		ID:            "abc",
		Title:         "A title",
		URL:           "https://i.redd.it/x.png",
		Permalink:     "/r/pics/comments/abc/a_title/",
		Author:        "[deleted]",
		Created:       &reddit.Timestamp{Time: when},
		Score:         42,
		Body:          "some **bold** text",
		SubredditName: "pics",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", post.ID)
	assert.Equal(t, "", post.Author)
	assert.Equal(t, "pics", post.Subreddit)
	assert.Equal(t, 42, post.Score)
	assert.Equal(t, time.UTC, post.CreatedUTC.Location())
	assert.True(t, when.Equal(post.CreatedUTC))
	assert.Contains(t, post.SelfTextHTML, "<strong>bold</strong>")
}

func TestConvertPostWithoutBody(t *testing.T) {
	post, err := convertPost(&reddit.Post{ID: "x", Author: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", post.Author)
	assert.Empty(t, post.SelfTextHTML)
	assert.True(t, post.CreatedUTC.IsZero())
}

func TestConvertCommentsKeepsOneReplyLevel(t *testing.T) {
	raw := []*reddit.Comment{
		{
			ID:     "c1",
			Author: "bob",
			Body:   "top",
			Score:  5,
			Replies: reddit.Replies{Comments: []*reddit.Comment{
				{
					ID:     "r1",
					Author: "carol",
					Body:   "reply",
					Replies: reddit.Replies{Comments: []*reddit.Comment{
						{ID: "rr1", Body: "too deep"},
					}},
				},
			}},
		},
		nil,
		{ID: "c2", Author: "[deleted]", Body: "[removed]"},
	}

	comments, err := convertComments(raw, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, "c1", comments[0].ID)
	assert.Contains(t, comments[0].BodyHTML, "<p>top</p>")
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, "r1", comments[0].Replies[0].ID)
	assert.Empty(t, comments[0].Replies[0].Replies)

	assert.Equal(t, "", comments[1].Author)
}
