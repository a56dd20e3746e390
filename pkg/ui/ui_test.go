package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTracker(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	var buf bytes.Buffer
	st := NewStatusTrackerTo(&buf)

	st.Start("posts", 4)
	assert.Equal(t, "["+strings.Repeat(ProgressEmpty, 24)+"] 0/4", st.GetProgressBar())

	st.Step("a", "fetched")
	st.Step("b", "no_media")
	st.Step("c", "fetched")
	assert.Equal(t, "["+strings.Repeat(ProgressBar, 18)+strings.Repeat(ProgressEmpty, 6)+"] 3/4", st.GetProgressBar())
	assert.Equal(t, "fetched 2, no_media 1", st.GetOutcomeSummary())

	st.Finish()
	out := buf.String()
	assert.Contains(t, out, "[ARCHIVING POSTS]")
	assert.Contains(t, out, "[DONE] posts")

	st.Start("comments", 0)
	assert.Equal(t, 0, st.Processed)
	assert.Empty(t, st.Outcomes)
	assert.True(t, strings.HasSuffix(st.GetProgressBar(), "0/0"))
}

func TestQuietMode(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetQuietMode(true)
	defer func() {
		SetQuietMode(false)
		SetOutput(nil)
	}()

	PrintLogo()
	PrintInfo("Mode", "saved")
	st := NewStatusTracker()
	st.Start("posts", 1)
	st.Step("a", "fetched")
	st.Finish()

	assert.Empty(t, buf.String())
	assert.True(t, IsQuietMode())
}

func TestColors(t *testing.T) {
	assert.Equal(t, "\033[32mok\033[0m", Green("ok"))

	SetNoColor(true)
	defer SetNoColor(false)
	assert.Equal(t, "ok", Green("ok"))
}
