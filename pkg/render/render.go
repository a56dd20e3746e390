package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"

	"redditsave/pkg/models"
)

//go:embed templates/*
var embedded embed.FS

var templateNames = []string{
	"post-div.html",
	"comment-div.html",
	"reply-div.html",
	"post.html",
	"saved.html",
	"upvoted.html",
	"username.html",
	"style.css",
	"main.js",
}

const (
	timestampLayout   = "2006-01-02 15:04:05-07:00"
	postDateLayout    = "02 January, 2006"
	commentDateLayout = "15:04 - 02 January, 2006"
)

// Renderer turns posts and comments into archive HTML
type Renderer struct {
	templates       map[string]string
	imageExtensions []string
	videoExtensions []string
}

// New loads the templates. A file present in templateDir replaces the
// built-in template of the same name.
func New(templateDir string, imageExtensions, videoExtensions []string) (*Renderer, error) {
	r := &Renderer{
		templates:       make(map[string]string, len(templateNames)),
		imageExtensions: imageExtensions,
		videoExtensions: videoExtensions,
	}

	for _, name := range templateNames {
		content, err := loadTemplate(templateDir, name)
		if err != nil {
			return nil, err
		}
		r.templates[name] = content
	}

	return r, nil
}

func loadTemplate(templateDir, name string) (string, error) {
	if templateDir != "" {
		data, err := os.ReadFile(filepath.Join(templateDir, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("missing built-in template %s: %w", name, err)
	}
	return string(data), nil
}

// MarkdownToHTML renders a reddit markdown body. Raw HTML in the source is
// dropped.
func MarkdownToHTML(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// absoluteSubredditLinks points relative /r/ links at reddit.com
func absoluteSubredditLinks(body string) string {
	return strings.ReplaceAll(body, `<a href="/r/`, `<a href="https://reddit.com/r/`)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// PostFragment renders the listing block of a post, without media preview
func (r *Renderer) PostFragment(post *models.Post) string {
	created := post.CreatedUTC.UTC()

	user := "[deleted]"
	if post.Author != "" {
		user = "/u/" + post.Author
	}

	replacer := strings.NewReplacer(
		"<!--title-->", html.EscapeString(post.Title),
		"<!--subreddit-->", "/r/"+post.Subreddit,
		"<!--user-->", user,
		"<!--link-->", "posts/"+post.ID+".html",
		"<!--reddit-link-->", "https://reddit.com"+post.Permalink,
		"<!--content-link-->", html.EscapeString(post.URL),
		"<!--id-->", post.ID,
		"<!--body-->", absoluteSubredditLinks(post.SelfTextHTML),
		"<!--timestamp-->", timestamp(created),
		"<!--date-->", created.Format(postDateLayout),
	)
	return replacer.Replace(r.templates["post-div.html"])
}

// CommentFragment renders a comment block with one level of replies. When op
// is set, authors equal to op are highlighted.
func (r *Renderer) CommentFragment(comment *models.Comment, op string) string {
	var children []string
	for i := range comment.Replies {
		children = append(children, r.comment("reply-div.html", &comment.Replies[i], op, ""))
	}
	return r.comment("comment-div.html", comment, op, strings.Join(children, "\n"))
}

func (r *Renderer) comment(template string, comment *models.Comment, op, children string) string {
	created := comment.CreatedUTC.UTC()

	author := "[deleted]"
	if comment.Author != "" {
		author = "/u/" + comment.Author
		if op != "" && comment.Author == op {
			author = `<span class="op">` + author + `</span>`
		}
	}

	replacer := strings.NewReplacer(
		"<!--user-->", author,
		"<!--body-->", absoluteSubredditLinks(comment.BodyHTML),
		"<!--score-->", strconv.Itoa(comment.Score),
		"<!--link-->", "https://reddit.com"+comment.Permalink,
		"<!--timestamp-->", timestamp(created),
		"<!--id-->", comment.ID,
		"<!--date-->", created.Format(commentDateLayout),
		"<!--children-->", children,
	)
	return replacer.Replace(r.templates[template])
}

// AddMediaPreview fills the preview slot of a post fragment with the given
// media file names
func (r *Renderer) AddMediaPreview(fragment string, files []string) string {
	if len(files) == 0 {
		return fragment
	}

	var preview strings.Builder
	if len(files) == 1 {
		location := "media/" + files[0]
		switch ext := extension(files[0]); {
		case contains(r.imageExtensions, ext):
			fmt.Fprintf(&preview, `<img src="%s">`, location)
		case contains(r.videoExtensions, ext):
			fmt.Fprintf(&preview, `<video controls><source src="%s"></video>`, location)
		default:
			return fragment
		}
	} else {
		for i, file := range files {
			location := "media/" + file
			switch ext := extension(file); {
			case contains(r.imageExtensions, ext):
				fmt.Fprintf(&preview, `<figure><img src="%s"><figcaption>Image %d of %d</figcaption></figure><br/><br/>`, location, i+1, len(files))
			case contains(r.videoExtensions, ext):
				fmt.Fprintf(&preview, `<video controls><source src="%s"></video><br/>%d of %d<br/><br/>`, location, i+1, len(files))
			}
		}
	}

	return strings.Replace(fragment, "<!--preview-->", preview.String(), 1)
}

// PostPage renders the standalone page of a post: the fragment with its
// archive link removed and media paths lifted one directory, followed by the
// post's top-level comments
func (r *Renderer) PostPage(post *models.Post, fragment string, comments []models.Comment) (string, error) {
	body, err := standaloneFragment(fragment)
	if err != nil {
		return "", err
	}

	rendered := make([]string, 0, len(comments))
	for i := range comments {
		rendered = append(rendered, r.CommentFragment(&comments[i], post.Author))
	}

	page := r.templates["post.html"]
	page = strings.Replace(page, "<!--title-->", html.EscapeString(post.Title), 1)
	page = strings.Replace(page, "<!--post-->", body, 1)
	page = r.inlineAssets(page)
	page = strings.Replace(page, "<!--comments-->", strings.Join(rendered, "\n"), 1)
	return page, nil
}

func standaloneFragment(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse post fragment: %w", err)
	}

	doc.Find(`a[href^="posts/"]`).Remove()
	doc.Find("img[src], source[src]").Each(func(_ int, s *goquery.Selection) {
		if src, _ := s.Attr("src"); strings.HasPrefix(src, "media/") {
			s.SetAttr("src", "../"+src)
		}
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render post fragment: %w", err)
	}
	return strings.ReplaceAll(body, "h2>", "h1>"), nil
}

// ListingPage renders one output page for mode. page < 0 renders the unpaged
// canonical page, which links nowhere.
func (r *Renderer) ListingPage(mode models.Mode, posts, comments []string, page int, hasNext bool) string {
	var content string
	switch mode.Kind {
	case models.ModeSaved:
		content = r.templates["saved.html"]
	case models.ModeUpvoted:
		content = r.templates["upvoted.html"]
	default:
		content = strings.ReplaceAll(r.templates["username.html"], "[username]", mode.Username)
	}

	content = r.inlineAssets(content)

	if page <= 0 {
		content = strings.ReplaceAll(content, "Previous</a>", "</a>")
	} else {
		content = strings.ReplaceAll(content, ".p.html", fmt.Sprintf(".%d.html", page-1))
	}
	if !hasNext || page < 0 {
		content = strings.ReplaceAll(content, "Next</a>", "</a>")
	} else {
		content = strings.ReplaceAll(content, ".n.html", fmt.Sprintf(".%d.html", page+1))
	}

	content = strings.Replace(content, "<!--posts-->", strings.Join(posts, "\n"), 1)
	content = strings.Replace(content, "<!--comments-->", strings.Join(comments, "\n"), 1)
	return content
}

func (r *Renderer) inlineAssets(content string) string {
	content = strings.Replace(content, "<style></style>", "<style>\n"+r.templates["style.css"]+"\n</style>", 1)
	content = strings.Replace(content, "<script></script>", "<script>\n"+r.templates["main.js"]+"\n</script>", 1)
	return content
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
