package sampler

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"redditsave/pkg/logger"
	"redditsave/pkg/storage"
)

// DefaultOutput is the file name written when no output is given
const DefaultOutput = "__sample.html"

// Options control one sampling pass
type Options struct {
	// Pages are the listing pages to draw posts from
	Pages []string
	// Size is the maximum number of posts taken from each page
	Size int
	// Output is the file to write; media paths are made relative to it
	Output string
	// Seed makes the sample reproducible; 0 picks a time based seed
	Seed int64
}

// Sampler draws random posts from archive pages into one page
type Sampler struct {
	logger logger.Logger
}

// New creates a Sampler
func New(log logger.Logger) *Sampler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Sampler{logger: log}
}

// Sample writes a shuffled random selection of posts from every page to
// opts.Output under the head of the first page, and returns how many posts
// were written
func (s *Sampler) Sample(opts Options) (int, error) {
	if len(opts.Pages) == 0 {
		return 0, fmt.Errorf("no pages to sample")
	}
	if opts.Size <= 0 {
		return 0, fmt.Errorf("sample size must be positive")
	}
	if opts.Output == "" {
		opts.Output = filepath.Join(filepath.Dir(opts.Pages[0]), DefaultOutput)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var (
		head    string
		sampled []string
	)

	for i, page := range opts.Pages {
		doc, err := load(page)
		if err != nil {
			return 0, err
		}

		prefix, err := mediaPrefix(opts.Output, page)
		if err != nil {
			return 0, err
		}
		rebaseMedia(doc, prefix)

		if i == 0 {
			head, err = doc.Find("head").Html()
			if err != nil {
				return 0, fmt.Errorf("failed to read head of %s: %w", page, err)
			}
		}

		var posts []string
		doc.Find("div.post").Each(func(_ int, sel *goquery.Selection) {
			if html, err := goquery.OuterHtml(sel); err == nil {
				posts = append(posts, html)
			}
		})

		picked := pick(rng, posts, opts.Size)
		sampled = append(sampled, picked...)

		s.logger.DebugWithFields("Sampled page", map[string]interface{}{
			"page":    page,
			"posts":   len(posts),
			"sampled": len(picked),
		})
	}

	rng.Shuffle(len(sampled), func(i, j int) { sampled[i], sampled[j] = sampled[j], sampled[i] })

	var out strings.Builder
	out.WriteString("<html><head>")
	out.WriteString(head)
	out.WriteString("</head><body>\n")
	out.WriteString(strings.Join(sampled, "\n"))
	out.WriteString("\n</body></html>\n")

	if err := storage.WriteFile(opts.Output, []byte(out.String())); err != nil {
		return 0, fmt.Errorf("failed to write sample: %w", err)
	}

	s.logger.InfoWithFields("Sample written", map[string]interface{}{
		"output": opts.Output,
		"posts":  len(sampled),
		"seed":   seed,
	})

	return len(sampled), nil
}

func load(page string) (*goquery.Document, error) {
	f, err := os.Open(page)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
	}
	return doc, nil
}

// mediaPrefix is the path from the output file's directory to page's directory
func mediaPrefix(output, page string) (string, error) {
	outDir, err := filepath.Abs(filepath.Dir(output))
	if err != nil {
		return "", err
	}
	pageDir, err := filepath.Abs(filepath.Dir(page))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(outDir, pageDir)
	if err != nil {
		return "", fmt.Errorf("cannot relate %s to %s: %w", page, output, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel) + "/", nil
}

func rebaseMedia(doc *goquery.Document, prefix string) {
	if prefix == "" {
		return
	}
	doc.Find("img[src], source[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if isAbsolute(src) {
			return
		}
		sel.SetAttr("src", prefix+src)
	})
}

func isAbsolute(src string) bool {
	return strings.HasPrefix(src, "/") || strings.Contains(src, "://") || strings.HasPrefix(src, "data:")
}

// pick returns up to n items of posts in random order
func pick(rng *rand.Rand, posts []string, n int) []string {
	if n > len(posts) {
		n = len(posts)
	}
	picked := make([]string, 0, n)
	for _, i := range rng.Perm(len(posts))[:n] {
		picked = append(picked, posts[i])
	}
	return picked
}
