package stats

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// otherLabel groups the subreddits beyond the pie chart's slice limit
const otherLabel = "other"

// Entry is what the statistics page knows about one archived post
type Entry struct {
	Subreddit string
	Year      int
}

// Count is a label with the number of posts carrying it
type Count struct {
	Label string
	Posts int
}

// Summary aggregates entries for charting
type Summary struct {
	Total      int
	Subreddits []Count // most posts first
	Years      []Count // oldest first
}

// Extract reads subreddit and year from rendered post fragments
func Extract(posts []string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.Join(posts, "\n")))
	if err != nil {
		return nil, fmt.Errorf("failed to parse post fragments: %w", err)
	}

	var entries []Entry
	doc.Find("div.post").Each(func(_ int, s *goquery.Selection) {
		entry := Entry{
			Subreddit: strings.TrimPrefix(strings.TrimSpace(s.Find(".info .subreddit").First().Text()), "/r/"),
		}
		if stamp, ok := s.Find(".info time").First().Attr("datetime"); ok && len(stamp) >= 4 {
			entry.Year, _ = strconv.Atoi(stamp[:4])
		}
		entries = append(entries, entry)
	})
	return entries, nil
}

// Summarize counts entries per subreddit and per year. Entries without a
// year are left out of the year counts.
func Summarize(entries []Entry) Summary {
	subreddits := make(map[string]int)
	years := make(map[int]int)
	for _, e := range entries {
		name := e.Subreddit
		if name == "" {
			name = "unknown"
		}
		subreddits[name]++
		if e.Year > 0 {
			years[e.Year]++
		}
	}

	summary := Summary{Total: len(entries)}
	for name, n := range subreddits {
		summary.Subreddits = append(summary.Subreddits, Count{Label: name, Posts: n})
	}
	sort.Slice(summary.Subreddits, func(i, j int) bool {
		a, b := summary.Subreddits[i], summary.Subreddits[j]
		if a.Posts != b.Posts {
			return a.Posts > b.Posts
		}
		return a.Label < b.Label
	})

	yearKeys := make([]int, 0, len(years))
	for y := range years {
		yearKeys = append(yearKeys, y)
	}
	sort.Ints(yearKeys)
	for _, y := range yearKeys {
		summary.Years = append(summary.Years, Count{Label: strconv.Itoa(y), Posts: years[y]})
	}

	return summary
}

// Renderer builds the statistics page
type Renderer struct {
	maxSlices int
}

// NewRenderer creates a Renderer showing at most maxSlices subreddits in the
// pie chart, folding the rest into one slice
func NewRenderer(maxSlices int) *Renderer {
	if maxSlices <= 0 {
		maxSlices = 12
	}
	return &Renderer{maxSlices: maxSlices}
}

// Render returns the statistics page for the given post fragments
func (r *Renderer) Render(title string, posts []string) (string, error) {
	entries, err := Extract(posts)
	if err != nil {
		return "", err
	}
	summary := Summarize(entries)

	page := components.NewPage()
	page.PageTitle = title + " statistics"
	page.AddCharts(r.subredditPie(title, summary), r.yearBar(summary))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render statistics page: %w", err)
	}
	return buf.String(), nil
}

// Slices folds the tail of the subreddit counts into a single "other" slice
func (r *Renderer) Slices(summary Summary) []Count {
	if len(summary.Subreddits) <= r.maxSlices {
		return summary.Subreddits
	}

	slices := append([]Count(nil), summary.Subreddits[:r.maxSlices-1]...)
	other := Count{Label: otherLabel}
	for _, c := range summary.Subreddits[r.maxSlices-1:] {
		other.Posts += c.Posts
	}
	return append(slices, other)
}

func (r *Renderer) subredditPie(title string, summary Summary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Posts by subreddit",
			Subtitle: fmt.Sprintf("%s: %d posts", title, summary.Total),
		}),
	)

	items := make([]opts.PieData, 0, len(summary.Subreddits))
	for _, c := range r.Slices(summary) {
		items = append(items, opts.PieData{Name: c.Label, Value: c.Posts})
	}
	pie.AddSeries("Posts", items)
	return pie
}

func (r *Renderer) yearBar(summary Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Posts per year"}),
	)

	labels := make([]string, 0, len(summary.Years))
	values := make([]opts.BarData, 0, len(summary.Years))
	for _, c := range summary.Years {
		labels = append(labels, c.Label)
		values = append(values, opts.BarData{Value: c.Posts})
	}
	bar.SetXAxis(labels).AddSeries("Posts", values)
	return bar
}
