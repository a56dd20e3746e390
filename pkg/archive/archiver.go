package archive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"redditsave/pkg/checkpoint"
	"redditsave/pkg/config"
	"redditsave/pkg/logger"
	"redditsave/pkg/media"
	"redditsave/pkg/models"
	"redditsave/pkg/storage"
)

// StatsSuffix names the statistics page written next to the listing pages
const StatsSuffix = ".stats.html"

// Options control a single archive run
type Options struct {
	Mode               models.Mode
	PageSize           int
	BlacklistPath      string
	BreakLock          bool
	InconclusivePolicy string
	RunID              string
}

// Summary reports what a run did
type Summary struct {
	RunID            string
	ExistingPosts    int
	ExistingComments int
	NewPosts         int
	NewComments      int
	Archived         int
	MediaFetched     int
	Failed           int
	Inconclusive     int
	Blacklisted      int
	Pages            int
	StatsPage        string
	Duration         time.Duration
}

// Archiver runs incremental archive passes over one location
type Archiver struct {
	source   Source
	fetcher  MediaFetcher
	renderer PageRenderer
	store    *storage.Manager
	writer   *Writer
	stats    StatsRenderer
	progress Progress
	opts     Options
	logger   logger.Logger
}

// New creates an Archiver writing into store
func New(source Source, fetcher MediaFetcher, renderer PageRenderer, store *storage.Manager, opts Options, log logger.Logger) *Archiver {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if opts.InconclusivePolicy == "" {
		opts.InconclusivePolicy = config.PolicyRender
	}
	return &Archiver{
		source:   source,
		fetcher:  fetcher,
		renderer: renderer,
		store:    store,
		writer:   NewWriter(store, renderer, log),
		progress: nopProgress{},
		opts:     opts,
		logger:   log,
	}
}

// SetProgress sets the receiver of per-item progress
func (a *Archiver) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	a.progress = p
}

// SetStats enables writing the statistics page after each run
func (a *Archiver) SetStats(s StatsRenderer) {
	a.stats = s
}

// Run performs one archive pass: it merges newly listed content into the
// existing pages and rewrites them. Pages are only rewritten once every
// listing has been fetched successfully.
func (a *Archiver) Run(ctx context.Context) (summary Summary, err error) {
	start := time.Now()
	summary.RunID = a.opts.RunID
	root := a.store.Root()

	lock, err := AcquireLock(root, a.opts.RunID, a.opts.BreakLock)
	if err != nil {
		return summary, err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			a.logger.WithError(rerr).Warn("Failed to release lock")
		}
	}()

	states, err := checkpoint.NewManager(root, a.opts.Mode.DisplayName(), a.logger)
	if err != nil {
		return summary, err
	}
	state, err := states.Begin(a.opts.RunID, a.opts.Mode.String(), root)
	if err != nil {
		return summary, err
	}
	defer func() {
		summary.Duration = time.Since(start)
		a.recordState(state, summary)
		if ferr := states.Finish(state, err); ferr != nil {
			a.logger.WithError(ferr).Warn("Failed to save run state")
		}
	}()

	base := a.opts.Mode.BaseFilename()
	corpus, err := LoadExisting(root, base)
	if err != nil {
		return summary, fmt.Errorf("failed to load existing pages: %w", err)
	}
	summary.ExistingPosts = len(corpus.Posts)
	summary.ExistingComments = len(corpus.Comments)

	a.logger.InfoWithFields("Loaded existing archive", map[string]interface{}{
		"base":     base,
		"ids":      len(corpus.IDs),
		"posts":    len(corpus.Posts),
		"comments": len(corpus.Comments),
	})

	posts, comments, err := a.fetchListings(ctx, corpus)
	if err != nil {
		return summary, err
	}
	summary.NewPosts = len(posts)
	summary.NewComments = len(comments)

	blacklist, err := LoadBlacklist(a.opts.BlacklistPath)
	if err != nil {
		return summary, err
	}
	if blacklist.Len() > 0 {
		a.logger.InfoWithFields("Ignoring blacklisted posts", map[string]interface{}{"count": blacklist.Len()})
	}

	postFragments, err := a.processPosts(ctx, posts, blacklist, &summary)
	if err != nil {
		return summary, err
	}
	commentFragments := a.processComments(comments)

	allPosts := append(postFragments, corpus.Posts...)
	allComments := append(commentFragments, corpus.Comments...)

	pages, err := a.writer.Write(a.opts.Mode, allPosts, allComments, a.opts.PageSize)
	if err != nil {
		return summary, err
	}
	summary.Pages = pages

	if blacklist.Added() > 0 && blacklist.Path() != "" {
		a.logger.InfoWithFields("Updating blacklist", map[string]interface{}{
			"path":  blacklist.Path(),
			"added": blacklist.Added(),
		})
	}
	if err := blacklist.Save(); err != nil {
		return summary, err
	}

	if a.stats != nil {
		name := a.opts.Mode.DisplayName() + StatsSuffix
		if serr := a.writeStats(name, allPosts); serr != nil {
			a.logger.WithError(serr).Warn("Failed to write statistics page")
		} else {
			summary.StatsPage = name
		}
	}

	a.logger.InfoWithFields("Archive run complete", map[string]interface{}{
		"new_posts":    summary.NewPosts,
		"new_comments": summary.NewComments,
		"archived":     summary.Archived,
		"failed":       summary.Failed,
		"inconclusive": summary.Inconclusive,
		"pages":        summary.Pages,
	})

	return summary, nil
}

// fetchListings returns the listed posts and comments not yet in corpus,
// each deduplicated and sorted by ID
func (a *Archiver) fetchListings(ctx context.Context, corpus *Corpus) ([]models.Post, []models.Comment, error) {
	listed, err := a.source.Posts(ctx, a.opts.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var listedComments []models.Comment
	if a.opts.Mode.IncludesComments() {
		listedComments, err = a.source.Comments(ctx, a.opts.Mode)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list comments: %w", err)
		}
	}

	seen := make(map[string]struct{})
	var posts []models.Post
	for _, p := range listed {
		if _, dup := seen[p.ID]; dup || corpus.Has(p.ID) {
			continue
		}
		seen[p.ID] = struct{}{}
		posts = append(posts, p)
	}
	var comments []models.Comment
	for _, c := range listedComments {
		if _, dup := seen[c.ID]; dup || corpus.Has(c.ID) {
			continue
		}
		seen[c.ID] = struct{}{}
		comments = append(comments, c)
	}

	sort.SliceStable(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })

	a.logger.InfoWithFields("Fetched listings", map[string]interface{}{
		"listed_posts":    len(listed),
		"listed_comments": len(listedComments),
		"new_posts":       len(posts),
		"new_comments":    len(comments),
	})

	return posts, comments, nil
}

func (a *Archiver) processPosts(ctx context.Context, posts []models.Post, blacklist *Blacklist, summary *Summary) ([]string, error) {
	if len(posts) == 0 {
		a.logger.Info("No new posts to process")
		return nil, nil
	}

	a.progress.Start("posts", len(posts))
	defer a.progress.Finish()

	var fragments []string
	for i := range posts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("archive run cancelled: %w", err)
		}

		post := &posts[i]
		if blacklist.Contains(post.ID) {
			summary.Blacklisted++
			a.progress.Step(post.ID, "blacklisted")
			continue
		}

		fragment, outcome, ok := a.renderPost(ctx, post, blacklist, summary)
		a.progress.Step(post.ID, outcome)
		if (i+1)%25 == 0 {
			logger.LogProgress(a.logger, "posts", i+1, len(posts))
		}
		if !ok {
			continue
		}

		if err := a.writePostPage(ctx, post, fragment); err != nil {
			return nil, err
		}
		fragments = append(fragments, strings.TrimSpace(fragment))
		summary.Archived++
	}

	return fragments, nil
}

// renderPost fetches the media of post and renders its fragment. ok is false
// when the post must not be rendered.
func (a *Archiver) renderPost(ctx context.Context, post *models.Post, blacklist *Blacklist, summary *Summary) (fragment, outcome string, ok bool) {
	fragment = a.renderer.PostFragment(post)
	result := a.fetcher.Fetch(ctx, post)

	log := a.logger.WithFields(map[string]interface{}{
		"post_id":  post.ID,
		"strategy": result.Strategy,
	})

	switch result.Kind {
	case media.FetchFailed:
		summary.Failed++
		blacklist.Add(post.ID)
		log.WithError(result.Err).Error(fmt.Sprintf("Skipping post with unfetchable media: %q", post.Title))
		return "", result.Kind.String(), false

	case media.Inconclusive:
		summary.Inconclusive++
		switch a.opts.InconclusivePolicy {
		case config.PolicySkip:
			log.Warn("Extractor produced no file, skipping post")
			return "", result.Kind.String(), false
		case config.PolicyBlacklist:
			blacklist.Add(post.ID)
			log.Warn("Extractor produced no file, blacklisting post")
			return "", result.Kind.String(), false
		default:
			log.Warn("Extractor produced no file, rendering post without preview")
		}

	case media.Fetched:
		summary.MediaFetched++
		fragment = a.renderer.AddMediaPreview(fragment, result.Files)
	}

	return fragment, result.Kind.String(), true
}

func (a *Archiver) writePostPage(ctx context.Context, post *models.Post, fragment string) error {
	comments, err := a.source.PostComments(ctx, post.ID)
	if err != nil {
		a.logger.WithError(err).WithField("post_id", post.ID).Warn("Failed to fetch post comments, writing page without them")
		comments = nil
	}

	page, err := a.renderer.PostPage(post, fragment, comments)
	if err != nil {
		a.logger.WithError(err).WithField("post_id", post.ID).Error("Failed to render post page")
		return nil
	}

	if err := a.store.WritePostPage(post.ID, page); err != nil {
		return fmt.Errorf("failed to write page for post %s: %w", post.ID, err)
	}
	return nil
}

func (a *Archiver) processComments(comments []models.Comment) []string {
	if len(comments) == 0 {
		a.logger.Info("No new comments to process")
		return nil
	}

	a.progress.Start("comments", len(comments))
	defer a.progress.Finish()

	fragments := make([]string, 0, len(comments))
	for i := range comments {
		fragment := a.renderer.CommentFragment(&comments[i], "")
		fragments = append(fragments, strings.TrimSpace(fragment))
		a.progress.Step(comments[i].ID, "rendered")
	}
	return fragments
}

func (a *Archiver) writeStats(name string, posts []string) error {
	content, err := a.stats.Render(a.opts.Mode.DisplayName(), posts)
	if err != nil {
		return err
	}
	return a.store.WritePage(name, content)
}

func (a *Archiver) recordState(state *checkpoint.RunState, s Summary) {
	state.ExistingPosts = s.ExistingPosts
	state.ExistingComments = s.ExistingComments
	state.NewPosts = s.NewPosts
	state.NewComments = s.NewComments
	state.Archived = s.Archived
	state.MediaFetched = s.MediaFetched
	state.Failed = s.Failed
	state.Inconclusive = s.Inconclusive
	state.Blacklisted = s.Blacklisted
	state.Pages = s.Pages
}
