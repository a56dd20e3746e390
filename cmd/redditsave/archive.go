package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"redditsave/pkg/archive"
	"redditsave/pkg/auth"
	"redditsave/pkg/config"
	errs "redditsave/pkg/errors"
	"redditsave/pkg/logger"
	"redditsave/pkg/media"
	"redditsave/pkg/models"
	"redditsave/pkg/reddit"
	"redditsave/pkg/render"
	"redditsave/pkg/stats"
	"redditsave/pkg/storage"
	"redditsave/pkg/ui"
)

var (
	// Archive command flags
	mode        string
	location    string
	pageSize    int
	blacklist   string
	breakLock   bool
	withStats   bool
	templateDir string
	httpTimeout time.Duration
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive new posts and comments into a location",
	Long: `Fetch the chosen listing, download the media of every post not archived yet
and rewrite the HTML pages in the location.

Modes:
  saved          saved posts and saved comments
  upvoted        upvoted posts
  user:NAME      submissions and comments of NAME

When DOCKER=1 is set the location is always ./archive/.`,
	Example: `  # Archive saved posts and comments
  redditsave archive --mode saved --location ~/reddit

  # Archive upvoted posts, 100 per page, skipping known broken posts
  redditsave archive --mode upvoted --location ~/reddit --page-size 100 --blacklist ~/reddit/blacklist.txt

  # Archive a user's posts and write a statistics page
  redditsave archive --mode user:spez --location ~/reddit --stats`,
	Args: cobra.NoArgs,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVarP(&mode, "mode", "m", "", "listing to archive: saved, upvoted or user:NAME")
	archiveCmd.Flags().StringVarP(&location, "location", "l", "", "directory to write the archive to")
	archiveCmd.Flags().IntVar(&pageSize, "page-size", 0, "posts per page (0 writes only the unpaged file)")
	archiveCmd.Flags().StringVar(&blacklist, "blacklist", "", "file of post IDs to skip, extended with failed posts")
	archiveCmd.Flags().BoolVar(&breakLock, "break-lock", false, "remove a lock left behind by a crashed run")
	archiveCmd.Flags().BoolVar(&withStats, "stats", false, "write a statistics page next to the listing")
	archiveCmd.Flags().StringVar(&templateDir, "template-dir", "", "directory with template overrides")
	archiveCmd.Flags().DurationVar(&httpTimeout, "http-timeout", 0, "timeout of each media request (default 30s)")
}

// archiveFlags returns the archive flags that were set explicitly
func archiveFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if mode != "" {
		flags["mode"] = mode
	}
	if location != "" {
		flags["location"] = location
	}
	if cmd.Flags().Changed("page-size") {
		flags["page-size"] = pageSize
	}
	if blacklist != "" {
		flags["blacklist"] = blacklist
	}
	if templateDir != "" {
		flags["template-dir"] = templateDir
	}
	if cmd.Flags().Changed("stats") {
		flags["stats"] = withStats
	}
	if httpTimeout > 0 {
		flags["http-timeout"] = httpTimeout
	}
	return flags
}

// checkLocation fails unless location is an existing directory
func checkLocation(location string) error {
	info, err := os.Stat(location)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("%s is not accessible", location), err)
	}
	if !info.IsDir() {
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("%s is not a directory", location))
	}
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(archiveFlags(cmd))
	if err != nil {
		return err
	}
	applyStoredCredentials(cfg)
	if err := cfg.ValidateArchive(); err != nil {
		return fmt.Errorf("cannot start archive run: %w", err)
	}

	archiveMode, err := models.ParseMode(cfg.Archive.Mode)
	if err != nil {
		return err
	}
	if err := checkLocation(cfg.Archive.Location); err != nil {
		return err
	}

	runID := uuid.Must(uuid.NewV7()).String()

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	log = log.WithContext(ctx).WithFields(map[string]interface{}{
		"run_id": runID,
		"mode":   archiveMode.String(),
	})

	log.InfoWithFields("Archive run starting", map[string]interface{}{
		"location":  cfg.Archive.Location,
		"page_size": cfg.Archive.PageSize,
		"blacklist": cfg.Archive.Blacklist,
	})
	ui.PrintInfo("Mode", archiveMode.String())
	ui.PrintInfo("Location", cfg.Archive.Location)

	archiver, err := buildArchiver(cmd, cfg, archiveMode, runID, log)
	if err != nil {
		return err
	}

	summary, err := archiver.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Archive run failed")
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("archive run interrupted, pages were left unchanged: %w", err)
		}
		return err
	}

	printSummary(summary, cfg.Archive.Location, archiveMode)
	return nil
}

// applyStoredCredentials completes the reddit credentials from the
// credential store when the config leaves some of them empty
func applyStoredCredentials(cfg *config.Config) {
	r := cfg.Reddit
	if r.Username != "" && r.Password != "" && r.ClientID != "" && r.Secret != "" {
		return
	}

	manager, err := auth.NewManager()
	if err != nil {
		return
	}
	if used, err := manager.Apply(&cfg.Reddit); err == nil && used {
		ui.PrintInfo("Credentials", "using stored account "+cfg.Reddit.Username)
	}
}

func buildArchiver(cmd *cobra.Command, cfg *config.Config, archiveMode models.Mode, runID string, log logger.Logger) (*archive.Archiver, error) {
	ctx := cmd.Context()

	store, err := storage.NewManager(cfg.Archive.Location)
	if err != nil {
		return nil, err
	}

	if cfg.Media.InstallYTDLP {
		if err := media.InstallYTDLP(ctx); err != nil {
			log.WithError(err).Warn("Failed to install yt-dlp, extractor downloads may fail")
		}
	}

	client := media.NewClient(media.ClientConfig{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerMinute: cfg.HTTP.RequestsPerMinute,
	}, log)
	extractor := media.NewYTDLPExtractor(cfg.Media.YTDLPPath, log)
	dispatcher := media.NewDispatcher(client, store, extractor, media.OptionsFromConfig(cfg.Media), log)

	renderer, err := render.New(cfg.Archive.TemplateDir, cfg.Media.ImageExtensions, cfg.Media.VideoExtensions)
	if err != nil {
		return nil, err
	}

	source, err := reddit.NewClient(cfg.Reddit, log)
	if err != nil {
		return nil, err
	}

	blacklistPath := cfg.Archive.Blacklist
	if blacklistPath != "" && !filepath.IsAbs(blacklistPath) {
		if abs, err := filepath.Abs(blacklistPath); err == nil {
			blacklistPath = abs
		}
	}

	archiver := archive.New(source, dispatcher, renderer, store, archive.Options{
		Mode:               archiveMode,
		PageSize:           cfg.Archive.PageSize,
		BlacklistPath:      blacklistPath,
		BreakLock:          breakLock,
		InconclusivePolicy: cfg.Media.InconclusivePolicy,
		RunID:              runID,
	}, log)

	if !ui.IsQuietMode() {
		archiver.SetProgress(ui.NewStatusTracker())
	}
	if cfg.Archive.Stats {
		archiver.SetStats(stats.NewRenderer(0))
	}

	return archiver, nil
}

func printSummary(summary archive.Summary, location string, archiveMode models.Mode) {
	fmt.Println()
	ui.PrintSuccess("[ARCHIVE COMPLETE]")
	ui.PrintInfo("New posts", fmt.Sprintf("%d (%d archived, %d failed, %d inconclusive, %d blacklisted)",
		summary.NewPosts, summary.Archived, summary.Failed, summary.Inconclusive, summary.Blacklisted))
	ui.PrintInfo("New comments", fmt.Sprintf("%d", summary.NewComments))
	ui.PrintInfo("Media fetched", fmt.Sprintf("%d", summary.MediaFetched))
	ui.PrintInfo("Output", filepath.Join(location, archiveMode.BaseFilename()))
	if summary.Pages > 0 {
		ui.PrintInfo("Pages", fmt.Sprintf("%d", summary.Pages))
	}
	if summary.StatsPage != "" {
		ui.PrintInfo("Statistics", filepath.Join(location, summary.StatsPage))
	}
	ui.PrintInfo("Duration", summary.Duration.Round(time.Second).String())
}
