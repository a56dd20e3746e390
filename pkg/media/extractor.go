package media

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"

	"redditsave/pkg/logger"
)

// Extractor downloads media from pages that need site-specific extraction
type Extractor interface {
	// Extract downloads url using outputTemplate, a yt-dlp style template
	// such as media/name.%(ext)s
	Extract(ctx context.Context, url, outputTemplate string) error
}

// YTDLPExtractor runs the yt-dlp binary through go-ytdlp
type YTDLPExtractor struct {
	executable string
	logger     logger.Logger
}

// NewYTDLPExtractor creates an extractor; an empty executable uses yt-dlp from PATH
func NewYTDLPExtractor(executable string, log logger.Logger) *YTDLPExtractor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &YTDLPExtractor{executable: executable, logger: log}
}

// Extract runs yt-dlp quietly without certificate checks
func (e *YTDLPExtractor) Extract(ctx context.Context, url, outputTemplate string) error {
	cmd := ytdlp.New().
		NoCheckCertificates().
		Quiet().
		NoWarnings().
		NoProgress().
		Output(outputTemplate)
	if e.executable != "" {
		cmd = cmd.SetExecutable(e.executable)
	}

	e.logger.DebugWithFields("running extractor", map[string]interface{}{
		"url":      url,
		"template": outputTemplate,
	})

	if _, err := cmd.Run(ctx, url); err != nil {
		return fmt.Errorf("yt-dlp failed for %s: %w", url, err)
	}
	return nil
}

// InstallYTDLP downloads a yt-dlp binary into the user cache when none is available
func InstallYTDLP(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}

// handleExtractor delegates to the Extractor and looks for the file it wrote
func (d *Dispatcher) handleExtractor(ctx context.Context, t Target) Result {
	if d.extractor == nil {
		return failed(fmt.Errorf("no extractor configured for %s", t.Domain))
	}

	stem := fmt.Sprintf("%s_%s", t.Slug, t.Post.ID)
	template := filepath.Join(d.store.MediaDir(), stem+".%(ext)s")

	if err := d.extractor.Extract(ctx, t.URL, template); err != nil {
		return failed(err)
	}

	matches, err := d.store.FindMedia(stem + ".")
	if err != nil {
		return failed(err)
	}
	if len(matches) == 0 {
		d.logger.WarnWithFields("extractor produced no file", map[string]interface{}{
			"post_id": t.Post.ID,
			"url":     t.URL,
		})
		return inconclusive()
	}

	return fetched(filepath.Base(matches[0]))
}
