package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redditsave/pkg/sampler"
	"redditsave/pkg/ui"
)

var (
	// Sample command flags
	sampleSize   int
	sampleOutput string
	sampleSeed   int64
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample PAGE...",
	Short: "Build a page from a random selection of archived posts",
	Long: `Pick up to --size random posts from each given archive page and write them,
shuffled, to a single page that keeps the styling of the first one. Media
paths are rewritten so the sample can live in a parent directory of the
archives it draws from.`,
	Example: `  # Mix 200 saved and 200 upvoted posts into ./__sample.html
  redditsave sample _save/saved.html _updoot/upvoted.html --output __sample.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().IntVarP(&sampleSize, "size", "n", 200, "posts taken from each page at most")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "output file (default __sample.html next to the first page)")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed for a reproducible sample")
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	n, err := sampler.New(log).Sample(sampler.Options{
		Pages:  args,
		Size:   sampleSize,
		Output: sampleOutput,
		Seed:   sampleSeed,
	})
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Sampled %d posts", n))
	return nil
}
