package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"redditsave/pkg/archive"
	"redditsave/pkg/checkpoint"
	"redditsave/pkg/ui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [LOCATION]",
	Short: "Show the last archive runs of a location",
	Long: `Print the record of the most recent run for every listing archived in a
location, and whether a run currently holds the lock.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	root := ""
	if len(args) == 1 {
		root = args[0]
	} else {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		root = cfg.Archive.Location
	}
	if root == "" {
		return fmt.Errorf("no location given and none configured")
	}
	if err := checkLocation(root); err != nil {
		return err
	}

	lock, err := archive.ReadLock(root)
	if err != nil {
		ui.PrintWarning("Lock file unreadable", err)
	} else if lock != nil {
		ui.PrintWarning(fmt.Sprintf("Locked by run %s (pid %d) since %s",
			lock.RunID, lock.PID, lock.StartedAt.Local().Format(time.DateTime)))
	}

	states, err := checkpoint.List(root)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		ui.PrintInfo("Status", "no runs recorded in "+root)
		return nil
	}

	for _, s := range states {
		fmt.Println()
		ui.PrintHighlight(s.Mode)
		ui.PrintInfo("  Run", s.RunID)
		ui.PrintInfo("  Status", s.Status)
		ui.PrintInfo("  Started", s.StartedAt.Local().Format(time.DateTime))
		ui.PrintInfo("  Duration", s.Duration().Round(time.Second).String())
		ui.PrintInfo("  Posts", fmt.Sprintf("%d new, %d archived, %d failed, %d inconclusive, %d blacklisted",
			s.NewPosts, s.Archived, s.Failed, s.Inconclusive, s.Blacklisted))
		ui.PrintInfo("  Comments", fmt.Sprintf("%d new", s.NewComments))
		ui.PrintInfo("  Pages", fmt.Sprintf("%d", s.Pages))
		if s.Error != "" {
			ui.PrintInfo("  Error", s.Error)
		}
	}
	return nil
}
