package main

import (
	"github.com/spf13/cobra"

	"redditsave/pkg/server"
	"redditsave/pkg/ui"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [LOCATION]",
	Short: "Browse an archive location over HTTP",
	Long: `Serve the files of an archive location read-only, for browsers that refuse
to play local media from file:// pages. The location defaults to the
configured archive location.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	root := cfg.Archive.Location
	if len(args) == 1 {
		root = args[0]
	}
	if err := checkLocation(root); err != nil {
		return err
	}

	srv, err := server.New(root, log)
	if err != nil {
		return err
	}

	ui.PrintInfo("Serving", root)
	ui.PrintInfo("Open", "http://"+serveAddr+"/")
	return srv.Run(cmd.Context(), serveAddr)
}
