package cmd

import (
	"fmt"

	"inkwell/service"

	"github.com/spf13/cobra"
)

var (
	buildOut   string
	staticAddr string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the public site to static HTML",
	Long: `Writes every public page, the search index and the stylesheet into the
output directory. Posts, categories and tags whose names cannot be used
as a file name are skipped and listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			ctx := cmd.Context()
			progress := &service.BarProgress{Out: cmd.ErrOrStderr(), Description: "Rendering"}
			report, err := service.BuildSite(ctx, app.Content.Load(ctx), app.Renderer, app.Markdown, buildOut, progress, app.Logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Built %d pages into %s\n", report.Pages, buildOut)
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "Skipped %s: not a safe path\n", s)
			}
			return nil
		})
	},
}

var serveStaticCmd = &cobra.Command{
	Use:   "serve-static",
	Short: "Serve a directory written by build",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		addr := staticAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		return service.RunStaticServer(cmd.Context(), buildOut, addr, logger)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "public", "output directory")
	serveStaticCmd.Flags().StringVarP(&buildOut, "dir", "d", "public", "directory to serve")
	serveStaticCmd.Flags().StringVar(&staticAddr, "addr", "", "listen address (defaults to server.addr)")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveStaticCmd)
}
