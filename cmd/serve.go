package cmd

import (
	"inkwell/service"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blog and admin web server",
	Long: `Serves the public blog, the admin panel under /admin and the JSON API
under /api until interrupted. SIGINT and SIGTERM shut the server down
gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			if serveAddr != "" {
				app.Config.Server.Addr = serveAddr
			}
			return service.RunAppServer(cmd.Context(), app)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
