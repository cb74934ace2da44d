package cmd

import (
	"fmt"
	"os"

	"inkwell/app/services"
	"inkwell/service"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all blog data as JSON",
	Long:  `Writes posts, settings, theme and friend links to a JSON file that import accepts. Use --out - for stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			ctx := cmd.Context()
			svc := app.Admin(nil)
			if exportOut == "-" {
				return svc.Export(ctx, cmd.OutOrStdout())
			}

			name := exportOut
			if name == "" {
				name = services.ExportName(svc.Now())
			}
			f, err := os.Create(name)
			if err != nil {
				return fmt.Errorf("creating %s: %w", name, err)
			}
			if err := svc.Export(ctx, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d posts to %s\n", len(svc.Data(ctx).Posts), name)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default blog-backup-<date>.json)")
	rootCmd.AddCommand(exportCmd)
}
