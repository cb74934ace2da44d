package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"inkwell/app/services"
	"inkwell/service"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace all blog data with an export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		return withApp(func(app *service.App) error {
			data, err := adminService(app).Import(cmd.Context(), f)
			if err != nil {
				return declined(cmd.OutOrStdout(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d posts and %d friend links\n", len(data.Posts), len(data.FriendLinks))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// declined turns a refused confirmation into a message. Other errors pass
// through.
func declined(out io.Writer, err error) error {
	if errors.Is(err, services.ErrDeclined) {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}
	return err
}
