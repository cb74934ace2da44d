package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"inkwell/app/reposync"
	"inkwell/service"

	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "List, show and delete posts",
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTITLE\tCATEGORY\tTAGS")
			for _, p := range app.Content.Load(cmd.Context()).Posts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.DateKey(), p.Title, p.Category, strings.Join(p.Tags, ", "))
			}
			return w.Flush()
		})
	},
}

var postShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a post as Markdown with front matter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			post, err := app.Admin(nil).Post(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			body, err := reposync.PostFile(post)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		})
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			out := cmd.OutOrStdout()
			outcome, err := adminService(app).DeletePost(cmd.Context(), args[0])
			if err != nil {
				return declined(out, err)
			}
			fmt.Fprintf(out, "Deleted post %s\n", args[0])
			reportSync(out, outcome)
			return nil
		})
	},
}

func init() {
	postCmd.AddCommand(postListCmd, postShowCmd, postDeleteCmd)
	rootCmd.AddCommand(postCmd)
}
