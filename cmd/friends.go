package cmd

import (
	"fmt"
	"text/tabwriter"

	"inkwell/app/models"
	"inkwell/service"

	"github.com/spf13/cobra"
)

var friendDraft models.FriendLink

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Manage friend links",
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List friend links",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL\tCATEGORY")
			for _, l := range app.Content.Load(cmd.Context()).FriendLinks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.Name, l.URL, l.Category)
			}
			return w.Flush()
		})
	},
}

var friendsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a friend link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			link, err := app.Admin(nil).AddFriendLink(cmd.Context(), friendDraft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", link.Name, link.ID)
			return nil
		})
	},
}

var friendsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a friend link after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			out := cmd.OutOrStdout()
			if err := adminService(app).RemoveFriendLink(cmd.Context(), args[0]); err != nil {
				return declined(out, err)
			}
			fmt.Fprintf(out, "Removed %s\n", args[0])
			return nil
		})
	},
}

var friendsFeedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Show the latest posts of every friend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			for _, res := range app.Feeds.Latest(ctx, app.Content.Load(ctx).FriendLinks) {
				fmt.Fprintf(out, "%s <%s>\n", res.Link.Name, res.Link.URL)
				if res.Err != nil {
					fmt.Fprintf(out, "  error: %s\n", res.Error())
					continue
				}
				for _, it := range res.Items {
					fmt.Fprintf(out, "  %s  %s\n    %s\n", it.Published.Format("2006-01-02"), it.Title, it.Link)
				}
			}
			return nil
		})
	},
}

func init() {
	f := friendsAddCmd.Flags()
	f.StringVar(&friendDraft.Name, "name", "", "display name")
	f.StringVar(&friendDraft.URL, "url", "", "site URL")
	f.StringVar(&friendDraft.Description, "description", "", "short description")
	f.StringVar(&friendDraft.Avatar, "avatar", "", "avatar image URL")
	f.StringVar(&friendDraft.Category, "category", "", "category heading")
	_ = friendsAddCmd.MarkFlagRequired("name")
	_ = friendsAddCmd.MarkFlagRequired("url")

	friendsCmd.AddCommand(friendsListCmd, friendsAddCmd, friendsRemoveCmd, friendsFeedsCmd)
	rootCmd.AddCommand(friendsCmd)
}
