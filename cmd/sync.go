package cmd

import (
	"fmt"
	"io"

	"inkwell/app/reposync"
	"inkwell/app/services"
	"inkwell/service"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push posts and settings to the GitHub repository, or pull posts from it",
	Long: `Talks to the Jekyll repository named in the github section of the config.
Posts are written to <posts_dir>/<YYYY-MM-DD>-<slug>.md with YAML front matter.`,
}

// reportSync prints the remote step that followed a local change.
func reportSync(out io.Writer, o services.SyncOutcome) {
	switch {
	case o.Err != nil:
		fmt.Fprintf(out, "Sync to GitHub failed: %v\n", o.Err)
	case o.Attempted:
		fmt.Fprintln(out, "Synced to GitHub")
	}
}

// printResults lists per-file outcomes and fails when any file failed.
func printResults(out io.Writer, results []reposync.Result) error {
	failed := 0
	for _, r := range results {
		if r.Success {
			fmt.Fprintf(out, "✓ %s\n", r.Name)
			continue
		}
		failed++
		fmt.Fprintf(out, "✗ %s: %s\n", r.Name, r.Error())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

var syncPostCmd = &cobra.Command{
	Use:   "post <id>",
	Short: "Push one post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			if err := app.Admin(nil).SyncPost(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced post %s\n", args[0])
			return nil
		})
	},
}

var syncAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Push every post",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			bar := &service.BarProgress{Out: cmd.ErrOrStderr(), Description: "Syncing"}
			started := false
			results, err := app.Admin(nil).SyncAll(cmd.Context(), func(done, total int) {
				if !started {
					bar.Start(total)
					started = true
				}
				bar.Update(done, "Syncing")
			})
			bar.Finish()
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		})
	},
}

var syncSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Push _config.yml and about.md",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			results, err := app.Admin(nil).SyncSettings(cmd.Context())
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		})
	},
}

var syncInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the Jekyll scaffold (Gemfile, index and layouts)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			results, err := adminService(app).InitializeSite(cmd.Context())
			if err != nil {
				return declined(cmd.OutOrStdout(), err)
			}
			return printResults(cmd.OutOrStdout(), results)
		})
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge the repository's posts into the blog",
	Long: `Reads every post under posts_dir. A post with the same date and slug as a
local post replaces it and keeps the local id; the others are added.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			out := cmd.OutOrStdout()
			report, err := adminService(app).PullPosts(cmd.Context())
			if err != nil {
				return declined(out, err)
			}
			fmt.Fprintf(out, "Added %d, updated %d\n", report.Added, report.Updated)
			for _, f := range report.Failed {
				fmt.Fprintf(out, "✗ %s: %v\n", f.Path, f.Err)
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d posts could not be read", len(report.Failed))
			}
			return nil
		})
	},
}

func init() {
	syncCmd.AddCommand(syncPostCmd, syncAllCmd, syncSettingsCmd, syncInitCmd, syncPullCmd)
	rootCmd.AddCommand(syncCmd)
}
