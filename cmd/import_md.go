package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"inkwell/service"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

var importCategory string

var importMarkdownCmd = &cobra.Command{
	Use:   "import-md <glob>...",
	Short: "Import Markdown files as new posts",
	Long: `Each matching file becomes a new post. YAML front matter (title, date,
category or categories, tags, excerpt) is used when present; otherwise
the file name is the title. Globs support ** as in posts/**/*.md.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandGlobs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no files match %v", args)
		}

		return withApp(func(app *service.App) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			ok, err := confirmer().Confirm(ctx, fmt.Sprintf("Import %d Markdown files as new posts?", len(files)))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}

			svc := app.Admin(nil)
			imported := 0
			for _, file := range files {
				content, err := os.ReadFile(file)
				if err != nil {
					fmt.Fprintf(out, "✗ %s: %v\n", file, err)
					continue
				}
				post, err := svc.ImportMarkdown(ctx, filepath.Base(file), content, importCategory)
				if err != nil {
					fmt.Fprintf(out, "✗ %s: %v\n", file, err)
					continue
				}
				fmt.Fprintf(out, "✓ %s -> %s (%s)\n", file, post.Title, post.ID)
				imported++
			}
			fmt.Fprintf(out, "Imported %d of %d files\n", imported, len(files))
			if imported == 0 {
				return fmt.Errorf("no files imported")
			}
			return nil
		})
	},
}

func init() {
	importMarkdownCmd.Flags().StringVar(&importCategory, "category", "", "category for files whose front matter names none")
	rootCmd.AddCommand(importMarkdownCmd)
}

// expandGlobs returns the files matched by patterns, sorted and without
// duplicates.
func expandGlobs(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
