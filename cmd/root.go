package cmd

import "github.com/spf13/cobra"

var (
	cfgFile   string
	verbose   bool
	assumeYes bool
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "A personal blog with an admin panel and GitHub Pages sync",
	Long: `Inkwell serves a personal blog and its admin panel from a single binary.
Posts live in a local key-value store and can be pushed to a Jekyll
repository on GitHub, built into a static site, or exported as JSON.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "inkwell.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
}
