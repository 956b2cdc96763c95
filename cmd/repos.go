package cmd

import (
	"fmt"

	"switch-mod-downloader/config"
	"switch-mod-downloader/ui"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the known mod repositories",
	Long: `Prints the mod repositories this tool is known to work with.
Pick one with --repo or the REPOSITORY setting; any owner/name is accepted.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(ui.Header.Render("Known repositories:"))
		for i, repo := range config.Repositories {
			line := fmt.Sprintf("  %d) %s", i+1, repo)
			if repo == config.DefaultRepository {
				line += ui.Muted.Render(" (default)")
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)
}
