package cmd

import (
	"fmt"
	"strings"

	"switch-mod-downloader/logger"
	"switch-mod-downloader/mods"
	"switch-mod-downloader/ui"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the mods available for installed games",
	Long: `Matches the repository listing against installed titles and prints
the mods that would be downloaded, without downloading anything.`,
	Run: func(cmd *cobra.Command, _ []string) {
		logger.Log.Info("Running list command...")
		files, _ := cmd.Flags().GetBool("files")
		runList(files)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("files", false, "print every file that would be downloaded")
}

func runList(showFiles bool) {
	cfg := loadConfig()
	svc := bootstrap(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	games := readGames(ctx, svc)
	if len(games) == 0 {
		return
	}

	fmt.Println()
	for _, g := range games {
		fmt.Println(ui.Bold.Render(fmt.Sprintf("%s [%s]", g.TitleName, g.TitleID)))
		fmt.Println(ui.Muted.Render("  " + strings.Join(mods.ModNames(g), ", ")))
		if !showFiles {
			continue
		}
		for _, e := range g.ModDownloadEntries {
			fmt.Printf("    %s\n", e.ModRelativePath)
		}
	}
}
