package cmd

import (
	"fmt"

	"switch-mod-downloader/db"
	"switch-mod-downloader/logger"
	"switch-mod-downloader/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [runID]",
	Short: "Show past download runs",
	Long: `Without arguments, lists the most recent download runs.
With a run id (or a unique prefix of one), lists the files of that run.

Example: switch-mod-downloader history 3f2a --failed`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		gdb, err := db.InitDatabase(cfg.DatabasePath)
		if err != nil {
			logger.Log.Errorw("Failed to open history database", zap.Error(err))
			exitWithError(err)
		}

		if len(args) == 0 {
			limit, _ := cmd.Flags().GetInt("limit")
			listRuns(gdb, limit)
			return
		}
		failedOnly, _ := cmd.Flags().GetBool("failed")
		showRun(gdb, args[0], failedOnly)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 10, "number of runs to list")
	historyCmd.Flags().Bool("failed", false, "only show failed files")
}

func listRuns(gdb *gorm.DB, limit int) {
	runs, err := db.RecentRuns(gdb, limit)
	if err != nil {
		logger.Log.Errorw("Failed to query download history", zap.Error(err))
		exitWithError(err)
	}
	if len(runs) == 0 {
		fmt.Println("No downloads recorded yet.")
		return
	}

	fmt.Println(ui.Header.Render(fmt.Sprintf("%-10s %-20s %-8s %-34s %s", "Run", "Date", "Emulator", "Repository", "Files")))
	for _, r := range runs {
		files := fmt.Sprintf("%d/%d", r.Total-r.Failed, r.Total)
		if r.Failed > 0 {
			files = ui.Warning.Render(files)
		}
		fmt.Printf("%-10s %-20s %-8s %-34s %s\n",
			ui.Truncate(r.RunID, 8),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Emulator,
			ui.Truncate(r.Repository, 34),
			files,
		)
	}
}

func showRun(gdb *gorm.DB, runID string, failedOnly bool) {
	run, err := db.FindRun(gdb, runID)
	if err != nil {
		exitWithError(err)
	}

	records, err := db.RunRecords(gdb, run.RunID, failedOnly)
	if err != nil {
		logger.Log.Errorw("Failed to query run records", zap.String("run_id", run.RunID), zap.Error(err))
		exitWithError(err)
	}

	fmt.Println(ui.Bold.Render(fmt.Sprintf("Run %s, %s (%s), %d/%d files",
		run.RunID, run.Repository, run.Emulator, run.Total-run.Failed, run.Total)))
	for _, rec := range records {
		if rec.Error != "" {
			fmt.Printf("  %s %s\n    %s\n", ui.Failure.Render("✗"), rec.Destination, ui.Muted.Render(rec.Error))
			continue
		}
		fmt.Printf("  %s %s (%d bytes)\n", ui.Success.Render("✓"), rec.Destination, rec.Bytes)
	}
}
