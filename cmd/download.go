package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"switch-mod-downloader/config"
	"switch-mod-downloader/db"
	"switch-mod-downloader/logger"
	"switch-mod-downloader/mods"
	"switch-mod-downloader/ui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the mods that fit your installed games",
	Long: `Matches the repository listing against installed titles and downloads
every applicable mod file into the emulator's load directory.

Failed files do not stop the others; a summary of every failure is printed
at the end and recorded in the download history.`,
	Run: func(cmd *cobra.Command, _ []string) {
		logger.Log.Info("Running download command...")
		assumeYes, _ := cmd.Flags().GetBool("yes")
		useTUI, _ := cmd.Flags().GetBool("tui")
		runDownload(assumeYes, useTUI)
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	downloadCmd.Flags().Bool("tui", false, "show an interactive progress view")
}

func runDownload(assumeYes, useTUI bool) {
	cfg := loadConfig()
	svc := bootstrap(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	games := readGames(ctx, svc)
	if len(games) == 0 {
		return
	}

	if !assumeYes {
		fmt.Println()
		answer, err := ask("Proceed with download? [Y/n]: ")
		if err != nil || !confirmed(answer) {
			fmt.Println("Operation canceled.")
			return
		}
	}

	runID := uuid.NewString()
	log := logger.Log.With(zap.String("run_id", runID))
	log.Infow("Starting download", zap.Int("games", len(games)), zap.Int("files", len(mods.Jobs(games))))

	var (
		report mods.Report
		err    error
	)
	if useTUI {
		report, err = downloadWithTUI(ctx, svc, games)
	} else {
		report, err = downloadPlain(ctx, svc, games)
	}

	recordHistory(cfg, runID, report, log)

	fmt.Println()
	fmt.Printf("Downloaded %d of %d files.\n", report.Succeeded(), report.Total())
	if err != nil {
		log.Errorw("Download finished with failures", zap.Int("failed", report.Failed()), zap.Error(err))
		fmt.Println(ui.Failure.Render(fmt.Sprintf("%d files failed:", report.Failed())))
		for _, res := range report.Results {
			if res.Err != nil {
				fmt.Printf("  • %s: %v\n", res.Destination, res.Err)
			}
		}
		fmt.Println(ui.Muted.Render("Run ID " + runID))
		logger.Sync()
		os.Exit(1)
	}
	fmt.Println(ui.Success.Render("Operation successful."))
}

// downloadPlain prints one line per finished file.
func downloadPlain(ctx context.Context, svc *mods.Service, games []mods.Game) (mods.Report, error) {
	var mu sync.Mutex
	svc.Downloader.OnProgress = func(ev mods.Event) {
		if ev.Kind == mods.EventStarted {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		mark := ui.Success.Render("✓")
		if ev.Kind == mods.EventFailed {
			mark = ui.Failure.Render("✗")
		}
		fmt.Printf("[%d/%d] %s %s\n", ev.Finished, ev.Total, mark, ev.Job.Destination)
	}
	return svc.DownloadMods(ctx, games)
}

// recordHistory stores the run; history is best effort and never fails the command.
func recordHistory(cfg config.Config, runID string, report mods.Report, log *zap.SugaredLogger) {
	gdb, err := db.InitDatabase(cfg.DatabasePath)
	if err != nil {
		log.Warnw("Failed to open history database", zap.String("path", cfg.DatabasePath), zap.Error(err))
		return
	}

	run := &db.DownloadRun{
		RunID:      runID,
		Emulator:   cfg.Emulator,
		Repository: cfg.Repository,
		Branch:     cfg.Branch,
		Total:      report.Total(),
		Failed:     report.Failed(),
	}
	if err := db.SaveRun(gdb, run, historyRecords(report)); err != nil {
		log.Warnw("Failed to save download history", zap.Error(err))
	}
}
