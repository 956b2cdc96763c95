package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"switch-mod-downloader/config"
	"switch-mod-downloader/db"
	"switch-mod-downloader/emulator"
	"switch-mod-downloader/github"
	"switch-mod-downloader/logger"
	"switch-mod-downloader/mods"
	"switch-mod-downloader/ui"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for the list and download commands.
func bootstrap(cfg config.Config) *mods.Service {
	env, err := emulator.Resolve(cfg.Emulator, logger.Log)
	if err != nil {
		logger.Log.Errorw("Emulator installation not found", zap.String("emulator", cfg.Emulator), zap.Error(err))
		exitWithError(err)
	}

	client, err := github.NewClient(cfg)
	if err != nil {
		logger.Log.Errorw("Failed to create GitHub client", zap.Error(err))
		exitWithError(err)
	}

	downloader := mods.NewDownloader(client, cfg.MaxConcurrentDownloads, cfg.DownloadRateLimit, logger.Log)
	return mods.NewService(cfg.Repository, cfg.Branch, client, env, downloader, logger.Log)
}

// signalContext is cancelled on Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// readGames runs the fetch+match pipeline and prints what was found. It
// returns only the games that have something to download.
func readGames(ctx context.Context, svc *mods.Service) []mods.Game {
	fmt.Printf("Reading %s (%s)...\n", svc.Repository, svc.Branch)

	games, _, err := svc.ReadGameTitles(ctx)
	if err != nil {
		logger.Log.Errorw("Failed to read game titles", zap.Error(err))
		exitWithError(err)
	}

	fmt.Println()
	if len(games) == 0 {
		fmt.Println("No mod installation folders found on this system.")
		return nil
	}

	games = mods.FilterWithMods(games)
	if len(games) == 0 {
		fmt.Println("No mods available for any installed game.")
		return nil
	}

	fmt.Println(ui.Header.Render("Found mods for the following games:"))
	for i, line := range gameSummaries(games) {
		fmt.Printf("  %d) %s\n", i+1, line)
	}
	return games
}

// gameSummaries renders "<title>: N mods" per game.
func gameSummaries(games []mods.Game) []string {
	lines := make([]string, 0, len(games))
	for _, g := range games {
		names := mods.ModNames(g)
		noun := "mods"
		if len(names) == 1 {
			noun = "mod"
		}
		line := fmt.Sprintf("%s: %d %s", g.TitleName, len(names), noun)
		if g.HasUpdate {
			line += ui.Muted.Render(fmt.Sprintf(" (update %s)", g.TitleVersion))
		}
		lines = append(lines, line)
	}
	return lines
}

// ask prints prompt and returns the trimmed answer.
func ask(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirmed treats an empty answer as yes.
func confirmed(answer string) bool {
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true
	}
	return false
}

// historyRecords converts a download report into rows for the history database.
func historyRecords(report mods.Report) []db.DownloadRecord {
	records := make([]db.DownloadRecord, 0, len(report.Results))
	for _, res := range report.Results {
		rec := db.DownloadRecord{
			TitleID:     res.TitleID,
			TitleName:   res.TitleName,
			URL:         res.URL,
			Destination: res.Destination,
			SHA:         res.SHA,
			Bytes:       res.Bytes,
		}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		records = append(records, rec)
	}
	return records
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, ui.Failure.Render("Error: "+err.Error()))
	if errors.Is(err, github.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "Check the repository name and branch.")
	}
	logger.Sync()
	os.Exit(1)
}
