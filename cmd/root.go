package cmd

import (
	"os"

	"switch-mod-downloader/config"
	"switch-mod-downloader/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "switch-mod-downloader",
	Short: "Download mods for your installed Switch games",
	Long: `Scans the emulator's load directory for installed titles, matches them
against a GitHub mod repository and downloads the mods that fit each
title's installed update version.`,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("emulator", "e", "", "emulator to use (yuzu, suyu, eden, citron, torzu, sudachi)")
	flags.StringP("repo", "r", "", "mod repository as owner/name")
	flags.StringP("branch", "b", "", "repository branch")
	flags.IntP("concurrency", "c", 0, "maximum parallel downloads (0 = unbounded)")

	bindFlag("EMULATOR", "emulator")
	bindFlag("REPOSITORY", "repo")
	bindFlag("BRANCH", "branch")
	bindFlag("MAX_CONCURRENT_DOWNLOADS", "concurrency")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		logger.Log.Warnw("Unable to bind flag", zap.String("flag", flag), zap.Error(err))
	}
}

// loadConfig loads configuration from the working directory or exits.
func loadConfig() config.Config {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Errorw("Failed to load configuration", zap.Error(err))
		exitWithError(err)
	}
	return cfg
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
