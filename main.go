package main

import (
	"switch-mod-downloader/cmd"
	"switch-mod-downloader/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logger.InitLogger("") // Initialize the logger first
	defer logger.Sync()   // Ensure logs are flushed on exit
	cmd.Execute()
}
