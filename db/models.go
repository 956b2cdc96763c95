package db

import (
	"gorm.io/gorm"
)

// DownloadRun is one invocation of the download command
type DownloadRun struct {
	gorm.Model
	RunID      string `gorm:"uniqueIndex"` // uuid of the run
	Emulator   string
	Repository string
	Branch     string
	Total      int // files attempted
	Failed     int // files that failed
}

// DownloadRecord is the outcome of a single file in a run
type DownloadRecord struct {
	gorm.Model
	RunID       string `gorm:"index"` // References DownloadRun.RunID
	TitleID     string `gorm:"index"`
	TitleName   string
	URL         string
	Destination string
	SHA         string // git blob sha from the listing, informational only
	Bytes       int64
	Error       string // empty on success
}
