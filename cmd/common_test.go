package cmd

import (
	"errors"
	"strings"
	"testing"

	"switch-mod-downloader/mods"
)

func TestConfirmed(t *testing.T) {
	tests := []struct {
		answer   string
		expected bool
	}{
		{"", true},
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"YES", true},
		{"n", false},
		{"no", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			if got := confirmed(tt.answer); got != tt.expected {
				t.Errorf("confirmed(%q) = %v, want %v", tt.answer, got, tt.expected)
			}
		})
	}
}

func TestGameSummaries(t *testing.T) {
	games := []mods.Game{
		{
			TitleName: "Zelda",
			ModDownloadEntries: []mods.ModDownloadEntry{
				{ModRelativePath: "60fps/exefs/main.pchtxt"},
				{ModRelativePath: "60fps/exefs/extra.pchtxt"},
			},
		},
		{
			TitleName:    "Mario",
			TitleVersion: "1.2.0",
			HasUpdate:    true,
			ModDownloadEntries: []mods.ModDownloadEntry{
				{ModRelativePath: "4K/romfs/a.bin"},
				{ModRelativePath: "60fps/exefs/b.pchtxt"},
			},
		},
	}

	lines := gameSummaries(games)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "Zelda: 1 mod" {
		t.Errorf("Unexpected summary %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Mario: 2 mods") {
		t.Errorf("Unexpected summary %q", lines[1])
	}
	if !strings.Contains(lines[1], "update 1.2.0") {
		t.Errorf("Expected update version in %q", lines[1])
	}
}

func TestHistoryRecords(t *testing.T) {
	report := mods.Report{Results: []mods.Result{
		{
			Job:   mods.Job{TitleID: "0100A", TitleName: "Zelda", URL: "https://example.com/a", Destination: "/mods/a", SHA: "abc"},
			Bytes: 42,
		},
		{
			Job: mods.Job{TitleID: "0100B", TitleName: "Mario", URL: "https://example.com/b", Destination: "/mods/b"},
			Err: errors.New("connection reset"),
		},
	}}

	records := historyRecords(report)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	ok := records[0]
	if ok.TitleID != "0100A" || ok.Destination != "/mods/a" || ok.SHA != "abc" || ok.Bytes != 42 {
		t.Errorf("Unexpected record %+v", ok)
	}
	if ok.Error != "" {
		t.Errorf("Expected no error, got %q", ok.Error)
	}

	failed := records[1]
	if failed.Error != "connection reset" {
		t.Errorf("Expected error text to be kept, got %q", failed.Error)
	}
	if failed.RunID != "" {
		t.Errorf("RunID is assigned by SaveRun, got %q", failed.RunID)
	}
}
