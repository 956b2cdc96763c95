package db

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := InitDatabase(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDatabase() failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSaveRunAndRecords(t *testing.T) {
	gdb := openTestDB(t)

	run := &DownloadRun{RunID: "11111111-aaaa", Emulator: "yuzu", Repository: "o/r", Branch: "master", Total: 2, Failed: 1}
	records := []DownloadRecord{
		{TitleID: "A", URL: "u1", Destination: "/load/A/m/romfs/1", Bytes: 10},
		{TitleID: "A", URL: "u2", Destination: "/load/A/m/romfs/2", Error: "HTTP 404"},
	}
	if err := SaveRun(gdb, run, records); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	all, err := RunRecords(gdb, run.RunID, false)
	if err != nil {
		t.Fatalf("RunRecords() failed: %v", err)
	}
	if len(all) != 2 || all[0].URL != "u1" || all[1].RunID != run.RunID {
		t.Errorf("unexpected records %+v", all)
	}

	failed, err := RunRecords(gdb, run.RunID, true)
	if err != nil {
		t.Fatalf("RunRecords(failedOnly) failed: %v", err)
	}
	if len(failed) != 1 || failed[0].URL != "u2" {
		t.Errorf("unexpected failed records %+v", failed)
	}
}

func TestRecentRunsAndFindRun(t *testing.T) {
	gdb := openTestDB(t)

	for _, id := range []string{"aaaa-1", "bbbb-2", "bbbc-3"} {
		if err := SaveRun(gdb, &DownloadRun{RunID: id}, nil); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", id, err)
		}
	}

	runs, err := RecentRuns(gdb, 2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "bbbc-3" {
		t.Errorf("RecentRuns() = %+v, want newest first", runs)
	}

	run, err := FindRun(gdb, "aaaa")
	if err != nil || run.RunID != "aaaa-1" {
		t.Errorf("FindRun(aaaa) = %+v, %v", run, err)
	}
	if _, err := FindRun(gdb, "bbb"); err == nil {
		t.Error("FindRun(bbb) should be ambiguous")
	}
	if _, err := FindRun(gdb, "zzzz"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FindRun(zzzz) error = %v, want ErrRunNotFound", err)
	}
}
