package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrRunNotFound is returned by FindRun for unknown run ids.
var ErrRunNotFound = errors.New("download run not found")

// SaveRun stores a run and all of its file records in one transaction.
func SaveRun(db *gorm.DB, run *DownloadRun, records []DownloadRecord) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("save run %s: %w", run.RunID, err)
		}
		if len(records) == 0 {
			return nil
		}
		for i := range records {
			records[i].RunID = run.RunID
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("save records of run %s: %w", run.RunID, err)
		}
		return nil
	})
}

// RecentRuns returns up to limit runs, newest first.
func RecentRuns(db *gorm.DB, limit int) ([]DownloadRun, error) {
	var runs []DownloadRun
	err := db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// FindRun looks a run up by its full id or a unique prefix of it.
func FindRun(db *gorm.DB, runID string) (*DownloadRun, error) {
	var runs []DownloadRun
	if err := db.Where("run_id LIKE ?", runID+"%").Limit(2).Find(&runs).Error; err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", runID)
	}
}

// RunRecords returns the file records of a run in insertion order.
func RunRecords(db *gorm.DB, runID string, failedOnly bool) ([]DownloadRecord, error) {
	q := db.Where("run_id = ?", runID)
	if failedOnly {
		q = q.Where("error <> ''")
	}
	var records []DownloadRecord
	err := q.Order("id ASC").Find(&records).Error
	return records, err
}
