// Package report renders history records as CSV documents.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gusamyky/ftpfs/pkg/store/models"
)

// Header is the first row of every generated report.
var Header = []string{"id", "clientId", "operation", "timestamp"}

// Write renders records as CSV to w, header first. Fields containing
// separators or quotes are escaped by encoding/csv.
func Write(w io.Writer, records []*models.HistoryRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatUint(uint64(rec.ID), 10),
			rec.OwnerID,
			rec.Operation,
			rec.OccurredAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// Filename returns the per-user report filename.
func Filename(username string) string {
	return fmt.Sprintf("report_%s.csv", username)
}

// WriteFile renders records to report_<username>.csv inside dir and returns
// the full path. An existing report for the same user is overwritten.
func WriteFile(dir, username string, records []*models.HistoryRecord) (string, error) {
	path := filepath.Join(dir, Filename(username))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if err := Write(f, records); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}
