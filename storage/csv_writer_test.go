package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"craigslist-rental-market/models"
)

func sampleRecord() *models.Record {
	return &models.Record{
		Query: models.Query{Site: "https://sfbay.craigslist.org", Region: "sfc", Bedrooms: 2, MinPrice: 100, MaxPrice: 30000},
		Report: models.StatsReport{Count: 3, Duration: 1234 * time.Millisecond,
			Mean: 200, Median: 200, StDev: 100, High: 300, Low: 100},
		CreatedAt: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestCSVWriterAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reports.csv")

	for i := 0; i < 2; i++ {
		w, err := NewCSVWriter(path)
		if err != nil {
			t.Fatalf("NewCSVWriter: %v", err)
		}
		if err := w.Write(sampleRecord()); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(rows))
	}
	if rows[0][0] != "created_at" {
		t.Errorf("header: got %v", rows[0])
	}
	row := rows[1]
	if row[1] != "https://sfbay.craigslist.org" || row[4] != "2" || row[8] != "1.234" || row[9] != "200.00" {
		t.Errorf("row: got %v", row)
	}
}
