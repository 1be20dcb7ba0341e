package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/nao1215/stripecrawl/internal/model"
)

// Row is one line of the run-summary CSV.
type Row struct {
	Threads        int    `csv:"Threads"`
	ElapsedSeconds string `csv:"ElapsedSeconds"`
	Processed      int64  `csv:"Processed"`
	FetchSeconds   string `csv:"FetchSeconds"`
	ExtractSeconds string `csv:"ExtractSeconds"`
	DedupSeconds   string `csv:"DedupSeconds"`
}

// NewRow converts a run summary into a CSV row.
func NewRow(summary *model.RunSummary) Row {
	row := Row{
		Threads:        summary.Workers,
		ElapsedSeconds: seconds(summary.Elapsed()),
		Processed:      summary.Processed,
	}
	if summary.Timings != nil {
		row.FetchSeconds = seconds(summary.Timings.Fetch)
		row.ExtractSeconds = seconds(summary.Timings.Extract)
		row.DedupSeconds = seconds(summary.Timings.Dedup)
	}
	return row
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// AppendCSV appends summary to the CSV file at path, creating the file and
// its parent directories if needed. The header is written only to an empty file.
func AppendCSV(path string, summary *model.RunSummary) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to open metrics file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat metrics file: %w", err)
	}

	rows := []Row{NewRow(summary)}
	if info.Size() == 0 {
		err = gocsv.MarshalFile(&rows, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(&rows, f)
	}
	if err != nil {
		return fmt.Errorf("failed to write metrics row: %w", err)
	}
	return nil
}

// ReadCSV loads every row from a metrics file.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse metrics file: %w", err)
	}
	return rows, nil
}
