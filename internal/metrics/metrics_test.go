package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/stripecrawl/internal/model"
)

// TestTimings tests phase accumulation.
func TestTimings(t *testing.T) {
	t.Parallel()

	t.Run("accumulates across goroutines", func(t *testing.T) {
		t.Parallel()

		timings := NewTimings()
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				timings.Observe(PhaseFetch, time.Millisecond)
				timings.Observe(PhaseExtract, 2*time.Millisecond)
				timings.Observe(PhaseDedup, 3*time.Millisecond)
			}()
		}
		wg.Wait()

		got := timings.Snapshot()
		if got.Fetch != 10*time.Millisecond {
			t.Errorf("expected fetch 10ms, got %v", got.Fetch)
		}
		if got.Extract != 20*time.Millisecond {
			t.Errorf("expected extract 20ms, got %v", got.Extract)
		}
		if got.Dedup != 30*time.Millisecond {
			t.Errorf("expected dedup 30ms, got %v", got.Dedup)
		}
	})

	t.Run("start returns a stop function", func(t *testing.T) {
		t.Parallel()

		timings := NewTimings()
		stop := timings.Start(PhaseFetch)
		time.Sleep(5 * time.Millisecond)
		stop()

		if got := timings.Snapshot().Fetch; got < 5*time.Millisecond {
			t.Errorf("expected at least 5ms, got %v", got)
		}
	})

	t.Run("nil collector is a no-op", func(t *testing.T) {
		t.Parallel()

		var timings *Timings
		timings.Observe(PhaseFetch, time.Second)
		timings.Start(PhaseDedup)()
		if timings.Snapshot() != nil {
			t.Error("expected nil snapshot from nil collector")
		}
	})

	t.Run("out of range phase is ignored", func(t *testing.T) {
		t.Parallel()

		timings := NewTimings()
		timings.Observe(Phase(42), time.Second)
		if timings.Snapshot().Total() != 0 {
			t.Error("expected unknown phase to be ignored")
		}
	})
}

// TestAppendCSV tests header handling and appending.
func TestAppendCSV(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("writes header once and appends rows", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "runs.csv")

		first := &model.RunSummary{
			Workers:    4,
			Processed:  500,
			StartedAt:  start,
			FinishedAt: start.Add(12500 * time.Millisecond),
			Timings: &model.PhaseTimings{
				Fetch:   40 * time.Second,
				Extract: 1500 * time.Millisecond,
				Dedup:   20 * time.Millisecond,
			},
		}
		second := &model.RunSummary{
			Workers:    8,
			Processed:  503,
			StartedAt:  start,
			FinishedAt: start.Add(7 * time.Second),
		}

		if err := AppendCSV(path, first); err != nil {
			t.Fatalf("first append failed: %v", err)
		}
		if err := AppendCSV(path, second); err != nil {
			t.Fatalf("second append failed: %v", err)
		}

		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), data)
		}
		if !strings.HasPrefix(lines[0], "Threads,ElapsedSeconds") {
			t.Errorf("unexpected header %q", lines[0])
		}
		if strings.Count(string(data), "Threads") != 1 {
			t.Error("expected header to be written once")
		}

		rows, err := ReadCSV(path)
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].Threads != 4 || rows[0].ElapsedSeconds != "12.500" {
			t.Errorf("unexpected first row %+v", rows[0])
		}
		if rows[0].FetchSeconds != "40.000" || rows[0].DedupSeconds != "0.020" {
			t.Errorf("unexpected timing columns %+v", rows[0])
		}
		if rows[1].Threads != 8 || rows[1].FetchSeconds != "" {
			t.Errorf("unexpected second row %+v", rows[1])
		}
	})

	t.Run("fails when path is a directory", func(t *testing.T) {
		t.Parallel()

		if err := AppendCSV(t.TempDir(), &model.RunSummary{}); err == nil {
			t.Error("expected error when path is a directory")
		}
	})
}
