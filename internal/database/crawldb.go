package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/stripecrawl/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "stripecrawl.db"

// CrawlDB provides SQLite-based storage for crawl runs, the pages they
// fetched and the links those pages contained.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// ErrDatabaseNotFound is returned by Open when the database file is missing
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("database not found")

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every worker writes through this handle. One connection serializes
	// them, which is what SQLite does with writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run; summary columns are filled in when the run finishes
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		workers INTEGER NOT NULL,
		max_links INTEGER NOT NULL,
		processed INTEGER DEFAULT 0,
		fetched INTEGER DEFAULT 0,
		fetch_errors INTEGER DEFAULT 0,
		visited INTEGER DEFAULT 0,
		enqueued INTEGER DEFAULT 0,
		stop_reason TEXT DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT DEFAULT '',
		timings TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages fetched during a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		size INTEGER NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(content_hash);

	-- Links found on fetched pages
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		from_url TEXT NOT NULL,
		to_url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_from ON links(run_id, from_url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// BeginRun records the start of a crawl and returns a recorder that stores
// the run's pages and links.
func (cdb *CrawlDB) BeginRun(ctx context.Context, seed string, workers, maxLinks int, startedAt time.Time) (*RunRecorder, error) {
	query := `
	INSERT INTO runs (seed, workers, max_links, started_at)
	VALUES (?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query, seed, workers, maxLinks, formatTimestamp(startedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get run id: %w", err)
	}

	return &RunRecorder{cdb: cdb, runID: id}, nil
}

// FinishRun stores the final summary of run id and sets summary.ID.
func (cdb *CrawlDB) FinishRun(ctx context.Context, id int64, summary *model.RunSummary) error {
	var timings string
	if summary.Timings != nil {
		data, err := json.Marshal(summary.Timings)
		if err != nil {
			return fmt.Errorf("failed to serialize timings: %w", err)
		}
		timings = string(data)
	}

	query := `
	UPDATE runs SET
		processed = ?,
		fetched = ?,
		fetch_errors = ?,
		visited = ?,
		enqueued = ?,
		stop_reason = ?,
		started_at = ?,
		finished_at = ?,
		timings = ?
	WHERE id = ?
	`

	result, err := cdb.db.ExecContext(ctx, query,
		summary.Processed,
		summary.Fetched,
		summary.FetchErrors,
		summary.Visited,
		summary.Enqueued,
		string(summary.StopReason),
		formatTimestamp(summary.StartedAt),
		formatTimestamp(summary.FinishedAt),
		timings,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}

	summary.ID = id
	return nil
}

// ErrRunNotFound is returned when updating a run id that does not exist.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seed, workers, max_links, processed, fetched, fetch_errors,
	visited, enqueued, stop_reason, started_at, finished_at, timings`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one runs row into a RunSummary.
func scanRun(row rowScanner) (*model.RunSummary, error) {
	var (
		summary    model.RunSummary
		reason     string
		startedAt  string
		finishedAt string
		timings    string
	)

	err := row.Scan(
		&summary.ID,
		&summary.Seed,
		&summary.Workers,
		&summary.MaxLinks,
		&summary.Processed,
		&summary.Fetched,
		&summary.FetchErrors,
		&summary.Visited,
		&summary.Enqueued,
		&reason,
		&startedAt,
		&finishedAt,
		&timings,
	)
	if err != nil {
		return nil, err
	}

	// Runs that never finished have no stop reason.
	if reason != "" {
		if summary.StopReason, err = model.ParseStopReason(reason); err != nil {
			return nil, fmt.Errorf("run %d: %w", summary.ID, err)
		}
	}
	summary.StartedAt = parseTimestamp(startedAt)
	summary.FinishedAt = parseTimestamp(finishedAt)

	if timings != "" {
		summary.Timings = &model.PhaseTimings{}
		if err := json.Unmarshal([]byte(timings), summary.Timings); err != nil {
			return nil, fmt.Errorf("failed to parse timings: %w", err)
		}
	}

	return &summary, nil
}

// GetRun retrieves a run by ID. It returns nil if the run does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, id int64) (*model.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	summary, err := scanRun(cdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return summary, nil
}

// ListRuns returns the most recent runs, newest first.
// A non-positive limit returns every run.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]*model.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*model.RunSummary, 0)
	for rows.Next() {
		summary, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// PageRecord is a stored page fetch.
type PageRecord struct {
	RunID       int64
	URL         string
	ContentHash string
	Size        int
	FetchedAt   time.Time
}

// GetPage retrieves a page of a run. It returns nil if the page was not stored.
func (cdb *CrawlDB) GetPage(ctx context.Context, runID int64, url string) (*PageRecord, error) {
	query := `
	SELECT run_id, url, content_hash, size, fetched_at
	FROM pages
	WHERE run_id = ? AND url = ?
	`

	var (
		page      PageRecord
		fetchedAt string
	)
	err := cdb.db.QueryRowContext(ctx, query, runID, url).Scan(
		&page.RunID,
		&page.URL,
		&page.ContentHash,
		&page.Size,
		&fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.FetchedAt = parseTimestamp(fetchedAt)
	return &page, nil
}

// CountPages returns how many pages a run stored.
func (cdb *CrawlDB) CountPages(ctx context.Context, runID int64) (int, error) {
	var n int
	err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// LinksFrom returns the links stored for a page of a run, in the order they were found.
func (cdb *CrawlDB) LinksFrom(ctx context.Context, runID int64, fromURL string) ([]string, error) {
	query := `
	SELECT to_url FROM links
	WHERE run_id = ? AND from_url = ?
	ORDER BY id ASC
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID, fromURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	links := make([]string, 0)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate links: %w", err)
	}

	return links, nil
}

// RunRecorder stores the pages and links of one run.
// It satisfies crawler.ArtifactSink and is safe for concurrent use.
type RunRecorder struct {
	cdb   *CrawlDB
	runID int64
}

// RunID returns the database ID of the run being recorded.
func (r *RunRecorder) RunID() int64 {
	return r.runID
}

// Write stores the content hash and size of a fetched page.
// The content itself is not kept.
func (r *RunRecorder) Write(ctx context.Context, url string, content []byte) error {
	query := `
	INSERT INTO pages (run_id, url, content_hash, size)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO UPDATE SET
		content_hash = excluded.content_hash,
		size = excluded.size,
		fetched_at = CURRENT_TIMESTAMP
	`

	if _, err := r.cdb.db.ExecContext(ctx, query, r.runID, url, ContentHash(content), len(content)); err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// WriteLinks stores the links of a page in one transaction.
func (r *RunRecorder) WriteLinks(ctx context.Context, url string, links []string) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := r.cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO links (run_id, from_url, to_url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for _, link := range links {
		if _, err := stmt.ExecContext(ctx, r.runID, url, link); err != nil {
			return fmt.Errorf("failed to insert link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit links: %w", err)
	}
	return nil
}

// Finish stores the run's final summary.
func (r *RunRecorder) Finish(ctx context.Context, summary *model.RunSummary) error {
	return r.cdb.FinishRun(ctx, r.runID, summary)
}

// ContentHash returns the hex SHA3-256 digest used to identify page content.
func ContentHash(content []byte) string {
	sum := sha3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// formatTimestamp renders t for storage. The zero time is stored as "".
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats stored or returned by SQLite.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite CURRENT_TIMESTAMP
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
