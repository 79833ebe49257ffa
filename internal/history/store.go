// Package history records rimdefs build runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/rimdefs/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when no run matches an id.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an id prefix matches more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id")

// Run is one recorded build.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time // Zero while the run is in progress
	Version      string
	OutDir       string
	Status       string // models.StatusRunning, StatusSucceeded or StatusFailed
	ErrorMessage string
	Items        int
	Skipped      int
	DefTypes     int
}

// Duration returns the run time, or zero for an unfinished run.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// LayerRecord is the stored outcome of one layer of a run.
type LayerRecord struct {
	Layer      string
	ModRoots   int
	Documents  int
	Items      int
	Skipped    int
	OutputPath string
	Duration   time.Duration
}

// SkippedRecord is a document skipped during a run.
type SkippedRecord struct {
	Layer   string
	Path    string
	Message string
}

// RunDetail is a run together with its layers and skipped documents.
type RunDetail struct {
	Run     *Run
	Layers  []LayerRecord
	Skipped []SkippedRecord
}

// Store manages the SQLite database of build runs
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	// busy_timeout goes first so the rest wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun records a new run in the running state and returns it.
func (s *Store) StartRun(ctx context.Context, version, outDir string, startedAt time.Time) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
		Version:   version,
		OutDir:    outDir,
		Status:    models.StatusRunning,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, version, out_dir, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Version, run.OutDir, run.Status)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the outcome of a run: its totals, every layer that
// finished and their skipped documents. A non-nil runErr marks the run
// failed.
func (s *Store) FinishRun(ctx context.Context, id string, result *models.BuildResult, runErr error) error {
	if result == nil {
		result = &models.BuildResult{}
	}

	status := models.StatusSucceeded
	errMsg := ""
	if runErr != nil {
		status = models.StatusFailed
		errMsg = runErr.Error()
	}
	finishedAt := result.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, error_message = ?, items = ?, skipped = ?, def_types = ?
		 WHERE id = ?`,
		finishedAt, status, errMsg, result.TotalItems(), result.TotalSkipped(), result.DefTypes, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}

	for i, layer := range result.Layers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO layer_results (run_id, position, layer, mod_roots, documents, items, skipped, output_path, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, layer.Layer, len(layer.ModRoots), layer.Documents, layer.Items, len(layer.Skipped),
			layer.OutputPath, layer.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("insert layer %s: %w", layer.Layer, err)
		}
		for _, doc := range layer.Skipped {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO skipped_documents (run_id, layer, path, message) VALUES (?, ?, ?, ?)`,
				id, layer.Layer, doc.Path, doc.Message)
			if err != nil {
				return fmt.Errorf("insert skipped document: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, version, out_dir, status, error_message, items, skipped, def_types`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	r := &Run{}
	var finished sql.NullTime
	var errMsg sql.NullString
	if err := row.Scan(&r.ID, &r.StartedAt, &finished, &r.Version, &r.OutDir, &r.Status,
		&errMsg, &r.Items, &r.Skipped, &r.DefTypes); err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	r.ErrorMessage = errMsg.String
	return r, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its layers and skipped documents. id may be
// a unique prefix of the full run id.
func (s *Store) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}

	run, err := s.findRun(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &RunDetail{Run: run, Layers: []LayerRecord{}, Skipped: []SkippedRecord{}}

	layerRows, err := s.db.QueryContext(ctx,
		`SELECT layer, mod_roots, documents, items, skipped, output_path, duration_ms
		 FROM layer_results WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("query layers: %w", err)
	}
	for layerRows.Next() {
		var l LayerRecord
		var out sql.NullString
		var ms int64
		if err := layerRows.Scan(&l.Layer, &l.ModRoots, &l.Documents, &l.Items, &l.Skipped, &out, &ms); err != nil {
			layerRows.Close()
			return nil, fmt.Errorf("scan layer: %w", err)
		}
		l.OutputPath = out.String
		l.Duration = time.Duration(ms) * time.Millisecond
		detail.Layers = append(detail.Layers, l)
	}
	err = layerRows.Err()
	layerRows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate layers: %w", err)
	}

	skipRows, err := s.db.QueryContext(ctx,
		`SELECT layer, path, message FROM skipped_documents WHERE run_id = ? ORDER BY id`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("query skipped documents: %w", err)
	}
	defer skipRows.Close()
	for skipRows.Next() {
		var d SkippedRecord
		var msg sql.NullString
		if err := skipRows.Scan(&d.Layer, &d.Path, &msg); err != nil {
			return nil, fmt.Errorf("scan skipped document: %w", err)
		}
		d.Message = msg.String
		detail.Skipped = append(detail.Skipped, d)
	}
	if err := skipRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skipped documents: %w", err)
	}

	return detail, nil
}

func (s *Store) findRun(ctx context.Context, prefix string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s: %w", prefix, ErrRunNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", prefix, ErrAmbiguousID)
	}
}
