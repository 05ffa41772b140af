package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"CoinSentinel/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			status      TEXT NOT NULL,
			scanned     INTEGER,
			volatile    INTEGER,
			skipped     INTEGER,
			alerts      INTEGER,
			delivered   INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS candidates (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			rank           INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			price          REAL,
			change_percent REAL,
			high_24h       REAL,
			rsi            REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_symbol ON candidates(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run row and its ranked candidates in one transaction.
func (r *SQLiteRecorder) RecordRun(res *model.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var errText sql.NullString
	if res.Err != nil {
		errText = sql.NullString{String: res.Err.Error(), Valid: true}
	}
	if _, err := tx.Exec(`INSERT INTO runs
		(id, started_at, finished_at, status, scanned, volatile, skipped, alerts, delivered, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		res.ID, res.StartedAt.Unix(), res.FinishedAt.Unix(), string(res.Status),
		res.Scanned, res.Volatile, res.Skipped, len(res.Alerts), res.Delivered, errText,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, c := range res.Alerts {
		if _, err := tx.Exec(`INSERT INTO candidates
			(run_id, rank, symbol, price, change_percent, high_24h, rsi)
			VALUES (?,?,?,?,?,?,?)`,
			res.ID, i+1, c.Symbol, c.Price, c.ChangePercent, c.High24h, c.RSI,
		); err != nil {
			return fmt.Errorf("insert candidate %s: %w", c.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
