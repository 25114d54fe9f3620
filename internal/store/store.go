package store

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const maxSessions = 500

// Store persists the analysis log to PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the analysis log database at connStr.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM schema_version`)
	if err = row.Scan(&current); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for i := current + 1; i < len(entries); i++ {
		data, readErr := migrationFS.ReadFile("migrations/" + entries[i].Name())
		if readErr != nil {
			return fmt.Errorf("read migration %d: %w", i, readErr)
		}
		if _, execErr := db.Exec(string(data)); execErr != nil {
			return fmt.Errorf("migration %d: %w", i, execErr)
		}
		if _, execErr := db.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, i); execErr != nil {
			return fmt.Errorf("migration %d record: %w", i, execErr)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new session and prunes old ones.
func (s *Store) CreateSession(id string) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES ($1, $2)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`DELETE FROM sessions WHERE id NOT IN (SELECT id FROM sessions ORDER BY started_at DESC LIMIT $1)`,
		maxSessions,
	)
	return err
}

// EndSession sets the ended_at timestamp.
func (s *Store) EndSession(id string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET ended_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	return err
}

// CreateAnalysis inserts a new analysis row in the running state.
func (s *Store) CreateAnalysis(id, sessionID, filename, predictionType string) error {
	_, err := s.db.Exec(
		`INSERT INTO analyses (id, session_id, filename, prediction_type, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, sessionID, filename, predictionType, StatusRunning, time.Now().UTC(),
	)
	return err
}

// FinishAnalysis records the terminal status of an analysis.
func (s *Store) FinishAnalysis(id, status, errMsg string, durationMs float64) error {
	_, err := s.db.Exec(
		`UPDATE analyses SET status = $1, error_msg = $2, duration_ms = $3 WHERE id = $4`,
		status, errMsg, durationMs, id,
	)
	return err
}

// ListAnalyses returns analyses ordered newest first.
func (s *Store) ListAnalyses(limit, offset int) ([]Analysis, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, filename, prediction_type, status, error_msg, started_at, duration_ms
		FROM analyses
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		if err = rows.Scan(&a.ID, &a.SessionID, &a.Filename, &a.PredictionType, &a.Status, &a.Error, &a.StartedAt, &a.DurationMs); err != nil {
			return nil, 0, err
		}
		analyses = append(analyses, a)
	}
	return analyses, total, rows.Err()
}

// GetAnalysis returns a single analysis row.
func (s *Store) GetAnalysis(id string) (*Analysis, error) {
	var a Analysis
	err := s.db.QueryRow(
		`SELECT id, session_id, filename, prediction_type, status, error_msg, started_at, duration_ms
		 FROM analyses WHERE id = $1`, id,
	).Scan(&a.ID, &a.SessionID, &a.Filename, &a.PredictionType, &a.Status, &a.Error, &a.StartedAt, &a.DurationMs)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetSession returns a single session with its analyses.
func (s *Store) GetSession(id string) (*Session, []Analysis, error) {
	var sess Session
	var endedAt sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, started_at, ended_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.StartedAt, &endedAt)
	if err != nil {
		return nil, nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, filename, prediction_type, status, error_msg, started_at, duration_ms
		FROM analyses
		WHERE session_id = $1
		ORDER BY started_at ASC
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		if err = rows.Scan(&a.ID, &a.SessionID, &a.Filename, &a.PredictionType, &a.Status, &a.Error, &a.StartedAt, &a.DurationMs); err != nil {
			return nil, nil, err
		}
		analyses = append(analyses, a)
	}
	sess.RunCount = len(analyses)
	return &sess, analyses, rows.Err()
}
