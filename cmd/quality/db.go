package main

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
-- Covers table
CREATE TABLE IF NOT EXISTS covers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    UNIQUE(uri, width, height)
);

-- Results table
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cover_id INTEGER NOT NULL,
    channels TEXT NOT NULL,
    mode TEXT NOT NULL,
    fill REAL NOT NULL,
    payload INTEGER NOT NULL,
    capacity INTEGER NOT NULL,
    success INTEGER NOT NULL,
    changed INTEGER NOT NULL,
    mse REAL NOT NULL,
    psnr REAL,
    elapsed_ns INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (cover_id) REFERENCES covers(id) ON DELETE CASCADE
);
`

type resultStore struct {
	db *sql.DB
}

// openStore opens or creates the SQLite result database
func openStore(dbPath string) (*resultStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &resultStore{db: db}, nil
}

func (s *resultStore) Close() error {
	return s.db.Close()
}

// insertCover inserts or gets an existing cover
func (s *resultStore) insertCover(uri string, width, height int) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		"SELECT id FROM covers WHERE uri = ? AND width = ? AND height = ?",
		uri, width, height,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query cover: %w", err)
	}

	result, err := s.db.Exec(
		"INSERT INTO covers (uri, width, height) VALUES (?, ?, ?)",
		uri, width, height,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cover: %w", err)
	}
	return result.LastInsertId()
}

func (s *resultStore) insertResult(r testResult) error {
	coverID, err := s.insertCover(r.Cover, r.Width, r.Height)
	if err != nil {
		return err
	}
	// +Inf is not a valid SQLite REAL, identical images store NULL
	var psnr sql.NullFloat64
	if r.Success && r.Report.MSE > 0 {
		psnr = sql.NullFloat64{Float64: r.Report.PSNR, Valid: true}
	}
	_, err = s.db.Exec(
		`INSERT INTO results (cover_id, channels, mode, fill, payload, capacity, success, changed, mse, psnr, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		coverID, r.Channels.String(), r.Mode, r.Fill, r.Payload, r.Capacity,
		r.Success, r.Report.Changed, r.Report.MSE, psnr, r.Elapsed.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}
