package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the reviews database and ensures the schema exists.
func New(path string) (*sql.DB, error) {
	// busy_timeout keeps concurrent handler writes from failing fast with
	// SQLITE_BUSY; foreign_keys enforces the votes -> reviews reference.
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", path)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return conn, nil
}

func migrate(conn *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		place_id TEXT NOT NULL,
		author_name TEXT NOT NULL,
		content TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK(rating >= 1 AND rating <= 5),
		image_path TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		helpful_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS helpful_votes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		review_id INTEGER NOT NULL,
		voter_ip TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (review_id) REFERENCES reviews(id),
		UNIQUE(review_id, voter_ip)
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id);
	CREATE INDEX IF NOT EXISTS idx_helpful_votes_review_id ON helpful_votes(review_id);
	`

	_, err := conn.Exec(schema)
	return err
}
