// Package places is a local gazetteer mapping place names to the location
// identifiers (WOEIDs) the weather API expects.
package places

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const maxResults = 10

// DB wraps a database connection
type DB struct {
	*sql.DB
}

// Place is one row of the gazetteer.
type Place struct {
	WOEID   string `json:"woeid"`
	Name    string `json:"name"`
	Admin   string `json:"admin,omitempty"`
	Country string `json:"country,omitempty"`
}

// Open opens (creating if needed) the SQLite gazetteer at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS places (
		woeid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		admin TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_places_name ON places(name);`)
	return err
}

// SearchPlaces returns up to ten places whose name contains query, names
// starting with query first. An empty query matches nothing.
func (db *DB) SearchPlaces(query string) ([]Place, error) {
	if db == nil || db.DB == nil {
		return nil, errors.New("database not initialized")
	}

	term := sanitizeLikeTerm(strings.TrimSpace(query))
	if term == "" {
		return nil, nil
	}

	rows, err := db.Query(`
		SELECT woeid, name, admin, country
		FROM places
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY CASE WHEN name LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name
		LIMIT ?`,
		"%"+term+"%", term+"%", maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search places for %q: %w", query, err)
	}
	defer rows.Close()

	var result []Place
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.WOEID, &p.Name, &p.Admin, &p.Country); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return result, nil
}

// Import loads a tab separated file with a header row and the columns
// woeid, name, admin, country. Malformed rows are skipped. It returns the
// number of rows stored.
func (db *DB) Import(r io.Reader) (int, error) {
	if db == nil || db.DB == nil {
		return 0, errors.New("database not initialized")
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO places (woeid, name, admin, country) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed lines
		}
		if len(record) < 2 {
			continue
		}

		woeid := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if woeid == "" || name == "" {
			continue
		}
		admin, country := "", ""
		if len(record) > 2 {
			admin = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			country = strings.TrimSpace(record[3])
		}

		if _, err := stmt.Exec(woeid, name, admin, country); err != nil {
			log.Printf("Error inserting %s: %v", name, err)
			continue
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

// sanitizeLikeTerm escapes LIKE wildcards so they match literally.
func sanitizeLikeTerm(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
