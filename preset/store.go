// Package preset persists named provider-filter shortcuts in SQLite.
package preset

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MaxProviders caps how many provider names one preset may hold.
const MaxProviders = 2

var (
	ErrNotFound = errors.New("preset not found")
	// ErrTooLarge is returned at the write boundary when a preset exceeds
	// the provider cap.
	ErrTooLarge = fmt.Errorf("preset holds more than %d providers", MaxProviders)
)

// Preset pairs a saved name with its provider list.
type Preset struct {
	Name      string   `json:"name"`
	Providers []string `json:"providers"`
}

// Store is a SQLite-backed preset repository.
type Store struct {
	db *sql.DB
}

// Open creates the store, initializing the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS presets (
		name      TEXT PRIMARY KEY,
		providers TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save stores or replaces a preset whole. The provider cap is enforced
// here so no oversized preset can ever be persisted.
func (s *Store) Save(name string, providers []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("preset name is required")
	}
	cleaned := make([]string, 0, len(providers))
	for _, p := range providers {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return errors.New("preset needs at least one provider")
	}
	if len(cleaned) > MaxProviders {
		return ErrTooLarge
	}
	blob, err := json.Marshal(cleaned)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO presets (name, providers) VALUES (?, ?)`, name, string(blob))
	return err
}

// Get returns the provider list saved under name.
func (s *Store) Get(name string) ([]string, error) {
	var blob string
	err := s.db.QueryRow(`SELECT providers FROM presets WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var providers []string
	if err := json.Unmarshal([]byte(blob), &providers); err != nil {
		return nil, fmt.Errorf("preset %q is corrupt: %w", name, err)
	}
	return providers, nil
}

// List returns every saved preset ordered by name.
func (s *Store) List() ([]Preset, error) {
	rows, err := s.db.Query(`SELECT name, providers FROM presets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Preset
	for rows.Next() {
		var p Preset
		var blob string
		if err := rows.Scan(&p.Name, &blob); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(blob), &p.Providers); err != nil {
			return nil, fmt.Errorf("preset %q is corrupt: %w", p.Name, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a preset; ErrNotFound when no row matched.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
