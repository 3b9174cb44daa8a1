package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskflow/internal/model"
)

const (
	keyItems     = "items"
	keyProjects  = "projects"
	keyTemplates = "templates"
)

// Store persists one JSON envelope per logical collection in a single
// key-value table, mirroring the flat-blob persistence model.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS blobs (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) putBlob(key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		key, string(value), now)
	return err
}

func (s *Store) getBlob(key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

type itemsEnvelope struct {
	Items       []model.Task `json:"items"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

func (s *Store) SaveItems(items []model.Task) error {
	env := itemsEnvelope{Items: items, LastUpdated: time.Now().UTC()}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.putBlob(keyItems, data)
}

// LoadItems fails open: a missing or corrupt blob loads as an empty
// collection rather than an error, with a log line for the corrupt case.
func (s *Store) LoadItems() ([]model.Task, error) {
	data, ok, err := s.getBlob(keyItems)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var env itemsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("storage: discarding unreadable items blob: %v", err)
		return nil, nil
	}
	return env.Items, nil
}

type projectsEnvelope struct {
	Projects    []model.Project `json:"projects"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

func (s *Store) SaveProjects(projects []model.Project) error {
	env := projectsEnvelope{Projects: projects, LastUpdated: time.Now().UTC()}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.putBlob(keyProjects, data)
}

func (s *Store) LoadProjects() ([]model.Project, error) {
	data, ok, err := s.getBlob(keyProjects)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var env projectsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("storage: discarding unreadable projects blob: %v", err)
		return nil, nil
	}
	return env.Projects, nil
}

type templatesEnvelope struct {
	Templates   []model.Template `json:"templates"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

func (s *Store) SaveTemplates(templates []model.Template) error {
	env := templatesEnvelope{Templates: templates, LastUpdated: time.Now().UTC()}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.putBlob(keyTemplates, data)
}

func (s *Store) LoadTemplates() ([]model.Template, error) {
	data, ok, err := s.getBlob(keyTemplates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var env templatesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("storage: discarding unreadable templates blob: %v", err)
		return nil, nil
	}
	return env.Templates, nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
