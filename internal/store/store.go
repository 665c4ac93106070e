// internal/store/store.go
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"planmark/internal/annotation"
)

// Store persists annotations per plan in a SQLite database. It is passed
// explicitly to callers; there is no package-level instance, so tests and
// parallel logical sessions stay isolated.
type Store struct {
	db *sql.DB
}

// Open creates or opens the annotation database at the given path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS annotations (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		slug TEXT NOT NULL,
		type TEXT NOT NULL,
		target_text TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		position TEXT,
		orphaned INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_annotations_plan ON annotations(project, slug);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces one annotation for a plan
func (s *Store) Save(project, slug string, a annotation.Annotation) error {
	var position any
	if a.Position != nil {
		data, err := json.Marshal(a.Position)
		if err != nil {
			return fmt.Errorf("marshal position: %w", err)
		}
		position = string(data)
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO annotations
		(id, project, slug, type, target_text, note, author, created_at, position, orphaned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, project, slug, string(a.Type), a.TargetText, a.Note, a.Author,
		a.CreatedAt.UnixNano(), position, a.Orphaned)
	return err
}

// SaveAll saves a batch of annotations for a plan
func (s *Store) SaveAll(project, slug string, anns []annotation.Annotation) error {
	for _, a := range anns {
		if err := s.Save(project, slug, a); err != nil {
			return err
		}
	}
	return nil
}

// ListByPlan returns all annotations for a plan ordered by creation time
func (s *Store) ListByPlan(project, slug string) ([]annotation.Annotation, error) {
	rows, err := s.db.Query(`
		SELECT id, type, target_text, note, author, created_at, position, orphaned
		FROM annotations WHERE project = ? AND slug = ?
		ORDER BY created_at, id`, project, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var anns []annotation.Annotation
	for rows.Next() {
		var (
			a         annotation.Annotation
			typ       string
			createdAt int64
			position  sql.NullString
		)
		if err := rows.Scan(&a.ID, &typ, &a.TargetText, &a.Note, &a.Author,
			&createdAt, &position, &a.Orphaned); err != nil {
			return nil, err
		}
		a.Type = annotation.Type(typ)
		a.CreatedAt = time.Unix(0, createdAt)
		if position.Valid {
			var pos annotation.Position
			if err := json.Unmarshal([]byte(position.String), &pos); err != nil {
				return nil, fmt.Errorf("unmarshal position: %w", err)
			}
			a.Position = &pos
		}
		anns = append(anns, a)
	}
	return anns, rows.Err()
}

// Delete removes one annotation by id
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM annotations WHERE id = ?", id)
	return err
}

// DeleteByPlan removes all annotations for a plan
func (s *Store) DeleteByPlan(project, slug string) error {
	_, err := s.db.Exec("DELETE FROM annotations WHERE project = ? AND slug = ?", project, slug)
	return err
}

// CountByPlan returns the number of annotations stored for a plan
func (s *Store) CountByPlan(project, slug string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM annotations WHERE project = ? AND slug = ?",
		project, slug).Scan(&count)
	return count, err
}
