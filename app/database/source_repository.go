package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SourceRepository handles database operations for feed sources.
type SourceRepository struct {
	db dbtx
}

func NewSourceRepository(db *DB) *SourceRepository {
	return &SourceRepository{db: db.DB}
}

// WithTx returns a repository bound to an explicit transaction.
func (r *SourceRepository) WithTx(tx *sql.Tx) *SourceRepository {
	return &SourceRepository{db: tx}
}

const sourceColumns = `id, title, url, kind, category_id, deleted_at,
	exclude_from_all, etag, last_modified, layout, created_at`

func (r *SourceRepository) scanSource(row interface{ Scan(...any) error }) (*Source, error) {
	var s Source
	err := row.Scan(&s.ID, &s.Title, &s.URL, &s.Kind, &s.CategoryID, &s.DeletedAt,
		&s.ExcludeFromAll, &s.ETag, &s.LastModified, &s.Layout, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source row: %w", err)
	}
	return &s, nil
}

func (r *SourceRepository) GetSource(id int64) (*Source, error) {
	row := r.db.QueryRow(`SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)
	return r.scanSource(row)
}

func (r *SourceRepository) GetSourceByURL(url string) (*Source, error) {
	row := r.db.QueryRow(`SELECT `+sourceColumns+` FROM sources WHERE url = ?`, url)
	return r.scanSource(row)
}

func (r *SourceRepository) listSources(where string, args ...any) ([]Source, error) {
	rows, err := r.db.Query(`SELECT `+sourceColumns+` FROM sources `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		s, err := r.scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SourceRepository) ListActiveSources() ([]Source, error) {
	return r.listSources(`WHERE deleted_at IS NULL ORDER BY title`)
}

func (r *SourceRepository) ListRemovedSources() ([]Source, error) {
	return r.listSources(`WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`)
}

func (r *SourceRepository) ListSourcesByCategory(categoryID int64) ([]Source, error) {
	return r.listSources(`WHERE deleted_at IS NULL AND category_id = ? ORDER BY title`, categoryID)
}

func (r *SourceRepository) CreateSource(title, url, kind string, categoryID int64) (*Source, error) {
	existing, err := r.GetSourceByURL(url)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("source %q: %w", url, ErrConflict)
	}

	res, err := r.db.Exec(`
		INSERT INTO sources (title, url, kind, category_id)
		VALUES (?, ?, ?, ?)
	`, title, url, kind, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get source id: %w", err)
	}

	return r.GetSource(id)
}

func (r *SourceRepository) UpdateSource(id int64, title, layout string, excludeFromAll bool) error {
	res, err := r.db.Exec(`
		UPDATE sources SET title = ?, layout = ?, exclude_from_all = ?
		WHERE id = ?
	`, title, layout, excludeFromAll, id)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	return r.requireRow(res, id)
}

func (r *SourceRepository) MoveSource(id, categoryID int64) error {
	res, err := r.db.Exec(`UPDATE sources SET category_id = ? WHERE id = ?`, categoryID, id)
	if err != nil {
		return fmt.Errorf("failed to move source: %w", err)
	}
	return r.requireRow(res, id)
}

// SoftDeleteSource tombstones a source, preserving its articles and history.
func (r *SourceRepository) SoftDeleteSource(id int64, at time.Time) error {
	res, err := r.db.Exec(`
		UPDATE sources SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
	`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to soft delete source: %w", err)
	}
	return r.requireRow(res, id)
}

// RestoreSource clears the tombstone and reassigns the source to the given
// (default) category, regardless of where it lived before.
func (r *SourceRepository) RestoreSource(id, categoryID int64) error {
	res, err := r.db.Exec(`
		UPDATE sources SET deleted_at = NULL, category_id = ? WHERE id = ?
	`, categoryID, id)
	if err != nil {
		return fmt.Errorf("failed to restore source: %w", err)
	}
	return r.requireRow(res, id)
}

// HardDeleteSource removes the source; articles and stream memberships go
// with it via foreign-key cascade.
func (r *SourceRepository) HardDeleteSource(id int64) error {
	res, err := r.db.Exec(`DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return r.requireRow(res, id)
}

// UpdateCacheTokens stores the conditional-fetch validators from the latest
// successful response.
func (r *SourceRepository) UpdateCacheTokens(id int64, etag, lastModified string) error {
	_, err := r.db.Exec(`
		UPDATE sources SET etag = ?, last_modified = ? WHERE id = ?
	`, etag, lastModified, id)
	if err != nil {
		return fmt.Errorf("failed to update cache tokens: %w", err)
	}
	return nil
}

func (r *SourceRepository) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sources WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func (r *SourceRepository) requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("source %d: %w", id, ErrNotFound)
	}
	return nil
}
