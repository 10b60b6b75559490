package database

import (
	"database/sql"
	"fmt"
	"time"
)

// StreamRepository handles database operations for custom streams.
type StreamRepository struct {
	db dbtx
}

func NewStreamRepository(db *DB) *StreamRepository {
	return &StreamRepository{db: db.DB}
}

func (r *StreamRepository) scanStream(row interface{ Scan(...any) error }) (*Stream, error) {
	var s Stream
	err := row.Scan(&s.ID, &s.Name, &s.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stream row: %w", err)
	}
	return &s, nil
}

func (r *StreamRepository) GetStream(id int64) (*Stream, error) {
	row := r.db.QueryRow(`SELECT id, name, deleted_at FROM streams WHERE id = ?`, id)
	return r.scanStream(row)
}

func (r *StreamRepository) GetStreamByName(name string) (*Stream, error) {
	row := r.db.QueryRow(`SELECT id, name, deleted_at FROM streams WHERE name = ?`, name)
	return r.scanStream(row)
}

func (r *StreamRepository) listStreams(where string) ([]Stream, error) {
	rows, err := r.db.Query(`SELECT id, name, deleted_at FROM streams ` + where)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	defer rows.Close()

	var streams []Stream
	for rows.Next() {
		s, err := r.scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stream rows: %w", err)
	}

	return streams, nil
}

func (r *StreamRepository) ListActiveStreams() ([]Stream, error) {
	return r.listStreams(`WHERE deleted_at IS NULL ORDER BY name`)
}

func (r *StreamRepository) ListRemovedStreams() ([]Stream, error) {
	return r.listStreams(`WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`)
}

func (r *StreamRepository) CreateStream(name string) (*Stream, error) {
	existing, err := r.GetStreamByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("stream %q: %w", name, ErrConflict)
	}

	res, err := r.db.Exec(`INSERT INTO streams (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get stream id: %w", err)
	}

	return &Stream{ID: id, Name: name}, nil
}

func (r *StreamRepository) SoftDeleteStream(id int64, at time.Time) error {
	res, err := r.db.Exec(`
		UPDATE streams SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
	`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to soft delete stream: %w", err)
	}
	return r.requireRow(res, id)
}

func (r *StreamRepository) RestoreStream(id int64) error {
	res, err := r.db.Exec(`UPDATE streams SET deleted_at = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to restore stream: %w", err)
	}
	return r.requireRow(res, id)
}

// HardDeleteStream removes the stream; memberships go via cascade.
func (r *StreamRepository) HardDeleteStream(id int64) error {
	res, err := r.db.Exec(`DELETE FROM streams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stream: %w", err)
	}
	return r.requireRow(res, id)
}

// StreamHasSource is an explicit join-table existence query, used before
// every membership insert.
func (r *StreamRepository) StreamHasSource(streamID, sourceID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM stream_sources WHERE stream_id = ? AND source_id = ?
	`, streamID, sourceID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check stream membership: %w", err)
	}
	return true, nil
}

func (r *StreamRepository) AddSourceToStream(streamID, sourceID int64) error {
	exists, err := r.StreamHasSource(streamID, sourceID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = r.db.Exec(`
		INSERT INTO stream_sources (stream_id, source_id) VALUES (?, ?)
	`, streamID, sourceID)
	if err != nil {
		return fmt.Errorf("failed to add source to stream: %w", err)
	}
	return nil
}

func (r *StreamRepository) RemoveSourceFromStream(streamID, sourceID int64) error {
	_, err := r.db.Exec(`
		DELETE FROM stream_sources WHERE stream_id = ? AND source_id = ?
	`, streamID, sourceID)
	if err != nil {
		return fmt.Errorf("failed to remove source from stream: %w", err)
	}
	return nil
}

func (r *StreamRepository) ListStreamLinks() ([]StreamLink, error) {
	rows, err := r.db.Query(`SELECT stream_id, source_id FROM stream_sources`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stream links: %w", err)
	}
	defer rows.Close()

	var links []StreamLink
	for rows.Next() {
		var l StreamLink
		if err := rows.Scan(&l.StreamID, &l.SourceID); err != nil {
			return nil, fmt.Errorf("failed to scan stream link: %w", err)
		}
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stream links: %w", err)
	}

	return links, nil
}

func (r *StreamRepository) requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("stream %d: %w", id, ErrNotFound)
	}
	return nil
}
