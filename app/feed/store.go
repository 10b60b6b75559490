package feed

import (
	"tributary/app/database"
)

// SourceStore is the slice of source persistence the refresh orchestrator
// needs inside its reconciliation transaction.
type SourceStore interface {
	UpdateCacheTokens(id int64, etag, lastModified string) error
}

// Store abstracts the database for the refresh orchestrator so tests can run
// it against fakes.
type Store interface {
	ListActiveSources() ([]database.Source, error)
	RunInTx(fn func(SourceStore, ArticleStore) error) error
}

// DBStore adapts the sqlite repositories to the Store interface. RunInTx
// hands the callback repositories bound to a single transaction, so a
// refresh either lands whole or not at all.
type DBStore struct {
	db       *database.DB
	sources  *database.SourceRepository
	articles *database.ArticleRepository
}

func NewDBStore(db *database.DB, sources *database.SourceRepository, articles *database.ArticleRepository) *DBStore {
	return &DBStore{db: db, sources: sources, articles: articles}
}

func (s *DBStore) ListActiveSources() ([]database.Source, error) {
	return s.sources.ListActiveSources()
}

func (s *DBStore) RunInTx(fn func(SourceStore, ArticleStore) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if err := fn(s.sources.WithTx(tx), s.articles.WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
