package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ArticleRepository handles database operations for articles.
type ArticleRepository struct {
	db dbtx
}

func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db.DB}
}

// WithTx returns a repository bound to an explicit transaction.
func (r *ArticleRepository) WithTx(tx *sql.Tx) *ArticleRepository {
	return &ArticleRepository{db: tx}
}

// ArticleFilter selects a slice of the timeline. View values mirror the API:
// "all", "source", "category", "stream", "favorites", "read-later",
// "author", "kinds" (videos/forums/sites resolved to a kind list upstream).
type ArticleFilter struct {
	View       string
	ViewID     int64
	Author     string
	Kinds      []string
	UnreadOnly bool
	Page       int
	PageSize   int
}

const articleColumns = `a.id, a.source_id, a.title, a.link, a.summary, a.full_content,
	COALESCE(a.image_url, ''), a.author, a.published,
	a.is_favorite, a.is_read_later, a.is_read, a.created_at, s.title`

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.SourceID, &a.Title, &a.Link, &a.Summary, &a.FullContent,
		&a.ImageURL, &a.Author, &a.Published,
		&a.IsFavorite, &a.IsReadLater, &a.IsRead, &a.CreatedAt, &a.SourceTitle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article row: %w", err)
	}
	return &a, nil
}

// ArticleExists reports whether an article with the given link is already
// stored. The link is the global dedup key.
func (r *ArticleRepository) ArticleExists(link string) (bool, error) {
	var id int64
	err := r.db.QueryRow(`SELECT id FROM articles WHERE link = ? LIMIT 1`, link).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}
	return true, nil
}

func (r *ArticleRepository) InsertArticle(a *Article) error {
	var imageURL any
	if a.ImageURL != "" {
		imageURL = a.ImageURL
	}

	res, err := r.db.Exec(`
		INSERT INTO articles (source_id, title, link, summary, full_content,
			image_url, author, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.SourceID, a.Title, a.Link, a.Summary, a.FullContent,
		imageURL, a.Author, a.Published.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get article id: %w", err)
	}
	a.ID = id

	return nil
}

func (r *ArticleRepository) GetArticle(id int64) (*Article, error) {
	row := r.db.QueryRow(`
		SELECT `+articleColumns+`
		FROM articles a
		JOIN sources s ON s.id = a.source_id
		WHERE a.id = ?
	`, id)
	return scanArticle(row)
}

// ListArticles returns one page of the filtered timeline plus the unpaged
// total, newest first. All views are scoped to active sources.
func (r *ArticleRepository) ListArticles(f ArticleFilter) ([]Article, int, error) {
	where := []string{"s.deleted_at IS NULL"}
	var args []any

	switch f.View {
	case "", "all":
		where = append(where, "s.exclude_from_all = 0")
	case "source":
		where = append(where, "a.source_id = ?")
		args = append(args, f.ViewID)
	case "category":
		where = append(where, "s.category_id = ?")
		args = append(args, f.ViewID)
	case "stream":
		where = append(where, "a.source_id IN (SELECT source_id FROM stream_sources WHERE stream_id = ?)")
		args = append(args, f.ViewID)
	case "favorites":
		where = append(where, "a.is_favorite = 1")
	case "read-later":
		where = append(where, "a.is_read_later = 1")
	case "author":
		where = append(where, "a.author = ?")
		args = append(args, f.Author)
	case "kinds":
		if len(f.Kinds) == 0 {
			return nil, 0, nil
		}
		placeholders := strings.Repeat("?,", len(f.Kinds))
		where = append(where, "s.kind IN ("+placeholders[:len(placeholders)-1]+")")
		for _, k := range f.Kinds {
			args = append(args, k)
		}
	default:
		return nil, 0, fmt.Errorf("unknown view %q", f.View)
	}

	if f.UnreadOnly {
		where = append(where, "a.is_read = 0")
	}

	base := ` FROM articles a JOIN sources s ON s.id = a.source_id WHERE ` + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	if f.PageSize <= 0 {
		f.PageSize = 24
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.PageSize

	query := `SELECT ` + articleColumns + base + ` ORDER BY a.published DESC, a.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, total, nil
}

func (r *ArticleRepository) toggleFlag(id int64, column string) (bool, error) {
	res, err := r.db.Exec(`UPDATE articles SET `+column+` = NOT `+column+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return false, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}

	var value bool
	if err := r.db.QueryRow(`SELECT `+column+` FROM articles WHERE id = ?`, id).Scan(&value); err != nil {
		return false, fmt.Errorf("failed to read %s: %w", column, err)
	}
	return value, nil
}

func (r *ArticleRepository) ToggleFavorite(id int64) (bool, error) {
	return r.toggleFlag(id, "is_favorite")
}

func (r *ArticleRepository) ToggleReadLater(id int64) (bool, error) {
	return r.toggleFlag(id, "is_read_later")
}

func (r *ArticleRepository) ToggleRead(id int64) (bool, error) {
	return r.toggleFlag(id, "is_read")
}

// SetFullContent fills in extracted content for an article whose feed
// carried none.
func (r *ArticleRepository) SetFullContent(id int64, content string) error {
	res, err := r.db.Exec(`UPDATE articles SET full_content = ? WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("failed to set full content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteOlderThan removes articles published before the cutoff, exempting
// favorites and read-later items.
func (r *ArticleRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM articles
		WHERE published < ?
		  AND is_favorite = 0
		  AND is_read_later = 0
	`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old articles: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted articles: %w", err)
	}
	return deleted, nil
}

func (r *ArticleRepository) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}
