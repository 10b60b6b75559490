package database

import (
	"database/sql"
	"fmt"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	db dbtx
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db.DB}
}

func (r *CategoryRepository) GetCategory(id int64) (*Category, error) {
	var c Category
	err := r.db.QueryRow(`
		SELECT id, name FROM categories WHERE id = ?
	`, id).Scan(&c.ID, &c.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) GetCategoryByName(name string) (*Category, error) {
	var c Category
	err := r.db.QueryRow(`
		SELECT id, name FROM categories WHERE name = ?
	`, name).Scan(&c.ID, &c.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}

	return &c, nil
}

// GetUncategorized returns the distinguished default category, recreating it
// if it has somehow gone missing.
func (r *CategoryRepository) GetUncategorized() (*Category, error) {
	c, err := r.GetCategoryByName(UncategorizedName)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	res, err := r.db.Exec(`INSERT INTO categories (name) VALUES (?)`, UncategorizedName)
	if err != nil {
		return nil, fmt.Errorf("failed to recreate default category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get default category id: %w", err)
	}

	return &Category{ID: id, Name: UncategorizedName}, nil
}

func (r *CategoryRepository) ListCategories() ([]Category, error) {
	rows, err := r.db.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) CreateCategory(name string) (*Category, error) {
	existing, err := r.GetCategoryByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrConflict)
	}

	res, err := r.db.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	return &Category{ID: id, Name: name}, nil
}

func (r *CategoryRepository) RenameCategory(id int64, name string) error {
	category, err := r.GetCategory(id)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if category.Name == UncategorizedName {
		return fmt.Errorf("cannot rename %q: %w", UncategorizedName, ErrImmutable)
	}

	existing, err := r.GetCategoryByName(name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != id {
		return fmt.Errorf("category %q: %w", name, ErrConflict)
	}

	if _, err := r.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, id); err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}

	return nil
}

// DeleteCategory removes a category, reassigning its sources to the default
// category first. Deleting the default category is always rejected.
func (r *CategoryRepository) DeleteCategory(db *DB, id int64) error {
	category, err := r.GetCategory(id)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if category.Name == UncategorizedName {
		return fmt.Errorf("cannot delete %q: %w", UncategorizedName, ErrImmutable)
	}

	uncategorized, err := r.GetUncategorized()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE sources SET category_id = ? WHERE category_id = ?`, uncategorized.ID, id); err != nil {
		return fmt.Errorf("failed to reassign sources: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category delete: %w", err)
	}

	return nil
}
