package database

import (
	"errors"
	"testing"
)

func TestCreateCategoryConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	if _, err := repo.CreateCategory("Tech"); err != nil {
		t.Fatal(err)
	}
	_, err := repo.CreateCategory("Tech")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
}

func TestRenameCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	category, err := repo.CreateCategory("Old Name")
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.RenameCategory(category.ID, "New Name"); err != nil {
		t.Fatal(err)
	}

	renamed, err := repo.GetCategory(category.ID)
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "New Name" {
		t.Errorf("Expected 'New Name', got '%s'", renamed.Name)
	}
}

func TestRenameUncategorizedRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	uncategorized, err := repo.GetUncategorized()
	if err != nil {
		t.Fatal(err)
	}

	err = repo.RenameCategory(uncategorized.ID, "Something Else")
	if !errors.Is(err, ErrImmutable) {
		t.Errorf("Expected ErrImmutable, got %v", err)
	}
}

func TestDeleteUncategorizedRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	uncategorized, err := repo.GetUncategorized()
	if err != nil {
		t.Fatal(err)
	}

	err = repo.DeleteCategory(db, uncategorized.ID)
	if !errors.Is(err, ErrImmutable) {
		t.Errorf("Expected ErrImmutable, got %v", err)
	}
}

func TestDeleteCategoryReassignsSources(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryRepository(db)
	sources := NewSourceRepository(db)

	category, err := categories.CreateCategory("Doomed")
	if err != nil {
		t.Fatal(err)
	}
	source := mustCreateSource(t, sources, "Feed", "https://example.com/feed", category.ID)

	if err := categories.DeleteCategory(db, category.ID); err != nil {
		t.Fatal(err)
	}

	if gone, _ := categories.GetCategory(category.ID); gone != nil {
		t.Error("Category should be deleted")
	}

	uncategorized, _ := categories.GetUncategorized()
	moved, err := sources.GetSource(source.ID)
	if err != nil {
		t.Fatal(err)
	}
	if moved.CategoryID != uncategorized.ID {
		t.Errorf("Source should be reassigned to Uncategorized, got category %d", moved.CategoryID)
	}
}

func TestDeleteMissingCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	err := repo.DeleteCategory(db, 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetUncategorizedRecreates(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	// Remove the row behind the repository's back.
	if _, err := db.Exec(`DELETE FROM categories WHERE name = ?`, UncategorizedName); err != nil {
		t.Fatal(err)
	}

	category, err := repo.GetUncategorized()
	if err != nil {
		t.Fatal(err)
	}
	if category == nil || category.Name != UncategorizedName {
		t.Errorf("Expected Uncategorized recreated, got %+v", category)
	}
}
