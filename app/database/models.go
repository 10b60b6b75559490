package database

import (
	"time"
)

// UncategorizedName is the distinguished category every installation carries.
// It can be neither renamed nor deleted.
const UncategorizedName = "Uncategorized"

type Category struct {
	ID   int64
	Name string
}

type Source struct {
	ID             int64
	Title          string
	URL            string // canonical fetch URL, unique
	Kind           string // closed classification, computed once at creation
	CategoryID     int64
	DeletedAt      *time.Time // nil = active
	ExcludeFromAll bool
	ETag           string // conditional-fetch validators
	LastModified   string
	Layout         string // optional display-layout hint
	CreatedAt      time.Time
}

type Article struct {
	ID          int64
	SourceID    int64
	Title       string
	Link        string // dedup key, unique
	Summary     string
	FullContent string
	ImageURL    string // empty = none resolved
	Author      string
	Published   time.Time
	IsFavorite  bool
	IsReadLater bool
	IsRead      bool
	CreatedAt   time.Time

	SourceTitle string // joined for listings, not a column
}

type Stream struct {
	ID        int64
	Name      string
	DeletedAt *time.Time
}

type StreamLink struct {
	StreamID int64
	SourceID int64
}
