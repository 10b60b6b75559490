package api

import (
	"tributary/app/database"
	"tributary/app/feed"
)

// ExtractorInterface lets tests swap the readability step out.
type ExtractorInterface interface {
	Run(data []byte, pageURL string) (string, error)
}

var _ ExtractorInterface = (*feed.Extractor)(nil)

type Handler struct {
	db           *database.DB
	categories   *database.CategoryRepository
	sources      *database.SourceRepository
	articles     *database.ArticleRepository
	streams      *database.StreamRepository
	client       feed.FetchClient
	discoverer   *feed.Discoverer
	orchestrator *feed.Orchestrator
	ingestor     *feed.Ingestor
	extractor    ExtractorInterface
}

type createSourceRequest struct {
	URL        string `json:"url" binding:"required"`
	CategoryID int64  `json:"category_id"`
}

type updateSourceRequest struct {
	Title          *string `json:"title"`
	Layout         *string `json:"layout"`
	ExcludeFromAll *bool   `json:"exclude_from_all"`
}

type moveSourceRequest struct {
	SourceID   int64 `json:"source_id" binding:"required"`
	CategoryID int64 `json:"category_id" binding:"required"`
}

type reassignSourcesRequest struct {
	SourceIDs  []int64 `json:"source_ids" binding:"required"`
	CategoryID int64   `json:"category_id" binding:"required"`
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type streamSourceRequest struct {
	SourceID int64 `json:"source_id" binding:"required"`
}
