package dto

import (
	"time"

	"github.com/atendehq/helpdesk/internal/domain"
)

// ArticleRequest payload for create and update.
type ArticleRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID *string  `json:"category_id"`
	Tags       []string `json:"tags"`
	Published  bool     `json:"published"`
	Featured   bool     `json:"featured"`
}

// ArticleSummary response for listings; omits the body.
type ArticleSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	CategoryID *string   `json:"category_id"`
	Tags       []string  `json:"tags"`
	Published  bool      `json:"published"`
	Featured   bool      `json:"featured"`
	ViewCount  int64     `json:"view_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArticleResponse full article representation.
type ArticleResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	CategoryID *string   `json:"category_id"`
	AuthorID   string    `json:"author_id"`
	Tags       []string  `json:"tags"`
	Published  bool      `json:"published"`
	Featured   bool      `json:"featured"`
	ViewCount  int64     `json:"view_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CategoryRequest payload.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryResponse representation.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArticleSummaryFromDomain maps an article to its listing shape.
func ArticleSummaryFromDomain(article *domain.KnowledgeArticle) ArticleSummary {
	return ArticleSummary{
		ID:         article.ID,
		Title:      article.Title,
		Slug:       article.Slug,
		CategoryID: article.CategoryID,
		Tags:       article.Tags,
		Published:  article.Published,
		Featured:   article.Featured,
		ViewCount:  article.ViewCount,
		UpdatedAt:  article.UpdatedAt,
	}
}

// ArticleFromDomain maps an article to its full response shape.
func ArticleFromDomain(article *domain.KnowledgeArticle) ArticleResponse {
	return ArticleResponse{
		ID:         article.ID,
		Title:      article.Title,
		Slug:       article.Slug,
		Content:    article.Content,
		CategoryID: article.CategoryID,
		AuthorID:   article.AuthorID,
		Tags:       article.Tags,
		Published:  article.Published,
		Featured:   article.Featured,
		ViewCount:  article.ViewCount,
		CreatedAt:  article.CreatedAt,
		UpdatedAt:  article.UpdatedAt,
	}
}

// CategoryFromDomain maps a category to its response shape.
func CategoryFromDomain(category *domain.KnowledgeCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}
