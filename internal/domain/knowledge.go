package domain

import "time"

// KnowledgeCategory groups articles.
type KnowledgeCategory struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KnowledgeArticle is a support article. Unpublished articles are visible
// to staff only.
type KnowledgeArticle struct {
	ID         string
	Title      string
	Slug       string
	Content    string
	CategoryID *string
	AuthorID   string
	Tags       []string
	Published  bool
	Featured   bool
	ViewCount  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
