package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/access"
	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/repository"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// KnowledgeService manages the self-service article base. Published
// articles are world-readable; drafts are staff-only; writes are staff-only.
type KnowledgeService struct {
	knowledge repository.KnowledgeRepository
	logger    *zap.Logger
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(knowledge repository.KnowledgeRepository, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{knowledge: knowledge, logger: logger}
}

// ArticleInput carries article create/update fields.
type ArticleInput struct {
	Title      string
	Content    string
	CategoryID *string
	Tags       []string
	Published  bool
	Featured   bool
}

// ArticleListInput describes listing filters.
type ArticleListInput struct {
	CategoryID   *string
	FeaturedOnly bool
	SearchTerm   *string
	Limit        int
	Offset       int
}

// CreateArticle publishes a new article under a slug derived from the
// title. Slug collisions get a numeric suffix: setup-guide, setup-guide-1.
func (s *KnowledgeService) CreateArticle(ctx context.Context, actor *domain.User, input ArticleInput) (*domain.KnowledgeArticle, error) {
	if !access.CanWriteKnowledge(actor) {
		return nil, apperrors.NewForbidden("only staff may write articles")
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content are required", map[string]any{
			"title":   title == "",
			"content": content == "",
		})
	}

	slug, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	article := &domain.KnowledgeArticle{
		Title:      title,
		Slug:       slug,
		Content:    content,
		CategoryID: input.CategoryID,
		AuthorID:   actor.ID,
		Tags:       normalizeTags(input.Tags),
		Published:  input.Published,
		Featured:   input.Featured,
	}
	if err := s.knowledge.CreateArticle(ctx, article); err != nil {
		return nil, apperrors.MapError(err)
	}
	return article, nil
}

// UpdateArticle edits an article. The slug is stable: retitling never
// breaks existing links.
func (s *KnowledgeService) UpdateArticle(ctx context.Context, actor *domain.User, articleID string, input ArticleInput) (*domain.KnowledgeArticle, error) {
	if !access.CanWriteKnowledge(actor) {
		return nil, apperrors.NewForbidden("only staff may write articles")
	}
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content are required", nil)
	}

	article.Title = title
	article.Content = content
	article.CategoryID = input.CategoryID
	article.Tags = normalizeTags(input.Tags)
	article.Published = input.Published
	article.Featured = input.Featured

	if err := s.knowledge.UpdateArticle(ctx, article); err != nil {
		return nil, apperrors.MapError(err)
	}
	return article, nil
}

// DeleteArticle removes an article. Staff only.
func (s *KnowledgeService) DeleteArticle(ctx context.Context, actor *domain.User, articleID string) error {
	if !access.CanWriteKnowledge(actor) {
		return apperrors.NewForbidden("only staff may delete articles")
	}
	if _, err := s.loadArticle(ctx, articleID); err != nil {
		return err
	}
	if err := s.knowledge.DeleteArticle(ctx, articleID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetArticleBySlug fetches one article. Reading a published article bumps
// its view count; drafts are visible to staff only and never counted.
// A nil actor is an anonymous reader.
func (s *KnowledgeService) GetArticleBySlug(ctx context.Context, actor *domain.User, slug string) (*domain.KnowledgeArticle, error) {
	article, err := s.knowledge.GetArticleBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", map[string]any{"slug": slug})
		}
		return nil, apperrors.MapError(err)
	}
	if !article.Published {
		if !access.CanSeeUnpublishedArticles(actor) {
			return nil, apperrors.NewNotFound("article", map[string]any{"slug": slug})
		}
		return article, nil
	}
	if err := s.knowledge.IncrementViewCount(ctx, article.ID); err != nil {
		s.logger.Warn("view count increment failed", zap.String("article_id", article.ID), zap.Error(err))
	} else {
		article.ViewCount++
	}
	return article, nil
}

// ListArticles returns articles visible to the actor. Non-staff and
// anonymous callers only ever see published articles.
func (s *KnowledgeService) ListArticles(ctx context.Context, actor *domain.User, input ArticleListInput) ([]domain.KnowledgeArticle, error) {
	filter := repository.ArticleFilter{
		CategoryID:   input.CategoryID,
		FeaturedOnly: input.FeaturedOnly,
		SearchTerm:   input.SearchTerm,
		Limit:        input.Limit,
		Offset:       input.Offset,
	}
	if !access.CanSeeUnpublishedArticles(actor) {
		published := true
		filter.Published = &published
	}
	articles, err := s.knowledge.ListArticles(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return articles, nil
}

// CreateCategory adds an article category. Staff only.
func (s *KnowledgeService) CreateCategory(ctx context.Context, actor *domain.User, name, description string) (*domain.KnowledgeCategory, error) {
	if !access.CanWriteKnowledge(actor) {
		return nil, apperrors.NewForbidden("only staff may manage categories")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required", nil)
	}
	category := &domain.KnowledgeCategory{
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.knowledge.CreateCategory(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListCategories returns all article categories.
func (s *KnowledgeService) ListCategories(ctx context.Context) ([]domain.KnowledgeCategory, error) {
	categories, err := s.knowledge.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

func (s *KnowledgeService) loadArticle(ctx context.Context, articleID string) (*domain.KnowledgeArticle, error) {
	article, err := s.knowledge.GetArticleByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", map[string]any{"article_id": articleID})
		}
		return nil, apperrors.MapError(err)
	}
	return article, nil
}

func (s *KnowledgeService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "artigo"
	}
	slug := base
	for i := 1; ; i++ {
		_, err := s.knowledge.GetArticleBySlug(ctx, slug)
		if errors.Is(err, pgx.ErrNoRows) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lowercases, strips accents common in Portuguese titles and
// joins words with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsLetter(r):
			if folded, ok := accentFold[r]; ok {
				b.WriteRune(folded)
				lastHyphen = false
			}
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
