package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/atendehq/helpdesk/internal/api/dto"
	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/service"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// KnowledgeHandler serves the article base. Reads work without a session;
// writes require staff.
type KnowledgeHandler struct {
	service *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{service: knowledgeService}
}

// ListArticles GET /knowledge/articles.
func (h *KnowledgeHandler) ListArticles(c *fiber.Ctx) error {
	actor := optionalActor(c)
	input := service.ArticleListInput{
		FeaturedOnly: c.QueryBool("featured", false),
	}
	if categoryID := strings.TrimSpace(c.Query("category_id")); categoryID != "" {
		input.CategoryID = &categoryID
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		input.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Limit = pageSize
	input.Offset = (page - 1) * pageSize

	articles, err := h.service.ListArticles(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	items := make([]dto.ArticleSummary, 0, len(articles))
	for i := range articles {
		items = append(items, dto.ArticleSummaryFromDomain(&articles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetArticle GET /knowledge/articles/:slug.
func (h *KnowledgeHandler) GetArticle(c *fiber.Ctx) error {
	article, err := h.service.GetArticleBySlug(c.UserContext(), optionalActor(c), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ArticleFromDomain(article)})
}

// CreateArticle POST /knowledge/articles.
func (h *KnowledgeHandler) CreateArticle(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.CreateArticle(c.UserContext(), actor, articleInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ArticleFromDomain(article)})
}

// UpdateArticle PUT /knowledge/articles/:id.
func (h *KnowledgeHandler) UpdateArticle(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.UpdateArticle(c.UserContext(), actor, c.Params("id"), articleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ArticleFromDomain(article)})
}

// DeleteArticle DELETE /knowledge/articles/:id.
func (h *KnowledgeHandler) DeleteArticle(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteArticle(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCategories GET /knowledge/categories.
func (h *KnowledgeHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.CategoryFromDomain(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /knowledge/categories.
func (h *KnowledgeHandler) CreateCategory(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.service.CreateCategory(c.UserContext(), actor, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CategoryFromDomain(category)})
}

func articleInput(req dto.ArticleRequest) service.ArticleInput {
	return service.ArticleInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
		Published:  req.Published,
		Featured:   req.Featured,
	}
}

func optionalActor(c *fiber.Ctx) *domain.User {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return nil
	}
	return actor
}
