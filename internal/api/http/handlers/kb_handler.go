package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/markdown"
	"github.com/helpdesk-kit/helpdesk/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util/errorutil"
)

// KBHandler serves knowledge-base reading and administration.
type KBHandler struct {
	service  *service.KBService
	renderer markdown.Renderer
	logger   *zap.Logger
}

// NewKBHandler constructs handler.
func NewKBHandler(kbService *service.KBService, renderer markdown.Renderer, logger *zap.Logger) *KBHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KBHandler{service: kbService, renderer: renderer, logger: logger}
}

// Search GET /kb?q=.
func (h *KBHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	articles, categories, err := h.service.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	resp := dto.KBSearchResponse{
		Query:      q,
		Articles:   make([]dto.ArticleSummary, 0, len(articles)),
		Categories: make([]dto.CategoryResponse, 0, len(categories)),
	}
	for i := range articles {
		resp.Articles = append(resp.Articles, articleSummary(&articles[i]))
	}
	for i := range categories {
		resp.Categories = append(resp.Categories, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetArticle GET /kb/articles/:slug counts a view and returns the article.
func (h *KBHandler) GetArticle(c *fiber.Ctx) error {
	article, err := h.service.RecordView(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	html, err := h.renderer.Render(article.Content)
	if err != nil {
		// the raw content is still served
		h.logger.Warn("render article", zap.String("slug", article.Slug), zap.Error(err))
	}
	return c.JSON(fiber.Map{"data": dto.ArticleDetailResponse{
		ArticleSummary: articleSummary(article),
		Content:        article.Content,
		ContentHTML:    html,
	}})
}

// ListCategories GET /kb/categories.
func (h *KBHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /kb/categories.
func (h *KBHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.service.CreateCategory(c.UserContext(), service.CategoryInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// CreateArticle POST /kb/articles.
func (h *KBHandler) CreateArticle(c *fiber.Ctx) error {
	var req dto.CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.CreateArticle(c.UserContext(), service.ArticleCreateInput{
		Title:       req.Title,
		Slug:        req.Slug,
		CategoryID:  req.CategoryID,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": articleSummary(article)})
}

// UpdateArticle PATCH /kb/articles/:id.
func (h *KBHandler) UpdateArticle(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("article", map[string]any{"id": id})
	}
	var req dto.UpdateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.UpdateArticle(c.UserContext(), id, service.ArticleUpdateInput{
		Title:         req.Title,
		Slug:          req.Slug,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Content:       req.Content,
		IsPublished:   req.IsPublished,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleSummary(article)})
}

func articleSummary(article *domain.KBArticle) dto.ArticleSummary {
	summary := dto.ArticleSummary{
		ID:          article.ID,
		Title:       article.Title,
		Slug:        article.Slug,
		IsPublished: article.IsPublished,
		Views:       article.Views,
		CreatedAt:   article.CreatedAt,
		UpdatedAt:   article.UpdatedAt,
	}
	if article.Category != nil {
		category := categoryResponse(article.Category)
		summary.Category = &category
	}
	return summary
}

func categoryResponse(category *domain.KBCategory) dto.CategoryResponse {
	return dto.CategoryResponse{ID: category.ID, Name: category.Name, Slug: category.Slug}
}
