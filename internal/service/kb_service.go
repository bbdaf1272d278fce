package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util/errorutil"
	"github.com/helpdesk-kit/helpdesk/pkg/util/validation"
)

const (
	suggestLimit = 5
	// slugRetries bounds re-assignment when a concurrent writer claims the
	// same generated slug between the check and the insert.
	slugRetries = 3
)

// KBService serves knowledge-base search, suggestions and administration.
type KBService struct {
	articles   repository.KBArticleRepository
	categories repository.KBCategoryRepository
	logger     *zap.Logger
}

// KBDependencies bundles repositories for the KB service.
type KBDependencies struct {
	ArticleRepo  repository.KBArticleRepository
	CategoryRepo repository.KBCategoryRepository
	Logger       *zap.Logger
}

// CategoryInput describes a new category. Slug is derived from Name when empty.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"max=140"`
}

// ArticleCreateInput describes a new article. Slug is derived from Title
// when empty; IsPublished defaults to true.
type ArticleCreateInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Slug        string  `json:"slug" validate:"max=220"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	Content     string  `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

// ArticleUpdateInput carries editable article fields. Nil means unchanged.
// An explicitly empty Slug re-derives it from the title.
type ArticleUpdateInput struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=200"`
	Slug          *string `json:"slug" validate:"omitempty,max=220"`
	CategoryID    *string `json:"category_id" validate:"omitempty,uuid"`
	ClearCategory bool    `json:"clear_category"`
	Content       *string `json:"content"`
	IsPublished   *bool   `json:"is_published"`
}

// NewKBService constructs the service.
func NewKBService(deps KBDependencies) *KBService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KBService{
		articles:   deps.ArticleRepo,
		categories: deps.CategoryRepo,
		logger:     logger,
	}
}

// Suggest returns up to five published articles whose title contains q.
// A blank query yields no suggestions.
func (s *KBService) Suggest(ctx context.Context, q string) ([]domain.KBSuggestion, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.KBSuggestion{}, nil
	}
	articles, err := s.articles.Search(ctx, repository.KBArticleFilter{
		PublishedOnly: true,
		TitleContains: q,
		Limit:         suggestLimit,
	})
	if err != nil {
		return nil, err
	}
	suggestions := make([]domain.KBSuggestion, 0, len(articles))
	for _, a := range articles {
		suggestions = append(suggestions, domain.KBSuggestion{Title: a.Title, Slug: a.Slug})
	}
	return suggestions, nil
}

// Search lists published articles newest first, narrowed to title or content
// matches when q is not blank, together with every category.
func (s *KBService) Search(ctx context.Context, q string) ([]domain.KBArticle, []domain.KBCategory, error) {
	articles, err := s.articles.Search(ctx, repository.KBArticleFilter{
		PublishedOnly: true,
		Query:         strings.TrimSpace(q),
	})
	if err != nil {
		return nil, nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return articles, categories, nil
}

// RecordView loads a published article and counts one view. The increment
// happens in the store so concurrent views are never lost.
func (s *KBService) RecordView(ctx context.Context, slug string) (*domain.KBArticle, error) {
	article, err := s.articles.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("article", map[string]any{"slug": slug})
		}
		return nil, err
	}
	views, err := s.articles.IncrementViews(ctx, article.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("article", map[string]any{"slug": slug})
		}
		return nil, err
	}
	article.Views = views
	return article, nil
}

// ListCategories returns every category ordered by name.
func (s *KBService) ListCategories(ctx context.Context) ([]domain.KBCategory, error) {
	return s.categories.List(ctx)
}

// CreateCategory stores a category. Category slugs get no collision suffix;
// a duplicate is reported as a conflict.
func (s *KBService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.KBCategory, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	slug := domain.CategorySlugBase(input.Name)
	if input.Slug != "" {
		slug = domain.CategorySlugBase(input.Slug)
	}
	if slug == "" {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{
			"slug": "slug must contain at least one letter or digit",
		})
	}

	category := &domain.KBCategory{Name: input.Name, Slug: slug}
	if err := s.categories.Create(ctx, category); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("category already exists", map[string]any{"slug": slug})
		}
		return nil, err
	}
	s.logger.Info("kb category created", zap.String("slug", category.Slug))
	return category, nil
}

// CreateArticle stores an article, assigning a unique slug when none is given.
func (s *KBService) CreateArticle(ctx context.Context, input ArticleCreateInput) (*domain.KBArticle, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.CategoryID = trimOptional(input.CategoryID)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	article := &domain.KBArticle{
		Title:       input.Title,
		Slug:        domain.Slugify(input.Slug),
		CategoryID:  input.CategoryID,
		Content:     input.Content,
		IsPublished: true,
	}
	if input.IsPublished != nil {
		article.IsPublished = *input.IsPublished
	}

	if err := s.saveArticle(ctx, article, s.articles.Create); err != nil {
		return nil, err
	}
	s.logger.Info("kb article created", zap.String("slug", article.Slug))
	return article, nil
}

// UpdateArticle edits an article. The slug never follows title changes.
func (s *KBService) UpdateArticle(ctx context.Context, id string, input ArticleUpdateInput) (*domain.KBArticle, error) {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("article", map[string]any{"id": id})
		}
		return nil, err
	}

	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Slug != nil {
		article.Slug = domain.Slugify(*input.Slug)
	}
	if input.ClearCategory {
		article.CategoryID = nil
	} else if input.CategoryID != nil {
		categoryID := *input.CategoryID
		article.CategoryID = &categoryID
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.IsPublished != nil {
		article.IsPublished = *input.IsPublished
	}
	article.Category = nil

	if err := s.saveArticle(ctx, article, s.articles.Update); err != nil {
		return nil, err
	}
	return article, nil
}

// saveArticle persists via save, generating the slug when it is empty. A
// generated slug that loses an insert race is regenerated; an explicit one
// surfaces as a conflict.
func (s *KBService) saveArticle(ctx context.Context, article *domain.KBArticle, save func(context.Context, *domain.KBArticle) error) error {
	generated := article.Slug == ""
	for attempt := 0; ; attempt++ {
		if generated {
			article.Slug = ""
			if err := s.assignArticleSlug(ctx, article); err != nil {
				return err
			}
		}
		err := save(ctx, article)
		if err == nil {
			return nil
		}
		if !apperrors.IsUniqueViolation(err) {
			return err
		}
		if !generated || attempt+1 >= slugRetries {
			return apperrors.NewConflict("article slug already in use", map[string]any{"slug": article.Slug})
		}
	}
}

// assignArticleSlug fills an empty slug with the first free candidate,
// ignoring the article itself so a re-save keeps its slug.
func (s *KBService) assignArticleSlug(ctx context.Context, article *domain.KBArticle) error {
	if article.Slug != "" {
		return nil
	}
	base := domain.ArticleSlugBase(article.Title)
	for n := 1; ; n++ {
		candidate := domain.ArticleSlugCandidate(base, n)
		taken, err := s.articles.SlugTaken(ctx, candidate, article.ID)
		if err != nil {
			return err
		}
		if !taken {
			article.Slug = candidate
			return nil
		}
	}
}
