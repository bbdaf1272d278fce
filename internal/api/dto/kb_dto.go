package dto

import "time"

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateArticleRequest payload.
type CreateArticleRequest struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	CategoryID  *string `json:"category_id"`
	Content     string  `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

// UpdateArticleRequest payload. Omitted fields stay unchanged.
type UpdateArticleRequest struct {
	Title         *string `json:"title"`
	Slug          *string `json:"slug"`
	CategoryID    *string `json:"category_id"`
	ClearCategory bool    `json:"clear_category"`
	Content       *string `json:"content"`
	IsPublished   *bool   `json:"is_published"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ArticleSummary is the listing shape of an article.
type ArticleSummary struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Category    *CategoryResponse `json:"category"`
	IsPublished bool              `json:"is_published"`
	Views       int               `json:"views"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ArticleDetailResponse adds the body, raw and rendered.
type ArticleDetailResponse struct {
	ArticleSummary
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
}

// KBSearchResponse lists articles together with every category.
type KBSearchResponse struct {
	Query      string             `json:"query"`
	Articles   []ArticleSummary   `json:"articles"`
	Categories []CategoryResponse `json:"categories"`
}

// SuggestionResponse is one typeahead hit.
type SuggestionResponse struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}
