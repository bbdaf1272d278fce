package domain

import (
	"strconv"
	"time"
)

const (
	// CategorySlugMaxLen bounds category slugs.
	CategorySlugMaxLen = 140
	// ArticleSlugBaseMaxLen bounds the slug base before a collision suffix.
	ArticleSlugBaseMaxLen = 200
	// ArticleSlugFallback is used when a title has no slug-safe characters.
	ArticleSlugFallback = "article"
)

// KBCategory groups knowledge-base articles.
type KBCategory struct {
	ID   string
	Name string
	Slug string
}

// KBArticle is a knowledge-base entry addressed by its slug.
type KBArticle struct {
	ID          string
	Title       string
	Slug        string
	CategoryID  *string
	Category    *KBCategory
	Content     string
	IsPublished bool
	Views       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KBSuggestion is the reduced article shape returned by typeahead.
type KBSuggestion struct {
	Title string
	Slug  string
}

// CategorySlugBase derives a category slug from its name.
func CategorySlugBase(name string) string {
	return truncate(Slugify(name), CategorySlugMaxLen)
}

// ArticleSlugBase derives the collision-free starting point for an article slug.
func ArticleSlugBase(title string) string {
	base := truncate(Slugify(title), ArticleSlugBaseMaxLen)
	if base == "" {
		return ArticleSlugFallback
	}
	return base
}

// ArticleSlugCandidate returns the n-th candidate for base: base itself for
// the first attempt, then base-2, base-3 and so on.
func ArticleSlugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// slugs are ASCII so byte truncation is safe
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
