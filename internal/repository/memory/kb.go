package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, category *domain.KBCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.categories {
		if existing.Name == category.Name {
			return uniqueViolation("kb_categories_name_key")
		}
		if existing.Slug == category.Slug {
			return uniqueViolation("kb_categories_slug_key")
		}
	}
	category.ID = newID()
	stored := *category
	r.s.categories[category.ID] = &stored
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*domain.KBCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	category, ok := r.s.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	found := *category
	return &found, nil
}

func (r *categoryRepo) List(_ context.Context) ([]domain.KBCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.KBCategory, 0, len(r.s.categories))
	for _, category := range r.s.categories {
		result = append(result, *category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.categories, id)
	for _, row := range r.s.articles {
		if row.article.CategoryID != nil && *row.article.CategoryID == id {
			row.article.CategoryID = nil
		}
	}
	return nil
}

type articleRepo struct{ s *Store }

func (r *articleRepo) Create(_ context.Context, article *domain.KBArticle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkArticle(article, ""); err != nil {
		return err
	}
	now := r.s.now()
	article.ID = newID()
	article.Views = 0
	article.CreatedAt = now
	article.UpdatedAt = now
	r.s.articles[article.ID] = &articleRow{seq: r.s.nextSeq(), article: cloneArticle(*article)}
	return nil
}

func (r *articleRepo) Update(_ context.Context, article *domain.KBArticle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.articles[article.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := r.s.checkArticle(article, article.ID); err != nil {
		return err
	}
	article.Views = row.article.Views
	article.CreatedAt = row.article.CreatedAt
	article.UpdatedAt = r.s.now()
	row.article = cloneArticle(*article)
	return nil
}

func (s *Store) checkArticle(article *domain.KBArticle, selfID string) error {
	for id, row := range s.articles {
		if id != selfID && row.article.Slug == article.Slug {
			return uniqueViolation("kb_articles_slug_key")
		}
	}
	if article.CategoryID != nil {
		if _, ok := s.categories[*article.CategoryID]; !ok {
			return foreignKeyViolation("kb_articles_category_id_fkey")
		}
	}
	return nil
}

func (r *articleRepo) GetByID(_ context.Context, id string) (*domain.KBArticle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.articles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	article := r.s.withCategory(row.article)
	return &article, nil
}

func (r *articleRepo) GetPublishedBySlug(_ context.Context, slug string) (*domain.KBArticle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.articles {
		if row.article.Slug == slug && row.article.IsPublished {
			article := r.s.withCategory(row.article)
			return &article, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *articleRepo) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, row := range r.s.articles {
		if id != excludeID && row.article.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *articleRepo) Search(_ context.Context, filter repository.KBArticleFilter) ([]domain.KBArticle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []*articleRow
	for _, row := range r.s.articles {
		if articleMatches(&row.article, filter) {
			rows = append(rows, row)
		}
	}
	sortNewestFirst(rows,
		func(row *articleRow) time.Time { return row.article.CreatedAt },
		func(row *articleRow) int64 { return row.seq })
	rows = page(rows, filter.Limit, 0)

	result := make([]domain.KBArticle, 0, len(rows))
	for _, row := range rows {
		result = append(result, r.s.withCategory(row.article))
	}
	return result, nil
}

func (r *articleRepo) IncrementViews(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.articles[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	row.article.Views++
	return row.article.Views, nil
}

func articleMatches(a *domain.KBArticle, f repository.KBArticleFilter) bool {
	if f.PublishedOnly && !a.IsPublished {
		return false
	}
	if strings.TrimSpace(f.TitleContains) != "" && !containsFold(a.Title, f.TitleContains) {
		return false
	}
	if strings.TrimSpace(f.Query) != "" && !containsFold(a.Title, f.Query) && !containsFold(a.Content, f.Query) {
		return false
	}
	return true
}

// withCategory joins the category the way the LEFT JOIN in the SQL store does.
func (s *Store) withCategory(article domain.KBArticle) domain.KBArticle {
	article = cloneArticle(article)
	article.Category = nil
	if article.CategoryID != nil {
		if category, ok := s.categories[*article.CategoryID]; ok {
			c := *category
			article.Category = &c
		}
	}
	return article
}

func cloneArticle(a domain.KBArticle) domain.KBArticle {
	a.CategoryID = cloneString(a.CategoryID)
	a.Category = nil
	return a
}
