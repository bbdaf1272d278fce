package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// KBArticleRepository manages knowledge-base articles.
type KBArticleRepository interface {
	Create(ctx context.Context, article *domain.KBArticle) error
	Update(ctx context.Context, article *domain.KBArticle) error
	GetByID(ctx context.Context, id string) (*domain.KBArticle, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*domain.KBArticle, error)
	// SlugTaken reports whether an article other than excludeID uses slug.
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	// Search returns matching articles newest first.
	Search(ctx context.Context, filter KBArticleFilter) ([]domain.KBArticle, error)
	// IncrementViews adds one to the stored counter and returns the new value.
	IncrementViews(ctx context.Context, id string) (int, error)
}

const kbArticleSelect = `
        SELECT a.id, a.title, a.slug, a.category_id, a.content, a.is_published, a.views,
               a.created_at, a.updated_at, c.id, c.name, c.slug
        FROM kb_articles a
        LEFT JOIN kb_categories c ON c.id = a.category_id`

type kbArticleRepository struct {
	pool *pgxpool.Pool
}

// NewKBArticleRepository builds the repository.
func NewKBArticleRepository(pool *pgxpool.Pool) KBArticleRepository {
	return &kbArticleRepository{pool: pool}
}

func (r *kbArticleRepository) Create(ctx context.Context, article *domain.KBArticle) error {
	const query = `
        INSERT INTO kb_articles (title, slug, category_id, content, is_published)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, views, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Slug,
		article.CategoryID,
		article.Content,
		article.IsPublished,
	).Scan(&article.ID, &article.Views, &article.CreatedAt, &article.UpdatedAt)
}

// Update leaves views untouched; only IncrementViews changes the counter.
func (r *kbArticleRepository) Update(ctx context.Context, article *domain.KBArticle) error {
	const query = `
        UPDATE kb_articles SET title=$1, slug=$2, category_id=$3, content=$4, is_published=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING views, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Slug,
		article.CategoryID,
		article.Content,
		article.IsPublished,
		article.ID,
	).Scan(&article.Views, &article.UpdatedAt)
}

func (r *kbArticleRepository) GetByID(ctx context.Context, id string) (*domain.KBArticle, error) {
	return r.fetchSingle(ctx, kbArticleSelect+` WHERE a.id=$1`, id)
}

func (r *kbArticleRepository) GetPublishedBySlug(ctx context.Context, slug string) (*domain.KBArticle, error) {
	return r.fetchSingle(ctx, kbArticleSelect+` WHERE a.slug=$1 AND a.is_published = TRUE`, slug)
}

func (r *kbArticleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.KBArticle, error) {
	var article domain.KBArticle
	if err := scanArticle(r.pool.QueryRow(ctx, query, arg), &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *kbArticleRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM kb_articles WHERE slug=$1)`
	args := []any{slug}
	if excludeID != "" {
		query = `SELECT EXISTS (SELECT 1 FROM kb_articles WHERE slug=$1 AND id<>$2)`
		args = append(args, excludeID)
	}
	var taken bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *kbArticleRepository) Search(ctx context.Context, filter KBArticleFilter) ([]domain.KBArticle, error) {
	where, args := filter.where()
	query := fmt.Sprintf(`%s WHERE %s ORDER BY a.created_at DESC%s`, kbArticleSelect, where, limitOffset(filter.Limit, 0))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KBArticle
	for rows.Next() {
		var article domain.KBArticle
		if err := scanArticle(rows, &article); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}

func (r *kbArticleRepository) IncrementViews(ctx context.Context, id string) (int, error) {
	const query = `UPDATE kb_articles SET views = views + 1 WHERE id=$1 RETURNING views`
	var views int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&views); err != nil {
		return 0, err
	}
	return views, nil
}

func scanArticle(row pgx.Row, article *domain.KBArticle) error {
	var catID, catName, catSlug *string
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Slug,
		&article.CategoryID,
		&article.Content,
		&article.IsPublished,
		&article.Views,
		&article.CreatedAt,
		&article.UpdatedAt,
		&catID,
		&catName,
		&catSlug,
	); err != nil {
		return err
	}
	if catID != nil {
		article.Category = &domain.KBCategory{ID: *catID, Name: deref(catName), Slug: deref(catSlug)}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
