package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// KBCategoryRepository manages knowledge-base categories.
type KBCategoryRepository interface {
	Create(ctx context.Context, category *domain.KBCategory) error
	GetByID(ctx context.Context, id string) (*domain.KBCategory, error)
	// List returns every category ordered by name.
	List(ctx context.Context) ([]domain.KBCategory, error)
	// Delete removes the category; its articles become uncategorised.
	Delete(ctx context.Context, id string) error
}

type kbCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewKBCategoryRepository builds the repository.
func NewKBCategoryRepository(pool *pgxpool.Pool) KBCategoryRepository {
	return &kbCategoryRepository{pool: pool}
}

func (r *kbCategoryRepository) Create(ctx context.Context, category *domain.KBCategory) error {
	const query = `
        INSERT INTO kb_categories (name, slug)
        VALUES ($1,$2)
        RETURNING id`
	return r.pool.QueryRow(ctx, query, category.Name, category.Slug).Scan(&category.ID)
}

func (r *kbCategoryRepository) GetByID(ctx context.Context, id string) (*domain.KBCategory, error) {
	const query = `SELECT id, name, slug FROM kb_categories WHERE id=$1`
	var category domain.KBCategory
	if err := r.pool.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.Slug); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *kbCategoryRepository) List(ctx context.Context) ([]domain.KBCategory, error) {
	const query = `SELECT id, name, slug FROM kb_categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KBCategory
	for rows.Next() {
		var category domain.KBCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func (r *kbCategoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM kb_categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
