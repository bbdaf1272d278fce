package errorutil

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("domain error passes through wrapping", func(t *testing.T) {
		orig := NewConflict("slug taken", nil)
		got := ToDomainError(fmt.Errorf("create: %w", orig))
		assert.Equal(t, "CONFLICT", got.Code)
		assert.Equal(t, "slug taken", got.Message)
	})

	t.Run("fiber error keeps its status", func(t *testing.T) {
		got := ToDomainError(fiber.ErrNotFound)
		assert.Equal(t, "NOT_FOUND", got.Code)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)

		got = ToDomainError(fiber.NewError(http.StatusUnprocessableEntity, "bad body"))
		assert.Equal(t, "BAD_REQUEST", got.Code)
		assert.Equal(t, "bad body", got.Message)
	})

	t.Run("missing row", func(t *testing.T) {
		got := ToDomainError(fmt.Errorf("load ticket: %w", pgx.ErrNoRows))
		assert.Equal(t, "NOT_FOUND", got.Code)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	})

	t.Run("unique violation", func(t *testing.T) {
		got := ToDomainError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "kb_categories_slug_key"})
		assert.Equal(t, "CONFLICT", got.Code)
		assert.Equal(t, http.StatusConflict, got.HTTPStatus)
		assert.Equal(t, "kb_categories_slug_key", got.Details["constraint"])
	})

	t.Run("foreign key violation", func(t *testing.T) {
		got := ToDomainError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "tickets_assigned_to_fkey"})
		assert.Equal(t, "VALIDATION_FAILED", got.Code)
		assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		got := ToDomainError(fmt.Errorf("boom"))
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	})
}
