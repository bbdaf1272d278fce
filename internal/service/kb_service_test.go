package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util/errorutil"
)

func TestCreateArticle_SlugCollision(t *testing.T) {
	f := newFixture(t)
	svc := f.kbService()
	ctx := context.Background()

	first, err := svc.CreateArticle(ctx, ArticleCreateInput{Title: "Foo Bar"})
	require.NoError(t, err)
	second, err := svc.CreateArticle(ctx, ArticleCreateInput{Title: "Foo  Bar"})
	require.NoError(t, err)
	third, err := svc.CreateArticle(ctx, ArticleCreateInput{Title: "foo-bar!"})
	require.NoError(t, err)

	assert.Equal(t, "foo-bar", first.Slug)
	assert.Equal(t, "foo-bar-2", second.Slug)
	assert.Equal(t, "foo-bar-3", third.Slug)
	assert.True(t, first.IsPublished)

	resaved, err := svc.UpdateArticle(ctx, first.ID, ArticleUpdateInput{Content: strPtr("updated")})
	require.NoError(t, err)
	assert.Equal(t, "foo-bar", resaved.Slug)

	retitled, err := svc.UpdateArticle(ctx, second.ID, ArticleUpdateInput{Title: strPtr("Something else")})
	require.NoError(t, err)
	assert.Equal(t, "foo-bar-2", retitled.Slug)

	regenerated, err := svc.UpdateArticle(ctx, first.ID, ArticleUpdateInput{Slug: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "foo-bar", regenerated.Slug)
}

func TestCreateArticle_SlugEdges(t *testing.T) {
	f := newFixture(t)
	svc := f.kbService()
	ctx := context.Background()

	blank, err := svc.CreateArticle(ctx, ArticleCreateInput{Title: "???"})
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleSlugFallback, blank.Slug)

	explicit, err := svc.CreateArticle(ctx, ArticleCreateInput{Title: "Reset MFA", Slug: "mfa"})
	require.NoError(t, err)
	assert.Equal(t, "mfa", explicit.Slug)

	_, err = svc.CreateArticle(ctx, ArticleCreateInput{Title: "Other", Slug: "mfa"})
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	_, err = svc.CreateArticle(ctx, ArticleCreateInput{Title: ""})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.CreateArticle(ctx, ArticleCreateInput{Title: "Orphan", CategoryID: strPtr("8c0e2f4a-1111-4222-8333-444455556666")})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	svc := f.kbService()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Network & VPN"})
	require.NoError(t, err)
	assert.Equal(t, "network-vpn", category.Slug)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Network / VPN"})
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "***"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	custom, err := svc.CreateCategory(ctx, CategoryInput{Name: "Accounts", Slug: "Identity"})
	require.NoError(t, err)
	assert.Equal(t, "identity", custom.Slug)
}

func seedKB(t *testing.T, f *fixture) (*domain.KBCategory, []*domain.KBArticle) {
	t.Helper()
	svc := f.kbService()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Guides"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Accounts"})
	require.NoError(t, err)

	var articles []*domain.KBArticle
	for i, title := range []string{
		"Setup Guide", "VPN guide", "Printer GUIDE", "Email guide", "Wifi guide", "Laptop guide", "Password policy",
	} {
		f.clock.Set(t0.Add(time.Duration(i) * time.Minute))
		a, err := svc.CreateArticle(ctx, ArticleCreateInput{
			Title:      title,
			CategoryID: &category.ID,
			Content:    fmt.Sprintf("Body of %s", title),
		})
		require.NoError(t, err)
		articles = append(articles, a)
	}
	f.clock.Set(t0.Add(time.Hour))
	draft, err := svc.CreateArticle(ctx, ArticleCreateInput{Title: "Draft guide", IsPublished: boolPtr(false)})
	require.NoError(t, err)
	articles = append(articles, draft)
	return category, articles
}

func TestSuggest(t *testing.T) {
	f := newFixture(t)
	seedKB(t, f)
	svc := f.kbService()
	ctx := context.Background()

	empty, err := svc.Suggest(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	got, err := svc.Suggest(ctx, "guide")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, s := range got {
		assert.NotEqual(t, "Draft guide", s.Title)
		assert.Contains(t, s.Slug, "guide")
	}
	assert.Equal(t, domain.KBSuggestion{Title: "Laptop guide", Slug: "laptop-guide"}, got[0])

	none, err := svc.Suggest(ctx, "policy body")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	_, seeded := seedKB(t, f)
	svc := f.kbService()
	ctx := context.Background()

	articles, categories, err := svc.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, articles, 7)
	assert.Equal(t, "Password policy", articles[0].Title)
	assert.Equal(t, "Setup Guide", articles[6].Title)
	require.Len(t, categories, 2)
	assert.Equal(t, "Accounts", categories[0].Name)
	require.NotNil(t, articles[0].Category)
	assert.Equal(t, "Guides", articles[0].Category.Name)

	byContent, _, err := svc.Search(ctx, "body of vpn")
	require.NoError(t, err)
	require.Len(t, byContent, 1)
	assert.Equal(t, seeded[1].ID, byContent[0].ID)
}

func TestRecordView(t *testing.T) {
	f := newFixture(t)
	_, seeded := seedKB(t, f)
	svc := f.kbService()
	ctx := context.Background()

	article, err := svc.RecordView(ctx, "vpn-guide")
	require.NoError(t, err)
	assert.Equal(t, 1, article.Views)

	_, err = svc.RecordView(ctx, "draft-guide")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	_, err = svc.RecordView(ctx, "missing")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordView(ctx, "vpn-guide")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.store.Articles().GetByID(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, n+1, stored.Views)
}
