package articles

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/policy"
)

type fixture struct {
	svc      *Service
	store    *memStore
	brandA   uuid.UUID
	brandB   uuid.UUID
	admin    policy.Identity
	brandUsr policy.Identity
	author   policy.Identity
	stranger policy.Identity
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  newMemStore(),
		brandA: uuid.New(),
		brandB: uuid.New(),
		now:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.admin = policy.Identity{ID: uuid.New(), Role: models.RoleAdmin}
	brandA := f.brandA
	f.brandUsr = policy.Identity{ID: uuid.New(), Role: models.RoleBrand, BrandID: &brandA}
	f.author = policy.Identity{ID: uuid.New(), Role: models.RoleAuthor}
	f.stranger = policy.Identity{ID: uuid.New(), Role: models.RoleAuthor}
	f.store.addAuthor(f.brandUsr.ID, "acme@example.com", models.RoleBrand)
	f.store.addAuthor(f.author.ID, "writer@example.com", models.RoleAuthor)

	brands := memBrands{f.brandA: true, f.brandB: true}
	assignments := memAssignments{{f.brandA, f.author.ID}: true}
	f.svc = NewService(f.store, brands, assignments, zaptest.NewLogger(t))
	f.svc.now = func() time.Time { return f.now }
	return f
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.ArticleStatus) *models.ArticleStatus { return &s }

func (f *fixture) create(t *testing.T, who policy.Identity, brandID uuid.UUID) *models.Article {
	t.Helper()
	a, err := f.svc.CreateArticle(context.Background(), who, CreateInput{Title: "Title", Content: "Body", BrandID: brandID})
	require.NoError(t, err)
	return a
}

func TestReviewLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, f.brandUsr, f.brandA)
	assert.Equal(t, models.ArticleStatusDraft, a.Status)
	assert.Equal(t, f.brandUsr.ID, a.AuthorID)
	assert.Nil(t, a.PublishedAt)

	_, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Status: statusPtr(models.ArticleStatusPendingReview)})
	require.NoError(t, err)

	_, err = f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Content: strPtr("new body")})
	assert.True(t, errors.Is(err, apperr.ErrForbiddenState))

	published, err := f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatusPublished)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, published.PublishedAt.Equal(f.now))
	assert.Equal(t, "acme@example.com", published.Author.Email)

	archived, err := f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusArchived, archived.Status)
	assert.True(t, archived.PublishedAt.Equal(f.now))

	_, err = f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatusPublished)
	assert.True(t, errors.Is(err, apperr.ErrForbiddenState))
}

func TestCreateArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("assigned author", func(t *testing.T) {
		a := f.create(t, f.author, f.brandA)
		assert.Equal(t, f.author.ID, a.AuthorID)
	})
	t.Run("unassigned author", func(t *testing.T) {
		_, err := f.svc.CreateArticle(ctx, f.author, CreateInput{Title: "x", Content: "y", BrandID: f.brandB})
		assert.Equal(t, apperr.CodeForbiddenOwnership, apperr.CodeOf(err))
	})
	t.Run("brand user on another brand", func(t *testing.T) {
		_, err := f.svc.CreateArticle(ctx, f.brandUsr, CreateInput{Title: "x", Content: "y", BrandID: f.brandB})
		assert.Equal(t, apperr.CodeForbiddenOwnership, apperr.CodeOf(err))
	})
	t.Run("admin", func(t *testing.T) {
		_, err := f.svc.CreateArticle(ctx, f.admin, CreateInput{Title: "x", Content: "y", BrandID: f.brandA})
		assert.Equal(t, apperr.CodeForbiddenRole, apperr.CodeOf(err))
	})
	t.Run("missing brand", func(t *testing.T) {
		ghost := uuid.New()
		brandUser := policy.Identity{ID: f.brandUsr.ID, Role: models.RoleBrand, BrandID: &ghost}
		_, err := f.svc.CreateArticle(ctx, brandUser, CreateInput{Title: "x", Content: "y", BrandID: ghost})
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})
}

func TestUpdateArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("missing article wins over empty patch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdateArticle(ctx, f.brandUsr, uuid.New(), Patch{})
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})
	t.Run("empty patch", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.brandUsr, f.brandA)
		_, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Title: strPtr("")})
		assert.Equal(t, apperr.CodeEmptyUpdate, apperr.CodeOf(err))
		assert.Zero(t, f.store.updates)
	})
	t.Run("author edits own draft", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.author, f.brandA)
		got, err := f.svc.UpdateArticle(ctx, f.author, a.ID, Patch{Title: strPtr("  New  "), Content: strPtr("c")})
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)
		assert.Equal(t, "c", got.Content)
		assert.Equal(t, models.ArticleStatusDraft, got.Status)
	})
	t.Run("author cannot edit another author's article", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.author, f.brandA)
		_, err := f.svc.UpdateArticle(ctx, f.stranger, a.ID, Patch{Title: strPtr("x")})
		assert.Equal(t, apperr.CodeForbiddenOwnership, apperr.CodeOf(err))
	})
	t.Run("brand user edits author's article in own brand", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.author, f.brandA)
		_, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Title: strPtr("x")})
		require.NoError(t, err)
	})
	t.Run("admin is excluded", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.brandUsr, f.brandA)
		_, err := f.svc.UpdateArticle(ctx, f.admin, a.ID, Patch{Title: strPtr("x")})
		assert.Equal(t, apperr.CodeForbiddenRole, apperr.CodeOf(err))
	})
	t.Run("brand cannot publish", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.brandUsr, f.brandA)
		_, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Status: statusPtr(models.ArticleStatusPublished)})
		assert.Equal(t, apperr.CodeForbiddenState, apperr.CodeOf(err))
		stored, _ := f.store.GetByID(ctx, a.ID)
		assert.Equal(t, models.ArticleStatusDraft, stored.Status)
	})
	t.Run("rejected goes back to draft", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.brandUsr, f.brandA)
		_, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Status: statusPtr(models.ArticleStatusPendingReview)})
		require.NoError(t, err)
		_, err = f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatusRejected)
		require.NoError(t, err)
		got, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Content: strPtr("fixed"), Status: statusPtr(models.ArticleStatusDraft)})
		require.NoError(t, err)
		assert.Equal(t, models.ArticleStatusDraft, got.Status)
		assert.Equal(t, "fixed", got.Content)
	})
}

func TestSetArticleStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin rejected before lookup", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SetArticleStatus(ctx, f.brandUsr, uuid.New(), models.ArticleStatusPublished)
		assert.Equal(t, apperr.CodeForbiddenRole, apperr.CodeOf(err))
	})
	t.Run("missing article", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SetArticleStatus(ctx, f.admin, uuid.New(), models.ArticleStatusPublished)
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})
	t.Run("admin cannot publish a draft", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.brandUsr, f.brandA)
		_, err := f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatusPublished)
		assert.Equal(t, apperr.CodeForbiddenState, apperr.CodeOf(err))
	})
	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		a := f.create(t, f.brandUsr, f.brandA)
		_, err := f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatus("LIVE"))
		assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
	})
}

func TestDeleteArticle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, f.author, f.brandA)

	err := f.svc.DeleteArticle(ctx, f.stranger, a.ID)
	assert.Equal(t, apperr.CodeForbiddenOwnership, apperr.CodeOf(err))
	err = f.svc.DeleteArticle(ctx, f.admin, a.ID)
	assert.Equal(t, apperr.CodeForbiddenRole, apperr.CodeOf(err))

	require.NoError(t, f.svc.DeleteArticle(ctx, f.author, a.ID))
	err = f.svc.DeleteArticle(ctx, f.author, a.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestListArticlesScopes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mine := f.create(t, f.author, f.brandA)
	f.create(t, f.brandUsr, f.brandA)
	otherBrandUser := policy.Identity{ID: uuid.New(), Role: models.RoleBrand, BrandID: &f.brandB}
	f.create(t, otherBrandUser, f.brandB)

	t.Run("admin sees all", func(t *testing.T) {
		page, err := f.svc.ListArticles(ctx, f.admin, ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
	})
	t.Run("admin filters by brand", func(t *testing.T) {
		page, err := f.svc.ListArticles(ctx, f.admin, ListQuery{BrandID: &f.brandB})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
	})
	t.Run("brand is forced to own brand", func(t *testing.T) {
		page, err := f.svc.ListArticles(ctx, f.brandUsr, ListQuery{BrandID: &f.brandB})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		for _, a := range page.Data {
			assert.Equal(t, f.brandA, a.BrandID)
		}
	})
	t.Run("author sees only own", func(t *testing.T) {
		page, err := f.svc.ListArticles(ctx, f.author, ListQuery{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, mine.ID, page.Data[0].ID)
	})
	t.Run("brand user without brand", func(t *testing.T) {
		orphan := policy.Identity{ID: uuid.New(), Role: models.RoleBrand}
		_, err := f.svc.ListArticles(ctx, orphan, ListQuery{})
		assert.Equal(t, apperr.CodeForbiddenOwnership, apperr.CodeOf(err))
	})
	t.Run("plain user", func(t *testing.T) {
		_, err := f.svc.ListArticles(ctx, policy.Identity{ID: uuid.New(), Role: models.RoleUser}, ListQuery{})
		assert.Equal(t, apperr.CodeForbiddenRole, apperr.CodeOf(err))
	})
}

func TestListArticlesPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		_, err := f.svc.CreateArticle(ctx, f.brandUsr, CreateInput{Title: fmt.Sprintf("a%02d", i), Content: "c", BrandID: f.brandA})
		require.NoError(t, err)
	}

	page, err := f.svc.ListArticles(ctx, f.brandUsr, ListQuery{Page: models.PageRequest{Page: 2, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Data, 10)
	assert.Equal(t, "a14", page.Data[0].Title)

	last, err := f.svc.ListArticles(ctx, f.brandUsr, ListQuery{Page: models.PageRequest{Page: 3, Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, last.Data, 5)

	beyond, err := f.svc.ListArticles(ctx, f.brandUsr, ListQuery{Page: models.PageRequest{Page: 9, Limit: 10}})
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)
	assert.NotNil(t, beyond.Data)
}

func TestPublicViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	draft := f.create(t, f.brandUsr, f.brandA)
	live, err := f.svc.CreateArticle(ctx, f.brandUsr, CreateInput{Title: "Launch notes", Content: "body", BrandID: f.brandA})
	require.NoError(t, err)
	_, err = f.svc.UpdateArticle(ctx, f.brandUsr, live.ID, Patch{Status: statusPtr(models.ArticleStatusPendingReview)})
	require.NoError(t, err)
	_, err = f.svc.SetArticleStatus(ctx, f.admin, live.ID, models.ArticleStatusPublished)
	require.NoError(t, err)

	page, err := f.svc.ListPublishedArticles(ctx, PublicQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, live.ID, page.Data[0].ID)

	page, err = f.svc.ListPublishedArticles(ctx, PublicQuery{Search: "LAUNCH"})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	page, err = f.svc.ListPublishedArticles(ctx, PublicQuery{Search: "missing"})
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	_, err = f.svc.GetPublishedArticle(ctx, draft.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	got, err := f.svc.GetPublishedArticle(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusPublished, got.Status)
}

func TestGetArticle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, f.author, f.brandA)

	_, err := f.svc.GetArticle(ctx, f.admin, a.ID)
	require.NoError(t, err)
	_, err = f.svc.GetArticle(ctx, f.brandUsr, a.ID)
	require.NoError(t, err)
	_, err = f.svc.GetArticle(ctx, f.stranger, a.ID)
	assert.Equal(t, apperr.CodeForbiddenOwnership, apperr.CodeOf(err))
	_, err = f.svc.GetArticle(ctx, f.admin, uuid.New())
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestStoreFailureIsDependencyFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, f.brandUsr, f.brandA)
	f.store.failWith = errors.New("connection reset by peer")

	_, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Status: statusPtr(models.ArticleStatusPendingReview)})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDependencyFailure, apperr.CodeOf(err))
	assert.ErrorContains(t, err, "connection reset by peer")

	f.store.failWith = nil
	_, err = f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Status: statusPtr(models.ArticleStatusPendingReview)})
	require.NoError(t, err)

	f.store.failWith = errors.New("connection reset by peer")
	_, err = f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatusPublished)
	assert.Equal(t, apperr.CodeDependencyFailure, apperr.CodeOf(err))

	stored, err := f.store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusPendingReview, stored.Status)
}

func TestConcurrentPublishKeepsFirstPublishedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, f.brandUsr, f.brandA)
	_, err := f.svc.UpdateArticle(ctx, f.brandUsr, a.ID, Patch{Status: statusPtr(models.ArticleStatusPendingReview)})
	require.NoError(t, err)

	stale, err := f.store.GetByID(ctx, a.ID)
	require.NoError(t, err)

	first, err := f.svc.SetArticleStatus(ctx, f.admin, a.ID, models.ArticleStatusPublished)
	require.NoError(t, err)

	later := f.now.Add(time.Hour)
	stale.Status = models.ArticleStatusPublished
	stale.PublishedAt = &later
	require.NoError(t, f.store.Update(ctx, stale))

	stored, err := f.store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.PublishedAt.Equal(*first.PublishedAt))
	assert.True(t, stale.PublishedAt.Equal(f.now))
}
