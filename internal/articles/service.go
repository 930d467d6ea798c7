// Package articles implements the article workflow: creation, edits, status changes,
// deletion and the scoped list views.
package articles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/policy"
)

// Store is the article persistence the service needs. Get methods return nil, nil when absent.
type Store interface {
	Create(ctx context.Context, a *models.Article) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.ArticleView, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, page models.PageRequest) ([]models.ArticleView, int, error)
}

// BrandLookup checks brand existence.
type BrandLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AssignmentLookup checks whether an author is assigned to a brand.
type AssignmentLookup interface {
	IsAssigned(ctx context.Context, brandID, authorID uuid.UUID) (bool, error)
}

// Filter narrows article listings. Nil/empty fields do not filter.
type Filter struct {
	BrandID  *uuid.UUID
	AuthorID *uuid.UUID
	Statuses []models.ArticleStatus
	Search   string
}

// CreateInput is the draft submitted by a BRAND or AUTHOR.
type CreateInput struct {
	Title   string
	Content string
	BrandID uuid.UUID
}

// Patch is a partial article update. Nil and empty fields are treated as absent.
type Patch struct {
	Title   *string
	Content *string
	Status  *models.ArticleStatus
}

func (p Patch) title() (string, bool)   { return present(p.Title) }
func (p Patch) content() (string, bool) { return present(p.Content) }

func (p Patch) status() (models.ArticleStatus, bool) {
	if p.Status == nil || *p.Status == "" {
		return "", false
	}
	return *p.Status, true
}

// Empty reports whether the patch sets no recognized field.
func (p Patch) Empty() bool {
	_, t := p.title()
	_, c := p.content()
	_, s := p.status()
	return !t && !c && !s
}

func present(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

// ListQuery holds the optional filters of the authenticated list views.
// BrandID and AuthorID are honored only for ADMIN; other roles are forced to their own scope.
type ListQuery struct {
	BrandID  *uuid.UUID
	AuthorID *uuid.UUID
	Statuses []models.ArticleStatus
	Page     models.PageRequest
}

// PublicQuery holds the filters of the public published-articles view.
type PublicQuery struct {
	Search  string
	BrandID *uuid.UUID
	Page    models.PageRequest
}

// Service composes the permission evaluator, the article lifecycle and the store.
type Service struct {
	articles    Store
	brands      BrandLookup
	assignments AssignmentLookup
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates an article service.
func NewService(articles Store, brands BrandLookup, assignments AssignmentLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{articles: articles, brands: brands, assignments: assignments, logger: logger, now: time.Now}
}

// CreateArticle persists a new DRAFT article authored by the identity.
func (s *Service) CreateArticle(ctx context.Context, identity policy.Identity, in CreateInput) (*models.Article, error) {
	assigned := false
	if scope, ok := policy.ScopeFor(identity.Role, policy.ActionCreateArticle); ok && scope == policy.ScopeAssignedBrand {
		var err error
		assigned, err = s.assignments.IsAssigned(ctx, in.BrandID, identity.ID)
		if err != nil {
			return nil, apperr.Dependency("could not check author assignment", err)
		}
	}
	if err := policy.Evaluate(identity, policy.ActionCreateArticle, policy.NewArticleResource(in.BrandID, assigned)); err != nil {
		return nil, err
	}

	exists, err := s.brands.Exists(ctx, in.BrandID)
	if err != nil {
		return nil, apperr.Dependency("could not check brand", err)
	}
	if !exists {
		return nil, apperr.NotFound("brand not found")
	}

	a := &models.Article{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		BrandID:  in.BrandID,
		AuthorID: identity.ID,
		Status:   models.ArticleStatusDraft,
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, apperr.Dependency("could not create article", err)
	}
	s.logger.Info("article created",
		zap.String("article_id", a.ID.String()),
		zap.String("brand_id", a.BrandID.String()),
		zap.String("author_id", a.AuthorID.String()),
	)
	return a, nil
}

// UpdateArticle edits title/content and optionally moves the status, on behalf of BRAND/AUTHOR.
func (s *Service) UpdateArticle(ctx context.Context, identity policy.Identity, id uuid.UUID, patch Patch) (*models.Article, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apperr.ErrEmptyUpdate
	}
	if err := policy.Evaluate(identity, policy.ActionEditArticle, policy.ArticleResource(a)); err != nil {
		return nil, err
	}
	if err := policy.CheckArticleEditable(a); err != nil {
		return nil, err
	}
	if status, ok := patch.status(); ok {
		if err := policy.CheckArticleTransition(identity.Role, a.Status, status); err != nil {
			return nil, err
		}
		policy.ApplyArticleStatus(a, status, s.now())
	}
	if title, ok := patch.title(); ok {
		a.Title = strings.TrimSpace(title)
	}
	if content, ok := patch.content(); ok {
		a.Content = content
	}

	if err := s.articles.Update(ctx, a); err != nil {
		return nil, apperr.Dependency("could not update article", err)
	}
	return a, nil
}

// DeleteArticle hard-deletes an article owned by the identity, in any status.
func (s *Service) DeleteArticle(ctx context.Context, identity policy.Identity, id uuid.UUID) error {
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Evaluate(identity, policy.ActionDeleteArticle, policy.ArticleResource(a)); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return apperr.Dependency("could not delete article", err)
	}
	s.logger.Info("article deleted", zap.String("article_id", id.String()), zap.String("by", identity.ID.String()))
	return nil
}

// SetArticleStatus moves an article through the review states on behalf of ADMIN and
// returns the refreshed projection.
func (s *Service) SetArticleStatus(ctx context.Context, identity policy.Identity, id uuid.UUID, target models.ArticleStatus) (*models.ArticleView, error) {
	if err := policy.Evaluate(identity, policy.ActionSetArticleStatus, policy.Resource{}); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckArticleTransition(identity.Role, a.Status, target); err != nil {
		return nil, err
	}
	from := a.Status
	policy.ApplyArticleStatus(a, target, s.now())
	if err := s.articles.Update(ctx, a); err != nil {
		return nil, apperr.Dependency("could not update article status", err)
	}
	s.logger.Info("article status changed",
		zap.String("article_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)

	view, err := s.articles.GetView(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("could not reload article", err)
	}
	if view == nil {
		return nil, apperr.NotFound("article not found")
	}
	return view, nil
}

// ListArticles returns the identity's view: ADMIN sees everything (optionally filtered),
// BRAND is forced to its brand and AUTHOR to its own articles.
func (s *Service) ListArticles(ctx context.Context, identity policy.Identity, q ListQuery) (models.Page[models.ArticleView], error) {
	self := identity.ID
	own := policy.Resource{BrandID: identity.BrandID, AuthorID: &self}
	if err := policy.Evaluate(identity, policy.ActionListArticles, own); err != nil {
		return models.Page[models.ArticleView]{}, err
	}

	f := Filter{Statuses: q.Statuses}
	scope, _ := policy.ScopeFor(identity.Role, policy.ActionListArticles)
	switch scope {
	case policy.ScopeAny:
		f.BrandID, f.AuthorID = q.BrandID, q.AuthorID
	case policy.ScopeOwnBrand:
		f.BrandID = identity.BrandID
	case policy.ScopeOwnArticle:
		f.AuthorID = &self
	}
	return s.list(ctx, f, q.Page)
}

// ListPublishedArticles is the public view: PUBLISHED only, with optional search and brand filter.
func (s *Service) ListPublishedArticles(ctx context.Context, q PublicQuery) (models.Page[models.ArticleView], error) {
	f := Filter{
		BrandID:  q.BrandID,
		Statuses: []models.ArticleStatus{models.ArticleStatusPublished},
		Search:   q.Search,
	}
	return s.list(ctx, f, q.Page)
}

// GetArticle returns an article the identity may view.
func (s *Service) GetArticle(ctx context.Context, identity policy.Identity, id uuid.UUID) (*models.ArticleView, error) {
	v, err := s.articles.GetView(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("could not get article", err)
	}
	if v == nil {
		return nil, apperr.NotFound("article not found")
	}
	if err := policy.Evaluate(identity, policy.ActionViewArticle, policy.ArticleResource(&v.Article)); err != nil {
		return nil, err
	}
	return v, nil
}

// GetPublishedArticle returns a PUBLISHED article; anything else is reported as absent.
func (s *Service) GetPublishedArticle(ctx context.Context, id uuid.UUID) (*models.ArticleView, error) {
	v, err := s.articles.GetView(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("could not get article", err)
	}
	if v == nil || v.Status != models.ArticleStatusPublished {
		return nil, apperr.NotFound("article not found")
	}
	return v, nil
}

func (s *Service) list(ctx context.Context, f Filter, page models.PageRequest) (models.Page[models.ArticleView], error) {
	page = page.Normalize()
	rows, total, err := s.articles.List(ctx, f, page)
	if err != nil {
		return models.Page[models.ArticleView]{}, apperr.Dependency("could not list articles", err)
	}
	return models.NewPage(rows, total, page), nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("could not get article", err)
	}
	if a == nil {
		return nil, apperr.NotFound("article not found")
	}
	return a, nil
}
