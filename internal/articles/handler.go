package articles

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/response"
)

// Handler handles article HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an articles handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateArticleRequest is the body for POST /brand/articles and /author/articles.
type CreateArticleRequest struct {
	Title   string    `json:"title" binding:"required,max=255"`
	Content string    `json:"content" binding:"required"`
	BrandID uuid.UUID `json:"brandId" binding:"required"`
}

// UpdateArticleRequest is the body for PATCH /brand/articles/:id and /author/articles/:id.
type UpdateArticleRequest struct {
	Title   *string               `json:"title" binding:"omitempty,max=255"`
	Content *string               `json:"content"`
	Status  *models.ArticleStatus `json:"status"`
}

// SetStatusRequest is the body for PATCH /admin/articles/:id/status.
type SetStatusRequest struct {
	Status models.ArticleStatus `json:"status" binding:"required"`
}

// ListPublished handles GET /articles.
func (h *Handler) ListPublished(c *gin.Context) {
	q, err := parsePublicQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.svc.ListPublishedArticles(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// GetPublished handles GET /articles/:id.
func (h *Handler) GetPublished(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	a, err := h.svc.GetPublishedArticle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// List handles GET /admin/articles, /brand/articles and /author/articles.
// The service narrows the result to the caller's scope.
func (h *Handler) List(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.svc.ListArticles(c.Request.Context(), identity, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// Get handles GET /{admin,brand,author}/articles/:id.
func (h *Handler) Get(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := articleID(c)
	if !ok {
		return
	}
	a, err := h.svc.GetArticle(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// Create handles POST /brand/articles and /author/articles.
func (h *Handler) Create(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title, content and brandId required")
		return
	}
	a, err := h.svc.CreateArticle(c.Request.Context(), identity, CreateInput{
		Title:   req.Title,
		Content: req.Content,
		BrandID: req.BrandID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// Update handles PATCH /brand/articles/:id and /author/articles/:id.
func (h *Handler) Update(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := articleID(c)
	if !ok {
		return
	}
	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, err := h.svc.UpdateArticle(c.Request.Context(), identity, id, Patch{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// Delete handles DELETE /brand/articles/:id and /author/articles/:id.
func (h *Handler) Delete(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := articleID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteArticle(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetStatus handles PATCH /admin/articles/:id/status.
func (h *Handler) SetStatus(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := articleID(c)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status required")
		return
	}
	a, err := h.svc.SetArticleStatus(c.Request.Context(), identity, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

func articleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid article id")
		return uuid.Nil, false
	}
	return id, true
}
