package brands

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/response"
)

// Handler handles brand HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a brands handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateBrandRequest is the body for POST /brands.
type CreateBrandRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl" binding:"omitempty,url"`
}

// OnboardRequest is the body for POST /brands/onboard.
type OnboardRequest struct {
	CreateBrandRequest
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
}

// UpdateBrandRequest is the body for PUT /brands/:id.
type UpdateBrandRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl" binding:"omitempty,url"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
}

// SetStatusRequest is the body for PUT /brands/:id/status.
type SetStatusRequest struct {
	Status models.BrandStatus `json:"status" binding:"required"`
}

// AssignAuthorRequest is the body for POST /brands/:id/authors.
type AssignAuthorRequest struct {
	AuthorID uuid.UUID `json:"authorId" binding:"required"`
}

// LogoUploadRequest is the body for POST /brands/:id/logo-upload-url.
type LogoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// List handles GET /brands.
func (h *Handler) List(c *gin.Context) {
	page, err := models.ParsePageRequest(c.Query("page"), c.Query("limit"), "", c.Query("order"))
	if err != nil {
		response.Error(c, err)
		return
	}
	f := Filter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := c.Query("status"); raw != "" {
		status := models.BrandStatus(strings.ToUpper(raw))
		if !status.Valid() {
			response.Error(c, apperr.InvalidInput("status must be APPROVED or DISAPPROVED"))
			return
		}
		f.Status = &status
	}
	out, err := h.svc.List(c.Request.Context(), f, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, out)
}

// Get handles GET /brands/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := brandID(c)
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

// Create handles POST /brands.
func (h *Handler) Create(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	b, err := h.svc.CreateBrand(c.Request.Context(), identity, CreateInput{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b)
}

// Onboard handles POST /brands/onboard.
func (h *Handler) Onboard(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	out, err := h.svc.Onboard(c.Request.Context(), identity, OnboardInput{
		CreateInput: CreateInput{Name: req.Name, Description: req.Description, LogoURL: req.LogoURL},
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if !out.CredentialsSent {
		response.Degraded(c, http.StatusCreated, out, out.Warning)
		return
	}
	response.Created(c, out)
}

// Update handles PUT /brands/:id.
func (h *Handler) Update(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := brandID(c)
	if !ok {
		return
	}
	var req UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	b, err := h.svc.UpdateBrand(c.Request.Context(), identity, id, Patch{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

// SetStatus handles PUT /brands/:id/status.
func (h *Handler) SetStatus(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := brandID(c)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		response.BadRequest(c, "status must be APPROVED or DISAPPROVED")
		return
	}
	b, err := h.svc.SetBrandStatus(c.Request.Context(), identity, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

// Delete handles DELETE /brands/:id.
func (h *Handler) Delete(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := brandID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignAuthor handles POST /brands/:id/authors.
func (h *Handler) AssignAuthor(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := brandID(c)
	if !ok {
		return
	}
	var req AssignAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "authorId required")
		return
	}
	a, err := h.svc.AssignAuthorToBrand(c.Request.Context(), identity, id, req.AuthorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// ListAuthors handles GET /brands/:id/authors.
func (h *Handler) ListAuthors(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := brandID(c)
	if !ok {
		return
	}
	list, err := h.svc.ListAuthors(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// LogoUploadURL handles POST /brands/:id/logo-upload-url.
func (h *Handler) LogoUploadURL(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := brandID(c)
	if !ok {
		return
	}
	var req LogoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "contentType required")
		return
	}
	up, err := h.svc.LogoUploadURL(c.Request.Context(), identity, id, req.ContentType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, up)
}

func brandID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid brand id")
		return uuid.Nil, false
	}
	return id, true
}
