package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/response"
)

// Handler handles ADMIN user-management endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a users handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateUserRequest is the body for POST /users/{admins,authors,brand-users}.
// Password is optional; one is generated and emailed when absent.
type CreateUserRequest struct {
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"omitempty,min=8"`
	BrandID  *uuid.UUID `json:"brandId"`
}

// CreateAdmin handles POST /users/admins.
func (h *Handler) CreateAdmin(c *gin.Context) { h.create(c, models.RoleAdmin) }

// CreateAuthor handles POST /users/authors.
func (h *Handler) CreateAuthor(c *gin.Context) { h.create(c, models.RoleAuthor) }

// CreateBrandUser handles POST /users/brand-users.
func (h *Handler) CreateBrandUser(c *gin.Context) { h.create(c, models.RoleBrand) }

func (h *Handler) create(c *gin.Context, role models.Role) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	out, err := h.svc.CreateUserWithRole(c.Request.Context(), identity, CreateInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		BrandID:  req.BrandID,
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
