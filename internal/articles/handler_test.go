package articles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/policy"
	"github.com/inkwell/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(f *fixture, identity policy.Identity) *gin.Engine {
	h := NewHandler(f.svc)
	r := gin.New()
	r.GET("/articles", h.ListPublished)
	r.GET("/articles/:id", h.GetPublished)
	auth := r.Group("", func(c *gin.Context) {
		c.Set(middleware.ContextIdentity, identity)
		c.Next()
	})
	auth.GET("/me/articles", h.List)
	auth.GET("/me/articles/:id", h.Get)
	auth.POST("/me/articles", h.Create)
	auth.PATCH("/me/articles/:id", h.Update)
	auth.DELETE("/me/articles/:id", h.Delete)
	auth.PATCH("/me/articles/:id/status", h.SetStatus)
	return r
}

func request(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Body) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out response.Body
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHandlerCreateAndSubmit(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, f.brandUsr)

	w, _ := request(r, http.MethodPost, "/me/articles", `{"title":"Hello","content":"World","brandId":"`+f.brandA.String()+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Article `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.ArticleStatusDraft, created.Data.Status)
	path := "/me/articles/" + created.Data.ID.String()

	w, body := request(r, http.MethodPatch, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeEmptyUpdate, body.Code)

	w, _ = request(r, http.MethodPatch, path, `{"status":"PENDING_REVIEW"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = request(r, http.MethodPatch, path, `{"content":"edited"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperr.CodeForbiddenState, body.Code)

	w, _ = request(r, http.MethodGet, "/articles/"+created.Data.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = request(r, http.MethodGet, "/me/articles?status=pending_review", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w, _ = request(r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandlerQueryValidation(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, f.admin)

	for _, path := range []string{
		"/articles?limit=0",
		"/articles?limit=101",
		"/articles?page=-1",
		"/articles?order=sideways",
		"/articles?brandId=acme",
		"/me/articles?status=LIVE",
		"/me/articles?authorId=42",
		"/me/articles/not-a-uuid",
	} {
		w, _ := request(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w, _ := request(r, http.MethodGet, "/articles?page=2&limit=5&sortBy=publishedAt&order=asc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currentPage":2`)
}

func TestHandlerAdminCannotCreate(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, f.admin)

	w, body := request(r, http.MethodPost, "/me/articles", `{"title":"Hello","content":"World","brandId":"`+f.brandA.String()+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperr.CodeForbiddenRole, body.Code)

	w, _ = request(r, http.MethodPatch, "/me/articles/"+f.brandA.String()+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
