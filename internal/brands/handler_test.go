package brands

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
	"github.com/inkwell/backend/internal/policy"
	"github.com/inkwell/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func handlerRouter(f *fixture, identity policy.Identity) *gin.Engine {
	h := NewHandler(f.svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextIdentity, identity)
		c.Next()
	})
	r.GET("/brands", h.List)
	r.GET("/brands/:id", h.Get)
	r.POST("/brands/onboard", h.Onboard)
	r.PUT("/brands/:id", h.Update)
	r.PUT("/brands/:id/status", h.SetStatus)
	return r
}

func call(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Body) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out response.Body
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHandlerOnboardDegraded(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	r := handlerRouter(f, f.admin)

	w, body := call(r, http.MethodPost, "/brands/onboard", `{"name":"Globex","email":"owner@globex.test"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, apperr.CodeDependencyFailure, body.Code)
	assert.NotEmpty(t, body.Warning)
	assert.Contains(t, w.Body.String(), `"credentialsSent":false`)
}

func TestHandlerValidation(t *testing.T) {
	f := newFixture(t)
	r := handlerRouter(f, f.admin)

	w, _ := call(r, http.MethodGet, "/brands/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := call(r, http.MethodPut, "/brands/"+f.brand.ID.String()+"/status", `{"status":"PENDING"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeInvalidInput, body.Code)

	w, body = call(r, http.MethodPut, "/brands/"+f.brand.ID.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeEmptyUpdate, body.Code)

	w, body = call(r, http.MethodGet, "/brands?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeInvalidInput, body.Code)

	w, _ = call(r, http.MethodGet, "/brands?status=disapproved&limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestHandlerStatusNoOp(t *testing.T) {
	f := newFixture(t)
	r := handlerRouter(f, f.admin)
	path := "/brands/" + f.brand.ID.String() + "/status"

	w, _ := call(r, http.MethodPut, path, `{"status":"APPROVED"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := call(r, http.MethodPut, path, `{"status":"APPROVED"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeNoOpState, body.Code)
}
