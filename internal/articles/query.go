package articles

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
)

func parsePage(c *gin.Context) (models.PageRequest, error) {
	return models.ParsePageRequest(c.Query("page"), c.Query("limit"), c.Query("sortBy"), c.Query("order"))
}

// parseStatuses reads a comma-separated status filter.
func parseStatuses(raw string) ([]models.ArticleStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []models.ArticleStatus
	for _, part := range strings.Split(raw, ",") {
		s := models.ArticleStatus(strings.ToUpper(strings.TrimSpace(part)))
		if !s.Valid() {
			return nil, apperr.InvalidInput("unknown article status " + part)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseOptionalUUID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.InvalidInput("invalid " + field)
	}
	return &id, nil
}

func parseListQuery(c *gin.Context) (ListQuery, error) {
	var q ListQuery
	var err error
	if q.Page, err = parsePage(c); err != nil {
		return q, err
	}
	if q.Statuses, err = parseStatuses(c.Query("status")); err != nil {
		return q, err
	}
	if q.BrandID, err = parseOptionalUUID(c.Query("brandId"), "brandId"); err != nil {
		return q, err
	}
	if q.AuthorID, err = parseOptionalUUID(c.Query("authorId"), "authorId"); err != nil {
		return q, err
	}
	return q, nil
}

func parsePublicQuery(c *gin.Context) (PublicQuery, error) {
	var q PublicQuery
	var err error
	if q.Page, err = parsePage(c); err != nil {
		return q, err
	}
	if q.BrandID, err = parseOptionalUUID(c.Query("brandId"), "brandId"); err != nil {
		return q, err
	}
	q.Search = strings.TrimSpace(c.Query("search"))
	return q, nil
}
