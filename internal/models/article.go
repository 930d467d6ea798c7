package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus is the lifecycle status of an article.
type ArticleStatus string

const (
	ArticleStatusDraft         ArticleStatus = "DRAFT"
	ArticleStatusPendingReview ArticleStatus = "PENDING_REVIEW"
	ArticleStatusPublished     ArticleStatus = "PUBLISHED"
	ArticleStatusArchived      ArticleStatus = "ARCHIVED"
	ArticleStatusRejected      ArticleStatus = "REJECTED"
)

// ArticleStatuses lists every article status.
var ArticleStatuses = []ArticleStatus{
	ArticleStatusDraft,
	ArticleStatusPendingReview,
	ArticleStatusPublished,
	ArticleStatusArchived,
	ArticleStatusRejected,
}

// Valid reports whether s is a known article status.
func (s ArticleStatus) Valid() bool {
	for _, known := range ArticleStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Article is a piece of content authored under a brand.
type Article struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	BrandID     uuid.UUID     `json:"brandId"`
	AuthorID    uuid.UUID     `json:"authorId"`
	Status      ArticleStatus `json:"status"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ArticleAuthor is the author projection attached to listed articles.
type ArticleAuthor struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// ArticleView is an article joined with its author, as returned by list and status endpoints.
type ArticleView struct {
	Article
	Author ArticleAuthor `json:"author"`
}
