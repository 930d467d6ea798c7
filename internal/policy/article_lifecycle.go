package policy

import (
	"fmt"
	"time"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
)

type articleTransition struct {
	from models.ArticleStatus
	to   models.ArticleStatus
}

// articleTransitions lists every legal article status change and the roles that may drive it.
var articleTransitions = map[articleTransition][]models.Role{
	{models.ArticleStatusDraft, models.ArticleStatusPendingReview}:     {models.RoleBrand, models.RoleAuthor},
	{models.ArticleStatusDraft, models.ArticleStatusDraft}:             {models.RoleBrand, models.RoleAuthor},
	{models.ArticleStatusRejected, models.ArticleStatusDraft}:          {models.RoleBrand, models.RoleAuthor},
	{models.ArticleStatusPendingReview, models.ArticleStatusPublished}: {models.RoleAdmin},
	{models.ArticleStatusPendingReview, models.ArticleStatusRejected}:  {models.RoleAdmin},
	{models.ArticleStatusPublished, models.ArticleStatusArchived}:      {models.RoleAdmin},
}

// editableStatuses are the states in which BRAND/AUTHOR may change title and content.
var editableStatuses = map[models.ArticleStatus]bool{
	models.ArticleStatusDraft:    true,
	models.ArticleStatusRejected: true,
}

// CanTransitionArticle reports whether role may move an article from one status to another.
func CanTransitionArticle(role models.Role, from, to models.ArticleStatus) bool {
	for _, allowed := range articleTransitions[articleTransition{from, to}] {
		if allowed == role {
			return true
		}
	}
	return false
}

// CheckArticleTransition returns FORBIDDEN_STATE unless the transition is in the table for role.
func CheckArticleTransition(role models.Role, from, to models.ArticleStatus) error {
	if !to.Valid() {
		return apperr.InvalidInput(fmt.Sprintf("unknown article status %q", to))
	}
	if !CanTransitionArticle(role, from, to) {
		return apperr.ForbiddenState(fmt.Sprintf("invalid status transition %s -> %s for %s", from, to, role))
	}
	return nil
}

// ArticleEditable reports whether title/content may still be edited in status.
func ArticleEditable(status models.ArticleStatus) bool {
	return editableStatuses[status]
}

// CheckArticleEditable returns FORBIDDEN_STATE when the article is locked for edits.
func CheckArticleEditable(a *models.Article) error {
	if !ArticleEditable(a.Status) {
		return apperr.ForbiddenState(fmt.Sprintf("article cannot be modified in status %s", a.Status))
	}
	return nil
}

// ApplyArticleStatus sets the status and stamps PublishedAt on the first entry into PUBLISHED.
// An existing PublishedAt is never overwritten.
func ApplyArticleStatus(a *models.Article, to models.ArticleStatus, now time.Time) {
	if to == models.ArticleStatusPublished && a.Status != models.ArticleStatusPublished && a.PublishedAt == nil {
		t := now.UTC()
		a.PublishedAt = &t
	}
	a.Status = to
}
