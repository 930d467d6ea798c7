// Package policy decides who may act on which resource and which status transitions are legal.
// Everything here is pure: no I/O, no clocks other than those passed in.
package policy

import (
	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/models"
)

// Identity is the authenticated actor of a request.
// BRAND identities always carry BrandID; ADMIN identities never do.
type Identity struct {
	ID      uuid.UUID
	Role    models.Role
	BrandID *uuid.UUID
}

// IdentityFromUser derives the identity of a loaded user row.
func IdentityFromUser(u *models.User) Identity {
	id := Identity{ID: u.ID, Role: u.Role}
	if u.Role == models.RoleBrand && u.BrandID != nil {
		b := *u.BrandID
		id.BrandID = &b
	}
	return id
}

// IsAdmin reports whether the identity has role ADMIN.
func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// Resource describes the ownership facts of the target of an action.
// AuthorAssigned is filled by the caller for article creation, where the
// assignment lookup is I/O the evaluator must not perform.
type Resource struct {
	BrandID        *uuid.UUID
	AuthorID       *uuid.UUID
	AuthorAssigned bool
}

// ArticleResource returns the ownership facts of an existing article.
func ArticleResource(a *models.Article) Resource {
	brandID, authorID := a.BrandID, a.AuthorID
	return Resource{BrandID: &brandID, AuthorID: &authorID}
}

// BrandResource returns the ownership facts of a brand.
func BrandResource(brandID uuid.UUID) Resource {
	return Resource{BrandID: &brandID}
}

// NewArticleResource returns the facts for an article about to be created under brandID.
func NewArticleResource(brandID uuid.UUID, authorAssigned bool) Resource {
	return Resource{BrandID: &brandID, AuthorAssigned: authorAssigned}
}
