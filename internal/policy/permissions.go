package policy

import (
	"fmt"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
)

// Action is an operation an identity may attempt.
type Action string

const (
	ActionCreateArticle    Action = "create articles"
	ActionEditArticle      Action = "edit articles"
	ActionDeleteArticle    Action = "delete articles"
	ActionViewArticle      Action = "view articles"
	ActionListArticles     Action = "list articles"
	ActionSetArticleStatus Action = "change article status"
	ActionCreateBrand      Action = "create brands"
	ActionEditBrand        Action = "edit brands"
	ActionDeleteBrand      Action = "delete brands"
	ActionSetBrandStatus   Action = "change brand status"
	ActionAssignAuthor     Action = "assign authors to brands"
	ActionListBrandAuthors Action = "list brand authors"
	ActionCreateUser       Action = "create users"
)

// Scope is the ownership condition a role must satisfy for an action.
type Scope int

const (
	// ScopeAny allows the action on any resource.
	ScopeAny Scope = iota + 1
	// ScopeOwnBrand requires resource.BrandID == identity.BrandID.
	ScopeOwnBrand
	// ScopeOwnArticle requires resource.AuthorID == identity.ID.
	ScopeOwnArticle
	// ScopeAssignedBrand requires an author assignment to resource.BrandID.
	ScopeAssignedBrand
)

// permissions is the role x action table. A missing entry means the role is
// categorically excluded from the action.
var permissions = map[models.Role]map[Action]Scope{
	models.RoleAdmin: {
		ActionViewArticle:      ScopeAny,
		ActionListArticles:     ScopeAny,
		ActionSetArticleStatus: ScopeAny,
		ActionCreateBrand:      ScopeAny,
		ActionEditBrand:        ScopeAny,
		ActionDeleteBrand:      ScopeAny,
		ActionSetBrandStatus:   ScopeAny,
		ActionAssignAuthor:     ScopeAny,
		ActionListBrandAuthors: ScopeAny,
		ActionCreateUser:       ScopeAny,
	},
	models.RoleBrand: {
		ActionCreateArticle:    ScopeOwnBrand,
		ActionEditArticle:      ScopeOwnBrand,
		ActionDeleteArticle:    ScopeOwnBrand,
		ActionViewArticle:      ScopeOwnBrand,
		ActionListArticles:     ScopeOwnBrand,
		ActionEditBrand:        ScopeOwnBrand,
		ActionListBrandAuthors: ScopeOwnBrand,
	},
	models.RoleAuthor: {
		ActionCreateArticle: ScopeAssignedBrand,
		ActionEditArticle:   ScopeOwnArticle,
		ActionDeleteArticle: ScopeOwnArticle,
		ActionViewArticle:   ScopeOwnArticle,
		ActionListArticles:  ScopeOwnArticle,
	},
}

// ScopeFor returns the scope granted to role for action, and false when the role is excluded.
func ScopeFor(role models.Role, action Action) (Scope, bool) {
	scope, ok := permissions[role][action]
	return scope, ok
}

// Evaluate decides whether identity may perform action on resource.
// It returns nil when allowed, otherwise an *apperr.Error with code
// FORBIDDEN_ROLE or FORBIDDEN_OWNERSHIP.
func Evaluate(identity Identity, action Action, resource Resource) error {
	scope, ok := ScopeFor(identity.Role, action)
	if !ok {
		return apperr.ForbiddenRole(fmt.Sprintf("role %s may not %s", identity.Role, action))
	}
	switch scope {
	case ScopeAny:
		return nil
	case ScopeOwnBrand:
		if ownsBrand(identity, resource) {
			return nil
		}
		if identity.BrandID == nil {
			return apperr.ForbiddenOwnership("brand user has no brand")
		}
		return apperr.ForbiddenOwnership(fmt.Sprintf("brand may only %s of its own brand", action))
	case ScopeOwnArticle:
		if ownsArticle(identity, resource) {
			return nil
		}
		return apperr.ForbiddenOwnership(fmt.Sprintf("author may only %s it authored", action))
	case ScopeAssignedBrand:
		if resource.AuthorAssigned {
			return nil
		}
		return apperr.ForbiddenOwnership("author is not assigned to this brand")
	}
	return apperr.ForbiddenRole(fmt.Sprintf("role %s may not %s", identity.Role, action))
}

// CanAccess is the ownership predicate shared by list, view, edit and delete paths:
// ADMIN reaches everything, BRAND its own brand, AUTHOR its own articles.
func CanAccess(identity Identity, resource Resource) bool {
	switch identity.Role {
	case models.RoleAdmin:
		return true
	case models.RoleBrand:
		return ownsBrand(identity, resource)
	case models.RoleAuthor:
		return ownsArticle(identity, resource)
	}
	return false
}

func ownsBrand(identity Identity, resource Resource) bool {
	return identity.BrandID != nil && resource.BrandID != nil && *identity.BrandID == *resource.BrandID
}

func ownsArticle(identity Identity, resource Resource) bool {
	return resource.AuthorID != nil && *resource.AuthorID == identity.ID
}
