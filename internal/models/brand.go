package models

import (
	"time"

	"github.com/google/uuid"
)

// BrandStatus is the approval status of a brand.
type BrandStatus string

const (
	BrandStatusApproved    BrandStatus = "APPROVED"
	BrandStatusDisapproved BrandStatus = "DISAPPROVED"
)

// Valid reports whether s is a known brand status.
func (s BrandStatus) Valid() bool {
	return s == BrandStatusApproved || s == BrandStatusDisapproved
}

// Brand represents a tenant under which articles are authored.
type Brand struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	LogoURL     *string     `json:"logoUrl,omitempty"`
	Status      BrandStatus `json:"status"`
	CreatedBy   uuid.UUID   `json:"-"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// BrandCreator is the creator projection embedded in brand responses.
type BrandCreator struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// BrandView is the response shape of a brand, with its creator resolved.
type BrandView struct {
	Brand
	Creator *BrandCreator `json:"createdBy"`
}

// BrandAuthor links an AUTHOR user to a brand it may publish under.
type BrandAuthor struct {
	ID        uuid.UUID `json:"id"`
	BrandID   uuid.UUID `json:"brandId"`
	AuthorID  uuid.UUID `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// AssignedAuthor is an author listed under a brand.
type AssignedAuthor struct {
	AuthorID   uuid.UUID `json:"authorId"`
	Email      string    `json:"email"`
	AssignedAt time.Time `json:"assignedAt"`
}
