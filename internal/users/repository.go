package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/database"
)

const userColumns = `id, email, password_hash, role, brand_id, created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.BrandID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, q, arg))
	if database.IsNoRows(err) {
		return nil, nil
	}
	return u, err
}

// GetByID returns a user by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByEmail returns a user by email (case-insensitive), or nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `lower(email) = lower($1)`, email)
}

// GetBrandUser returns the BRAND-role user operating brandID, or nil when there is none.
func (r *Repository) GetBrandUser(ctx context.Context, brandID uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `role = 'BRAND' AND brand_id = $1`, brandID)
}

// Create inserts a new user. A duplicate email or second BRAND user for a brand is CONFLICT.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (email, password_hash, role, brand_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, u.Email, u.Password, u.Role, u.BrandID).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.CodeConflict, "user already exists", err)
	}
	return brandRefError(err)
}

// brandRefError maps a violated users.brand_id reference to NOT_FOUND.
func brandRefError(err error) error {
	if database.IsForeignKeyViolation(err) {
		return apperr.Wrap(apperr.CodeNotFound, "brand not found", err)
	}
	return err
}

// SetBrand links a user to a brand.
func (r *Repository) SetBrand(ctx context.Context, userID, brandID uuid.UUID) error {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET brand_id = $1, updated_at = NOW() WHERE id = $2`, brandID, userID)
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.CodeConflict, "brand already has a brand user", err)
	}
	if err != nil {
		return brandRefError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// UpdateCredentials changes email and/or password hash. Nil leaves the column unchanged.
func (r *Repository) UpdateCredentials(ctx context.Context, userID uuid.UUID, email, passwordHash *string) error {
	const q = `UPDATE users SET email = COALESCE($1, email), password_hash = COALESCE($2, password_hash), updated_at = NOW()
		WHERE id = $3`
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, q, email, passwordHash, userID)
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.CodeConflict, "email already in use", err)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
