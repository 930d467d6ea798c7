package brands

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/database"
)

const brandColumns = `b.id, b.name, b.description, b.logo_url, b.status, b.created_by, b.created_at, b.updated_at`

// Repository handles brand and author-assignment persistence.
type Repository struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

// NewRepository creates a brand repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a brand. A duplicate name is CONFLICT.
func (r *Repository) Create(ctx context.Context, b *models.Brand) error {
	const q = `INSERT INTO brands (name, description, logo_url, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, b.Name, b.Description, b.LogoURL, b.Status, b.CreatedBy).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.CodeConflict, "brand already exists", err)
	}
	return err
}

// GetByID returns a brand, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	q := `SELECT ` + brandColumns + ` FROM brands b WHERE b.id = $1`
	var b models.Brand
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, id).
		Scan(&b.ID, &b.Name, &b.Description, &b.LogoURL, &b.Status, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByName returns a brand by exact name, or nil when absent.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.Brand, error) {
	q := `SELECT ` + brandColumns + ` FROM brands b WHERE b.name = $1`
	var b models.Brand
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, name).
		Scan(&b.ID, &b.Name, &b.Description, &b.LogoURL, &b.Status, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Exists reports whether a brand with id exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM brands WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// GetView returns a brand with its creator, or nil when absent.
func (r *Repository) GetView(ctx context.Context, id uuid.UUID) (*models.BrandView, error) {
	q, args, err := r.viewQuery().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	views, err := scanViews(rows)
	if err != nil || len(views) == 0 {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of brands, newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, f Filter, page models.PageRequest) ([]models.BrandView, int, error) {
	listQ, countQ := r.buildListQueries(f, page)
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	conn := database.Conn(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := conn.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	views, err := scanViews(rows)
	return views, total, err
}

func (r *Repository) viewQuery() sq.SelectBuilder {
	return r.builder.Select(brandColumns, "u.id", "u.email").
		From("brands b").
		LeftJoin("users u ON u.id = b.created_by")
}

func (r *Repository) buildListQueries(f Filter, page models.PageRequest) (sq.SelectBuilder, sq.SelectBuilder) {
	page = page.Normalize()
	where := sq.And{}
	if f.Status != nil {
		where = append(where, sq.Eq{"b.status": *f.Status})
	}
	if f.Search != "" {
		where = append(where, sq.ILike{"b.name": "%" + database.EscapeLike(f.Search) + "%"})
	}
	dir := "DESC"
	if page.Order == models.OrderAsc {
		dir = "ASC"
	}
	list := r.viewQuery().
		OrderBy("b.created_at "+dir, "b.id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))
	count := r.builder.Select("COUNT(*)").From("brands b")
	if len(where) > 0 {
		list = list.Where(where)
		count = count.Where(where)
	}
	return list, count
}

func scanViews(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
}) ([]models.BrandView, error) {
	defer rows.Close()
	var out []models.BrandView
	for rows.Next() {
		var v models.BrandView
		var creatorID *uuid.UUID
		var creatorEmail *string
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.LogoURL, &v.Status, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
			&creatorID, &creatorEmail); err != nil {
			return nil, err
		}
		if creatorID != nil && creatorEmail != nil {
			v.Creator = &models.BrandCreator{ID: *creatorID, Email: *creatorEmail}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update saves name, description and logo_url. A duplicate name is CONFLICT.
func (r *Repository) Update(ctx context.Context, b *models.Brand) error {
	const q = `UPDATE brands SET name = $1, description = $2, logo_url = $3, updated_at = NOW()
		WHERE id = $4 RETURNING updated_at`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, b.Name, b.Description, b.LogoURL, b.ID).Scan(&b.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.CodeConflict, "brand name already in use", err)
	}
	if database.IsNoRows(err) {
		return apperr.NotFound("brand not found")
	}
	return err
}

// UpdateStatus sets the approval status.
func (r *Repository) UpdateStatus(ctx context.Context, b *models.Brand) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE brands SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`, b.Status, b.ID).
		Scan(&b.UpdatedAt)
	if database.IsNoRows(err) {
		return apperr.NotFound("brand not found")
	}
	return err
}

// Delete removes a brand. Articles, assignments and the brand user go with it through
// ON DELETE CASCADE. Returns false when nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Assign creates an author assignment. An existing pair is CONFLICT.
func (r *Repository) Assign(ctx context.Context, a *models.BrandAuthor) error {
	const q = `INSERT INTO brand_authors (brand_id, author_id) VALUES ($1, $2) RETURNING id, created_at`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, a.BrandID, a.AuthorID).Scan(&a.ID, &a.CreatedAt)
	return assignError(err)
}

func assignError(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperr.Wrap(apperr.CodeConflict, "author already assigned to this brand", err)
	case database.ConstraintName(err) == "brand_authors_author_id_fkey":
		return apperr.Wrap(apperr.CodeNotFound, "user not found", err)
	case database.IsForeignKeyViolation(err):
		return apperr.Wrap(apperr.CodeNotFound, "brand not found", err)
	}
	return err
}

// IsAssigned reports whether authorID is assigned to brandID.
func (r *Repository) IsAssigned(ctx context.Context, brandID, authorID uuid.UUID) (bool, error) {
	var ok bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM brand_authors WHERE brand_id = $1 AND author_id = $2)`, brandID, authorID).Scan(&ok)
	return ok, err
}

// ListAuthors returns the authors assigned to brandID, most recent first.
func (r *Repository) ListAuthors(ctx context.Context, brandID uuid.UUID) ([]models.AssignedAuthor, error) {
	const q = `SELECT u.id, u.email, ba.created_at FROM brand_authors ba
		INNER JOIN users u ON u.id = ba.author_id
		WHERE ba.brand_id = $1 ORDER BY ba.created_at DESC, u.id DESC`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, q, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.AssignedAuthor{}
	for rows.Next() {
		var a models.AssignedAuthor
		if err := rows.Scan(&a.AuthorID, &a.Email, &a.AssignedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
