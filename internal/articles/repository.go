package articles

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/database"
)

const viewColumns = `a.id, a.title, a.content, a.brand_id, a.author_id, a.status, a.published_at, a.created_at, a.updated_at,
	u.id, u.email, u.role`

// Repository handles article persistence.
type Repository struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

// NewRepository creates an article repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new article.
func (r *Repository) Create(ctx context.Context, a *models.Article) error {
	const q = `INSERT INTO articles (id, title, content, brand_id, author_id, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, a.Title, a.Content, a.BrandID, a.AuthorID, a.Status).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return createError(err)
}

// createError maps a foreign key violation to NOT_FOUND: the brand or author was removed
// after the service looked it up.
func createError(err error) error {
	if !database.IsForeignKeyViolation(err) {
		return err
	}
	if database.ConstraintName(err) == "articles_author_id_fkey" {
		return apperr.Wrap(apperr.CodeNotFound, "author not found", err)
	}
	return apperr.Wrap(apperr.CodeNotFound, "brand not found", err)
}

// GetByID returns an article by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	const q = `SELECT id, title, content, brand_id, author_id, status, published_at, created_at, updated_at
		FROM articles WHERE id = $1`
	var a models.Article
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, id).
		Scan(&a.ID, &a.Title, &a.Content, &a.BrandID, &a.AuthorID, &a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetView returns an article joined with its author, or nil when absent.
func (r *Repository) GetView(ctx context.Context, id uuid.UUID) (*models.ArticleView, error) {
	q := `SELECT ` + viewColumns + ` FROM articles a INNER JOIN users u ON u.id = a.author_id WHERE a.id = $1`
	var v models.ArticleView
	err := database.Conn(ctx, r.pool).QueryRow(ctx, q, id).Scan(viewDest(&v)...)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// updateSQL saves title, content and status. Last write wins, except published_at, which keeps
// its first stored value.
const updateSQL = `UPDATE articles SET title = $1, content = $2, status = $3,
		published_at = COALESCE(published_at, $4), updated_at = NOW()
		WHERE id = $5 RETURNING published_at, updated_at`

// Update saves an article's editable fields and status.
func (r *Repository) Update(ctx context.Context, a *models.Article) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx, updateSQL, a.Title, a.Content, a.Status, a.PublishedAt, a.ID).
		Scan(&a.PublishedAt, &a.UpdatedAt)
	if database.IsNoRows(err) {
		return fmt.Errorf("article %s vanished during update", a.ID)
	}
	return err
}

// Delete removes an article by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	return err
}

// List returns one page of articles matching f, plus the total match count.
func (r *Repository) List(ctx context.Context, f Filter, page models.PageRequest) ([]models.ArticleView, int, error) {
	listQ, countQ := r.buildListQueries(f, page)

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	conn := database.Conn(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}
	rows, err := conn.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []models.ArticleView
	for rows.Next() {
		var v models.ArticleView
		if err := rows.Scan(viewDest(&v)...); err != nil {
			return nil, 0, err
		}
		list = append(list, v)
	}
	return list, total, rows.Err()
}

func (r *Repository) buildListQueries(f Filter, page models.PageRequest) (sq.SelectBuilder, sq.SelectBuilder) {
	page = page.Normalize()
	where := sq.And{}
	if f.BrandID != nil {
		where = append(where, sq.Eq{"a.brand_id": *f.BrandID})
	}
	if f.AuthorID != nil {
		where = append(where, sq.Eq{"a.author_id": *f.AuthorID})
	}
	if len(f.Statuses) == 1 {
		where = append(where, sq.Eq{"a.status": f.Statuses[0]})
	} else if len(f.Statuses) > 1 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, sq.Eq{"a.status": statuses})
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + database.EscapeLike(term) + "%"
		where = append(where, sq.Or{sq.ILike{"a.title": pattern}, sq.ILike{"a.content": pattern}})
	}

	sortCol := "a.created_at"
	if page.SortBy == models.SortByPublishedAt {
		sortCol = "a.published_at"
	}
	dir := "DESC NULLS LAST"
	if page.Order == models.OrderAsc {
		dir = "ASC NULLS LAST"
	}

	list := r.builder.Select(viewColumns).
		From("articles a").
		InnerJoin("users u ON u.id = a.author_id").
		OrderBy(sortCol+" "+dir, "a.id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))
	count := r.builder.Select("COUNT(*)").From("articles a")
	if len(where) > 0 {
		list = list.Where(where)
		count = count.Where(where)
	}
	return list, count
}

func viewDest(v *models.ArticleView) []any {
	return []any{
		&v.ID, &v.Title, &v.Content, &v.BrandID, &v.AuthorID, &v.Status, &v.PublishedAt, &v.CreatedAt, &v.UpdatedAt,
		&v.Author.ID, &v.Author.Email, &v.Author.Role,
	}
}
