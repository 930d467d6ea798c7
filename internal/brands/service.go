// Package brands manages tenants: creation and onboarding, profile and credential
// edits, approval status, author assignments and logos.
package brands

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/logging"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/policy"
	"github.com/inkwell/backend/internal/users"
	"github.com/inkwell/backend/pkg/storage"
	"github.com/inkwell/backend/pkg/utils"
)

// Store is the brand persistence the service needs. Get methods return nil, nil when absent.
type Store interface {
	Create(ctx context.Context, b *models.Brand) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	GetByName(ctx context.Context, name string) (*models.Brand, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.BrandView, error)
	List(ctx context.Context, f Filter, page models.PageRequest) ([]models.BrandView, int, error)
	Update(ctx context.Context, b *models.Brand) error
	UpdateStatus(ctx context.Context, b *models.Brand) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Assign(ctx context.Context, a *models.BrandAuthor) error
	IsAssigned(ctx context.Context, brandID, authorID uuid.UUID) (bool, error)
	ListAuthors(ctx context.Context, brandID uuid.UUID) ([]models.AssignedAuthor, error)
}

// UserStore is the user persistence the brand flows touch.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBrandUser(ctx context.Context, brandID uuid.UUID) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	SetBrand(ctx context.Context, userID, brandID uuid.UUID) error
	UpdateCredentials(ctx context.Context, userID uuid.UUID, email, passwordHash *string) error
}

// Transactor runs fn as one all-or-nothing unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CredentialsNotifier sends an account's credentials after commit.
type CredentialsNotifier interface {
	NotifyCredentials(ctx context.Context, u *models.User, password string) *users.Created
}

// LogoStorage issues logo uploads and cleans them up.
type LogoStorage interface {
	PresignLogoUpload(ctx context.Context, brandID uuid.UUID, contentType string) (*storage.PresignedUpload, error)
	DeleteLogos(ctx context.Context, brandID uuid.UUID) error
}

// Filter narrows brand listings.
type Filter struct {
	Status *models.BrandStatus
	Search string
}

// CreateInput is the profile of a new brand.
type CreateInput struct {
	Name        string
	Description *string
	LogoURL     *string
}

// Patch is a partial brand update. Profile fields change the brand row; Email and
// Password change its BRAND user. Nil and empty fields are treated as absent.
type Patch struct {
	Name        *string
	Description *string
	LogoURL     *string
	Email       *string
	Password    *string
}

func (p Patch) hasProfile() bool {
	return present(p.Name) || present(p.Description) || present(p.LogoURL)
}

func (p Patch) hasCredentials() bool {
	return present(p.Email) || present(p.Password)
}

// Empty reports whether the patch sets no recognized field.
func (p Patch) Empty() bool { return !p.hasProfile() && !p.hasCredentials() }

func present(s *string) bool { return s != nil && strings.TrimSpace(*s) != "" }

// OnboardInput creates a brand together with its BRAND user. An empty Password is generated.
type OnboardInput struct {
	CreateInput
	Email    string
	Password string
}

// Onboarded is the outcome of onboarding.
type Onboarded struct {
	Brand           models.Brand      `json:"brand"`
	User            models.UserPublic `json:"user"`
	CredentialsSent bool              `json:"credentialsSent"`
	Warning         string            `json:"-"`
}

// Service implements the brand workflows.
type Service struct {
	brands   Store
	users    UserStore
	tx       Transactor
	notifier CredentialsNotifier
	logos    LogoStorage
	logger   *zap.Logger
}

// NewService creates a brand service. logos may be nil when object storage is not configured.
func NewService(brands Store, users UserStore, tx Transactor, notifier CredentialsNotifier, logos LogoStorage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{brands: brands, users: users, tx: tx, notifier: notifier, logos: logos, logger: logger}
}

// CreateBrand creates a DISAPPROVED brand owned by the ADMIN identity.
func (s *Service) CreateBrand(ctx context.Context, identity policy.Identity, in CreateInput) (*models.Brand, error) {
	if err := policy.Evaluate(identity, policy.ActionCreateBrand, policy.Resource{}); err != nil {
		return nil, err
	}
	b, err := newBrand(identity, in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, b.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.brands.Create(ctx, b); err != nil {
		return nil, apperr.Dependency("could not create brand", err)
	}
	s.logger.Info("brand created", zap.String("brand_id", b.ID.String()), zap.String("by", identity.ID.String()))
	return b, nil
}

// Onboard creates a brand, its BRAND user and the link between them in one transaction,
// then sends the credentials.
func (s *Service) Onboard(ctx context.Context, identity policy.Identity, in OnboardInput) (*Onboarded, error) {
	if err := policy.Evaluate(identity, policy.ActionCreateBrand, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := policy.Evaluate(identity, policy.ActionCreateUser, policy.Resource{}); err != nil {
		return nil, err
	}
	b, err := newBrand(identity, in.CreateInput)
	if err != nil {
		return nil, err
	}
	email := users.NormalizeEmail(in.Email)
	password := in.Password
	if password == "" {
		if password, err = utils.GeneratePassword(12); err != nil {
			return nil, err
		}
	}
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Email: email, Password: hash, Role: models.RoleBrand}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
			return err
		}
		if err := s.ensureNameFree(ctx, b.Name, uuid.Nil); err != nil {
			return err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return apperr.Dependency("could not create brand user", err)
		}
		if err := s.brands.Create(ctx, b); err != nil {
			return apperr.Dependency("could not create brand", err)
		}
		if err := s.users.SetBrand(ctx, u.ID, b.ID); err != nil {
			return apperr.Dependency("could not link brand user", err)
		}
		brandID := b.ID
		u.BrandID = &brandID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("brand onboarded",
		zap.String("brand_id", b.ID.String()),
		zap.String("user_id", u.ID.String()),
		logging.Email("email", email),
	)

	sent := s.notifier.NotifyCredentials(ctx, u, password)
	return &Onboarded{Brand: *b, User: sent.User, CredentialsSent: sent.CredentialsSent, Warning: sent.Warning}, nil
}

// UpdateBrand edits a brand's profile and/or its BRAND user's credentials.
func (s *Service) UpdateBrand(ctx context.Context, identity policy.Identity, id uuid.UUID, patch Patch) (*models.BrandView, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apperr.ErrEmptyUpdate
	}
	if err := policy.Evaluate(identity, policy.ActionEditBrand, policy.BrandResource(id)); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if patch.hasProfile() {
			if err := s.applyProfile(ctx, b, patch); err != nil {
				return err
			}
		}
		if patch.hasCredentials() {
			return s.applyCredentials(ctx, id, patch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("brand updated",
		zap.String("brand_id", id.String()),
		zap.Bool("profile", patch.hasProfile()),
		zap.Bool("credentials", patch.hasCredentials()),
		zap.String("by", identity.ID.String()),
	)
	return s.Get(ctx, id)
}

func (s *Service) applyProfile(ctx context.Context, b *models.Brand, patch Patch) error {
	if present(patch.Name) {
		name := strings.TrimSpace(*patch.Name)
		if name != b.Name {
			if err := s.ensureNameFree(ctx, name, b.ID); err != nil {
				return err
			}
			b.Name = name
		}
	}
	if present(patch.Description) {
		d := strings.TrimSpace(*patch.Description)
		b.Description = &d
	}
	if present(patch.LogoURL) {
		u := strings.TrimSpace(*patch.LogoURL)
		b.LogoURL = &u
	}
	return apperr.Dependency("could not update brand", s.brands.Update(ctx, b))
}

func (s *Service) applyCredentials(ctx context.Context, brandID uuid.UUID, patch Patch) error {
	owner, err := s.users.GetBrandUser(ctx, brandID)
	if err != nil {
		return apperr.Dependency("could not get brand user", err)
	}
	if owner == nil {
		return apperr.NotFound("brand has no brand user")
	}

	var email, hash *string
	if present(patch.Email) {
		e := users.NormalizeEmail(*patch.Email)
		if !strings.Contains(e, "@") {
			return apperr.InvalidInput("a valid email is required")
		}
		if e != owner.Email {
			if err := s.ensureEmailFree(ctx, e, owner.ID); err != nil {
				return err
			}
			email = &e
		}
	}
	if present(patch.Password) {
		if len(*patch.Password) < users.MinPasswordLength {
			return apperr.InvalidInput(fmt.Sprintf("password must be at least %d characters", users.MinPasswordLength))
		}
		h, err := utils.HashPassword(*patch.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hash = &h
	}
	if email == nil && hash == nil {
		return nil
	}
	return apperr.Dependency("could not update brand credentials", s.users.UpdateCredentials(ctx, owner.ID, email, hash))
}

// SetBrandStatus approves or de-lists a brand. Re-applying the current status is NO_OP_STATE.
func (s *Service) SetBrandStatus(ctx context.Context, identity policy.Identity, id uuid.UUID, target models.BrandStatus) (*models.Brand, error) {
	if err := policy.Evaluate(identity, policy.ActionSetBrandStatus, policy.BrandResource(id)); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckBrandTransition(b.Status, target); err != nil {
		return nil, err
	}
	from := b.Status
	b.Status = target
	if err := s.brands.UpdateStatus(ctx, b); err != nil {
		return nil, apperr.Dependency("could not update brand status", err)
	}
	s.logger.Info("brand status changed",
		zap.String("brand_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	return b, nil
}

// AssignAuthorToBrand lets an AUTHOR publish under a brand.
func (s *Service) AssignAuthorToBrand(ctx context.Context, identity policy.Identity, brandID, authorID uuid.UUID) (*models.BrandAuthor, error) {
	if err := policy.Evaluate(identity, policy.ActionAssignAuthor, policy.BrandResource(brandID)); err != nil {
		return nil, err
	}
	exists, err := s.brands.Exists(ctx, brandID)
	if err != nil {
		return nil, apperr.Dependency("could not check brand", err)
	}
	if !exists {
		return nil, apperr.NotFound("brand not found")
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, apperr.Dependency("could not get user", err)
	}
	if author == nil {
		return nil, apperr.NotFound("user not found")
	}
	if author.Role != models.RoleAuthor {
		return nil, apperr.InvalidInput("only users with AUTHOR role can be assigned to a brand")
	}
	assigned, err := s.brands.IsAssigned(ctx, brandID, authorID)
	if err != nil {
		return nil, apperr.Dependency("could not check assignment", err)
	}
	if assigned {
		return nil, apperr.Conflict("author already assigned to this brand")
	}
	a := &models.BrandAuthor{BrandID: brandID, AuthorID: authorID}
	if err := s.brands.Assign(ctx, a); err != nil {
		return nil, apperr.Dependency("could not assign author", err)
	}
	s.logger.Info("author assigned", zap.String("brand_id", brandID.String()), zap.String("author_id", authorID.String()))
	return a, nil
}

// ListAuthors returns the authors of a brand: ADMIN for any brand, BRAND for its own.
func (s *Service) ListAuthors(ctx context.Context, identity policy.Identity, brandID uuid.UUID) ([]models.AssignedAuthor, error) {
	if err := policy.Evaluate(identity, policy.ActionListBrandAuthors, policy.BrandResource(brandID)); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, brandID); err != nil {
		return nil, err
	}
	list, err := s.brands.ListAuthors(ctx, brandID)
	if err != nil {
		return nil, apperr.Dependency("could not list brand authors", err)
	}
	return list, nil
}

// Get returns a brand with its creator.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.BrandView, error) {
	v, err := s.brands.GetView(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("could not get brand", err)
	}
	if v == nil {
		return nil, apperr.NotFound("brand not found")
	}
	if v.Creator == nil {
		s.logger.Warn("brand has no creator", zap.String("brand_id", id.String()))
	}
	return v, nil
}

// List returns a page of brands, newest first.
func (s *Service) List(ctx context.Context, f Filter, page models.PageRequest) (models.Page[models.BrandView], error) {
	page = page.Normalize()
	rows, total, err := s.brands.List(ctx, f, page)
	if err != nil {
		return models.Page[models.BrandView]{}, apperr.Dependency("could not list brands", err)
	}
	return models.NewPage(rows, total, page), nil
}

// Delete removes a brand; its articles, assignments and brand user are removed by the
// store's cascade. Stored logos are cleaned up best-effort.
func (s *Service) Delete(ctx context.Context, identity policy.Identity, id uuid.UUID) error {
	if err := policy.Evaluate(identity, policy.ActionDeleteBrand, policy.BrandResource(id)); err != nil {
		return err
	}
	deleted, err := s.brands.Delete(ctx, id)
	if err != nil {
		return apperr.Dependency("could not delete brand", err)
	}
	if !deleted {
		return apperr.NotFound("brand not found")
	}
	s.logger.Info("brand deleted", zap.String("brand_id", id.String()), zap.String("by", identity.ID.String()))
	if s.logos != nil {
		if err := s.logos.DeleteLogos(ctx, id); err != nil {
			s.logger.Warn("delete brand logos", zap.String("brand_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

// LogoUploadURL issues a presigned upload for a new brand logo. Whoever may edit the
// brand may upload its logo; the returned public URL is then saved as logoUrl.
func (s *Service) LogoUploadURL(ctx context.Context, identity policy.Identity, id uuid.UUID, contentType string) (*storage.PresignedUpload, error) {
	if err := policy.Evaluate(identity, policy.ActionEditBrand, policy.BrandResource(id)); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if _, ok := storage.LogoExtension(contentType); !ok {
		return nil, apperr.InvalidInput("logo must be a jpeg, png, webp or svg image")
	}
	if s.logos == nil {
		return nil, apperr.New(apperr.CodeDependencyFailure, "logo storage is not configured")
	}
	up, err := s.logos.PresignLogoUpload(ctx, id, contentType)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependencyFailure, "could not issue logo upload", err)
	}
	return up, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	b, err := s.brands.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("could not get brand", err)
	}
	if b == nil {
		return nil, apperr.NotFound("brand not found")
	}
	return b, nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.brands.GetByName(ctx, name)
	if err != nil {
		return apperr.Dependency("could not get brand by name", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Conflict(fmt.Sprintf("brand with name '%s' already exists", name))
	}
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Dependency("could not get user", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Conflict("email already exists")
	}
	return nil
}

func newBrand(identity policy.Identity, in CreateInput) (*models.Brand, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return nil, apperr.InvalidInput("name must be 1-255 characters")
	}
	return &models.Brand{
		Name:        name,
		Description: trimmed(in.Description),
		LogoURL:     trimmed(in.LogoURL),
		Status:      models.BrandStatusDisapproved,
		CreatedBy:   identity.ID,
	}, nil
}

func trimmed(s *string) *string {
	if !present(s) {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return apperr.InvalidInput("a valid email is required")
	}
	if len(password) < users.MinPasswordLength {
		return apperr.InvalidInput(fmt.Sprintf("password must be at least %d characters", users.MinPasswordLength))
	}
	return nil
}
