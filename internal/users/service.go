// Package users manages accounts: self signup, login, and ADMIN-driven creation
// of admins, authors and brand users.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/logging"
	"github.com/inkwell/backend/internal/mail"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/policy"
	"github.com/inkwell/backend/pkg/utils"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// generatedPasswordBytes is the entropy of passwords generated for accounts created without one.
const generatedPasswordBytes = 12

// WarnCredentialsNotSent is reported when an account was created but its email failed.
const WarnCredentialsNotSent = "account created but the credentials email could not be sent"

// Store is the user persistence the service needs. Get methods return nil, nil when absent.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBrandUser(ctx context.Context, brandID uuid.UUID) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// BrandLookup checks brand existence.
type BrandLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Transactor runs fn as one all-or-nothing unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateInput describes an account an ADMIN creates. An empty Password is generated.
type CreateInput struct {
	Email    string
	Password string
	Role     models.Role
	BrandID  *uuid.UUID
}

// Created is the outcome of an account creation. CredentialsSent is false when the
// account exists but the notification failed; Warning then explains it.
type Created struct {
	User            models.UserPublic `json:"user"`
	CredentialsSent bool              `json:"credentialsSent"`
	Warning         string            `json:"-"`
}

// Service implements account operations.
type Service struct {
	users    Store
	brands   BrandLookup
	tx       Transactor
	notifier mail.Notifier
	logger   *zap.Logger
}

// NewService creates a user service.
func NewService(users Store, brands BrandLookup, tx Transactor, notifier mail.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, brands: brands, tx: tx, notifier: notifier, logger: logger}
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a self-service USER account.
func (s *Service) Signup(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: email, Password: hash, Role: models.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.Dependency("could not create user", err)
	}
	s.logger.Info("user signed up", zap.String("user_id", u.ID.String()), logging.Email("email", email))
	return u, nil
}

// Authenticate checks email and password. Unknown email and wrong password are
// indistinguishable UNAUTHENTICATED errors.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Dependency("could not get user", err)
	}
	if u == nil || !utils.CheckPassword(password, u.Password) {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid credentials")
	}
	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency("could not get user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

// CreateUserWithRole creates an ADMIN, AUTHOR or BRAND account on behalf of an ADMIN
// and sends its credentials once the account is committed.
func (s *Service) CreateUserWithRole(ctx context.Context, identity policy.Identity, in CreateInput) (*Created, error) {
	if err := policy.Evaluate(identity, policy.ActionCreateUser, policy.Resource{}); err != nil {
		return nil, err
	}
	in.Email = NormalizeEmail(in.Email)
	switch in.Role {
	case models.RoleAdmin, models.RoleAuthor:
		if in.BrandID != nil {
			return nil, apperr.InvalidInput(fmt.Sprintf("%s cannot have brandId", in.Role))
		}
	case models.RoleBrand:
		if in.BrandID == nil {
			return nil, apperr.InvalidInput("brandId is required for brand users")
		}
	default:
		return nil, apperr.InvalidInput(fmt.Sprintf("cannot create users with role %q", in.Role))
	}

	password := in.Password
	if password == "" {
		var err error
		if password, err = utils.GeneratePassword(generatedPasswordBytes); err != nil {
			return nil, err
		}
	}
	if err := validateCredentials(in.Email, password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Email: in.Email, Password: hash, Role: in.Role, BrandID: in.BrandID}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, in.Email); err != nil {
			return err
		}
		if in.Role == models.RoleBrand {
			if err := s.ensureBrandUserSlot(ctx, *in.BrandID); err != nil {
				return err
			}
		}
		return apperr.Dependency("could not create user", s.users.Create(ctx, u))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
		zap.String("by", identity.ID.String()),
	)

	return s.notify(ctx, u, password), nil
}

// SeedAdmin makes sure an ADMIN account exists for email. An existing account is a no-op.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Dependency("could not get user", err)
	}
	if existing != nil {
		s.logger.Info("admin already seeded", logging.Email("email", email))
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: email, Password: hash, Role: models.RoleAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			s.logger.Info("admin seeded concurrently", logging.Email("email", email))
			return nil
		}
		return apperr.Dependency("could not seed admin", err)
	}
	s.logger.Info("admin seeded", zap.String("user_id", u.ID.String()), logging.Email("email", email))
	return nil
}

// NotifyCredentials sends credentials for u and reports the outcome as a Created.
// Exposed for flows that create accounts inside a larger transaction.
func (s *Service) NotifyCredentials(ctx context.Context, u *models.User, password string) *Created {
	return s.notify(ctx, u, password)
}

func (s *Service) notify(ctx context.Context, u *models.User, password string) *Created {
	out := &Created{User: u.ToPublic(), CredentialsSent: true}
	err := s.notifier.SendCredentials(ctx, mail.Credentials{To: u.Email, Email: u.Email, Password: password, Role: u.Role})
	if err != nil {
		s.logger.Error("send credentials failed", zap.String("user_id", u.ID.String()), logging.Email("to", u.Email), zap.Error(err))
		out.CredentialsSent = false
		out.Warning = WarnCredentialsNotSent
	}
	return out
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Dependency("could not get user", err)
	}
	if existing != nil {
		return apperr.Conflict("email already exists")
	}
	return nil
}

func (s *Service) ensureBrandUserSlot(ctx context.Context, brandID uuid.UUID) error {
	exists, err := s.brands.Exists(ctx, brandID)
	if err != nil {
		return apperr.Dependency("could not check brand", err)
	}
	if !exists {
		return apperr.NotFound("brand not found")
	}
	current, err := s.users.GetBrandUser(ctx, brandID)
	if err != nil {
		return apperr.Dependency("could not get brand user", err)
	}
	if current != nil {
		return apperr.Conflict("brand already has a brand user")
	}
	return nil
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return apperr.InvalidInput("a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return apperr.InvalidInput(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}
