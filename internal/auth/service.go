package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/session"
	"github.com/event-master/backend/pkg/utils"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrRoleExists is matched by RoleExistsError.
	ErrRoleExists = errors.New("role already held")
	// ErrInvalidRole is returned for a type outside Participant/Organiser/Speaker.
	ErrInvalidRole = errors.New("invalid user type")
)

// RoleExistsError reports a signup for a role the email already holds.
type RoleExistsError struct {
	Email string
	Role  models.Role
}

func (e *RoleExistsError) Error() string {
	return fmt.Sprintf("User of type %s for email %s already exists", e.Role, e.Email)
}

func (e *RoleExistsError) Unwrap() error { return ErrRoleExists }

// RoleNotHeldError reports a login with valid credentials for a role the user does not hold.
type RoleNotHeldError struct {
	Email string
	Role  models.Role
}

func (e *RoleNotHeldError) Error() string {
	return fmt.Sprintf("%s is not registered as a %s", e.Email, e.Role)
}

// Store is the persistence the service needs.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithProfile(ctx context.Context, email, passwordHash string, role models.Role, in ProfileInput) (*models.User, error)
	AttachRole(ctx context.Context, userID uuid.UUID, role models.Role, in ProfileInput) error
}

// Sessions opens and closes login sessions.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID, role models.Role) (*session.Session, error)
	Invalidate(ctx context.Context, id string) error
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      models.Role
	Password  string
}

// LoginInput is a login request.
type LoginInput struct {
	Email    string
	Role     models.Role
	Password string
}

// Service implements signup, login and logout.
type Service struct {
	store    Store
	sessions Sessions
	logger   *zap.Logger
}

// NewService creates an auth service.
func NewService(store Store, sessions Sessions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sessions: sessions, logger: logger}
}

// Signup creates a user with a role profile, or attaches a new role to an existing user whose
// password matches, and opens a session for that role.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*session.Session, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	email := utils.NormalizeEmail(in.Email)
	profile := ProfileInput{FirstName: in.FirstName, LastName: in.LastName, Email: email}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	var userID uuid.UUID
	if existing != nil {
		if existing.HasRole(in.Role) {
			return nil, &RoleExistsError{Email: email, Role: in.Role}
		}
		if !utils.CheckPassword(in.Password, existing.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		if err := s.store.AttachRole(ctx, existing.ID, in.Role, profile); err != nil {
			if errors.Is(err, ErrRoleExists) {
				return nil, &RoleExistsError{Email: email, Role: in.Role}
			}
			return nil, fmt.Errorf("attach role: %w", err)
		}
		userID = existing.ID
		s.logger.Info("role attached", zap.String("user_id", userID.String()), zap.String("role", string(in.Role)))
	} else {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u, err := s.store.CreateWithProfile(ctx, email, hash, in.Role, profile)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		userID = u.ID
		s.logger.Info("user created", zap.String("user_id", userID.String()), zap.String("role", string(in.Role)))
	}

	return s.sessions.Create(ctx, userID, in.Role)
}

// Login checks credentials and that the user holds the requested role, then opens a session.
func (s *Service) Login(ctx context.Context, in LoginInput) (*session.Session, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	email := utils.NormalizeEmail(in.Email)
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.HasRole(in.Role) {
		return nil, &RoleNotHeldError{Email: email, Role: in.Role}
	}
	return s.sessions.Create(ctx, u.ID, in.Role)
}

// Logout invalidates the session.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Invalidate(ctx, sessionID)
}
