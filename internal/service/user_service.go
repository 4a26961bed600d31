package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service/access"
	"github.com/phrazzld/taskhub/internal/service/auth"
	"github.com/phrazzld/taskhub/internal/store"
)

// CreateUserInput carries the fields for a new account. Role is honoured only
// when the actor is an admin.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
}

// UpdateUserInput holds optional changes; nil fields are left alone.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.UserRole
}

// UserService manages accounts and credentials.
type UserService interface {
	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUser returns store.ErrUserNotFound for unknown IDs.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Register creates a member account for an unauthenticated caller. The
	// configured bootstrap email is registered as an admin instead.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// CreateUser creates an account on behalf of actor.
	CreateUser(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error)

	// UpdateUser applies input to the user. Only the user or an admin may
	// update; only an admin may change roles.
	UpdateUser(ctx context.Context, actor *domain.User, id uuid.UUID, input UpdateUserInput) (*domain.User, error)

	// DeleteUser removes the user. Only the user or an admin may delete.
	DeleteUser(ctx context.Context, actor *domain.User, id uuid.UUID) error

	// Authenticate returns the user when the password matches, otherwise
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore      store.UserStore
	verifier       auth.PasswordVerifier
	db             *sql.DB
	bootstrapAdmin string
	logger         *slog.Logger
}

// NewUserService creates a new UserService. bootstrapAdminEmail may be empty.
func NewUserService(
	userStore store.UserStore,
	verifier auth.PasswordVerifier,
	db *sql.DB,
	bootstrapAdminEmail string,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore:      userStore,
		verifier:       verifier,
		db:             db,
		bootstrapAdmin: strings.ToLower(strings.TrimSpace(bootstrapAdminEmail)),
		logger:         logger.With(slog.String("component", "user_service")),
	}
}

var _ UserService = (*UserServiceImpl)(nil)

// ListUsers implements UserService
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return nil, NewServiceError("user", "list", err)
	}
	return users, nil
}

// GetUser implements UserService
func (s *UserServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}

// Register implements UserService
func (s *UserServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password)
	if err != nil {
		log.Debug("invalid registration", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", err)
	}
	if s.bootstrapAdmin != "" && user.Email == s.bootstrapAdmin {
		user.Role = domain.UserRoleAdmin
		log.Info("registering bootstrap admin", slog.String("user_id", user.ID.String()))
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to register user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// CreateUser implements UserService
func (s *UserServiceImpl) CreateUser(
	ctx context.Context,
	actor *domain.User,
	input CreateUserInput,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if input.Role != "" && input.Role != domain.UserRoleMember && !actor.IsAdmin() {
		log.Warn("non-admin tried to create a privileged user",
			slog.String("actor_id", actor.ID.String()))
		return nil, ErrForbidden
	}

	user, err := domain.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, NewServiceError("user", "create", err)
	}
	if input.Role != "" {
		user.Role = input.Role
		if err := user.Validate(); err != nil {
			return nil, NewServiceError("user", "create", err)
		}
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to create user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("user", "create", err)
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("actor_id", actor.ID.String()))
	return user, nil
}

// UpdateUser implements UserService
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	input UpdateUserInput,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !access.CanManageUser(actor, id) {
		return nil, ErrForbidden
	}
	if input.Role != nil && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if input.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
		}
		if input.Password != nil && *input.Password != "" {
			user.Password = *input.Password
		}
		if input.Role != nil {
			user.Role = *input.Role
		}

		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) && !store.IsDuplicateError(err) && !errors.Is(err, domain.ErrValidation) {
			log.Error("failed to update user",
				slog.String("error", err.Error()),
				slog.String("user_id", id.String()))
		}
		return nil, NewServiceError("user", "update", err)
	}

	log.Info("user updated",
		slog.String("user_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return updated, nil
}

// DeleteUser implements UserService
func (s *UserServiceImpl) DeleteUser(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !access.CanManageUser(actor, id) {
		return ErrForbidden
	}
	if err := s.userStore.Delete(ctx, id); err != nil {
		return NewServiceError("user", "delete", err)
	}

	log.Info("user deleted",
		slog.String("user_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return nil
}

// Authenticate implements UserService
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "authenticate", err)
	}
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
