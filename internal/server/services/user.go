// Package services contains server-side business logic. This file implements
// UserService, which handles credential verification, token issuance, and
// user account CRUD.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/dbx"
	"github.com/akapustin/itemhub/internal/server/auth"
	"github.com/akapustin/itemhub/internal/server/config"
	"github.com/akapustin/itemhub/internal/server/models"
	"github.com/akapustin/itemhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CreateUserInput carries the fields accepted on account creation.
type CreateUserInput struct {
	Email       string
	Password    string
	FullName    string
	IsActive    *bool
	IsSuperuser bool
}

// UpdateUserInput carries a partial update: nil fields keep their prior values.
type UpdateUserInput struct {
	Email       *string
	Password    *string
	FullName    *string
	IsActive    *bool
	IsSuperuser *bool
}

// UserService provides authentication and user management:
//   - Authenticate / Login: verify credentials and mint access tokens
//   - Create / GetByID / GetByEmail / List / Update / Delete
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Authenticate verifies the email/password pair against the stored bcrypt
// hash. An unknown email and a wrong password both yield ErrUnauthorized so
// callers cannot probe which addresses are registered.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	return user, nil
}

// Login authenticates the credentials and returns a signed access token for
// the user. Inactive accounts cannot log in.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	if !user.IsActive {
		return "", common.ErrInactiveUser
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}

	return token, nil
}

// Create registers a new user with a hashed password. Duplicate emails yield
// ErrAlreadyExists.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          in.Email,
		HashedPassword: hashed,
		FullName:       in.FullName,
		IsActive:       true,
		IsSuperuser:    in.IsSuperuser,
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return u, nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// GetByEmail returns the user with the given email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}

// List returns users ordered by creation time, paginated by offset/limit.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx, offset, limit)
}

// Update applies a partial update to the user: only non-nil input fields
// change, everything else keeps its stored value. A provided password is
// re-hashed. The read-modify-write runs in a single transaction.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Email != nil {
			user.Email = *in.Email
		}
		if in.Password != nil {
			hashed, err := auth.HashPassword(*in.Password)
			if err != nil {
				return common.ErrInternal
			}
			user.HashedPassword = hashed
		}
		if in.FullName != nil {
			user.FullName = *in.FullName
		}
		if in.IsActive != nil {
			user.IsActive = *in.IsActive
		}
		if in.IsSuperuser != nil {
			user.IsSuperuser = *in.IsSuperuser
		}

		updated, err = repo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the user. A missing user yields ErrNotFound.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}
