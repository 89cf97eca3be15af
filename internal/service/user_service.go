package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

var _ domain.UserService = (*UserService)(nil)

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if strings.TrimSpace(user.Name) == "" {
		return nil, fmt.Errorf("%w: user name is required", ErrValidation)
	}
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}

	created := &models.User{Name: user.Name, Email: user.Email}
	err := s.repo.WithTx(ctx, func(repo domain.Repository) error {
		if err := ensureEmailFree(ctx, repo, created.Email, 0); err != nil {
			return err
		}
		return duplicateErr(repo.CreateUser(ctx, created), created.Email)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("user created")
	return created, nil
}

// Update applies a partial update; email uniqueness is re-checked only when it changes.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, err
		}
	}

	var updated *models.User
	err := s.repo.WithTx(ctx, func(repo domain.Repository) error {
		user, err := repo.GetUser(ctx, id)
		if err != nil {
			return storeErr(err, "user", id)
		}

		if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
			user.Name = *patch.Name
		}
		if patch.Email != nil && *patch.Email != user.Email {
			if err := ensureEmailFree(ctx, repo, *patch.Email, id); err != nil {
				return err
			}
			user.Email = *patch.Email
		}

		if err := repo.UpdateUser(ctx, user); err != nil {
			return duplicateErr(storeErr(err, "user", id), user.Email)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user updated")
	return updated, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user", id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return storeErr(err, "user", id)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func ensureEmailFree(ctx context.Context, repo domain.Repository, email string, selfID int64) error {
	existing, err := repo.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("email %q: %w", email, ErrEmailNotUnique)
	}
	return nil
}

// duplicateErr covers the race that the unique index catches after the lookup.
func duplicateErr(err error, email string) error {
	if errors.Is(err, database.ErrDuplicate) {
		return fmt.Errorf("email %q: %w", email, ErrEmailNotUnique)
	}
	return err
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}
	return nil
}
