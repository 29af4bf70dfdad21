package service

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, storageErr(err)
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("User created")
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var user *models.User
	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		var err error
		if user, err = repo.GetUserByID(ctx, id); err != nil {
			return storageErr(err)
		}
		patch.Apply(user)
		return storageErr(repo.UpdateUser(ctx, user))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return storageErr(err)
	}
	s.logger.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}
