package service

import (
	"context"
	"log/slog"

	"shopapi/internal/repository"
)

// UserService exposes principal management.
type UserService interface {
	DeleteUser(ctx context.Context, id string) (repository.DeleteResult, error)
}

type userService struct {
	repo repository.UserRepository
	log  *slog.Logger
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, log *slog.Logger) UserService {
	return &userService{repo: repo, log: log}
}

func (s *userService) DeleteUser(ctx context.Context, id string) (repository.DeleteResult, error) {
	res, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return repository.DeleteResult{}, err
	}
	if res.DeletedCount > 0 {
		s.log.InfoContext(ctx, "user deleted", "user_id", id)
	}
	return res, nil
}
