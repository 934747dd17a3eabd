package service

import (
	"errors"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type UserService interface {
	List(page, pageSize int) ([]models.User, int64, error)
	Get(id string) (*models.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(page, pageSize int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.GetAll(page, pageSize)
}

func (s *userService) Get(id string) (*models.User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
