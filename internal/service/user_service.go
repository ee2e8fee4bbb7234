package service

import (
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
)

type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	ListTeachers() ([]model.User, error)
	CountByRoleStatus(role model.UserRole, status model.AccountStatus) (int64, error)
	CountByRole(role model.UserRole) (int64, error)
}

type UserService struct {
	Users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{Users: users}
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	user, err := s.Users.FindByID(id)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}
