package repository

import (
	"teach_clone_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// ListTeachers 教师列表，新注册在前
func (r *UserRepository) ListTeachers() ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("role = ?", model.Teacher).Order("id DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) CountByRoleStatus(role model.UserRole, status model.AccountStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("role = ? AND status = ?", role, status).Count(&count).Error
	return count, err
}

func (r *UserRepository) CountByRole(role model.UserRole) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}
