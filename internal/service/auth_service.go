package service

import (
	"errors"
	"teach_clone_backend/internal/config"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	Users UserStore
	Cfg   *config.Config
}

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, Cfg: cfg}
}

// Register 学生注册即 approved，教师注册为 pending 等待管理员审核。
// 管理员账号不开放注册，只能由种子或已有管理员创建。
func (s *AuthService) Register(user *model.User) error {
	if _, err := s.Users.FindByEmail(user.Email); err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)

	switch user.Role {
	case model.Student:
		user.Status = model.AccountApproved
	case model.Teacher:
		user.Status = model.AccountPending
	default:
		return util.ErrPermissionDenied
	}

	return s.Users.Create(user)
}

// Login 凭证错误统一返回 ErrInvalidCredentials，不泄露账号是否存在；
// 状态错误（pending / rejected）在凭证通过后才区分返回。
func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.Users.FindByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	// 管理员绕过状态校验，避免误操作把自己锁在门外
	if user.Role != model.Admin {
		switch user.Status {
		case model.AccountPending:
			return "", nil, util.ErrAccountPending
		case model.AccountRejected:
			return "", nil, util.ErrAccountRejected
		}
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	user.LastLogin = time.Now()
	if uerr := s.Users.Update(user); uerr != nil {
		// 登录时间更新失败不阻断登录
		_ = uerr
	}

	return token, user, nil
}
