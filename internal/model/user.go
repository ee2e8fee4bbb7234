package model

import "time"

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountApproved AccountStatus = "approved"
	AccountRejected AccountStatus = "rejected"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string        `gorm:"size:100;not null" json:"Name"`
	Email    string        `gorm:"size:100;unique;not null" json:"Email"`
	Password string        `gorm:"size:100;not null" json:"-"`
	Role     UserRole      `gorm:"type:enum('student','teacher','admin');default:'student'" json:"Role"`
	// 学生注册即 approved；教师注册为 pending，由管理员审核；管理员登录不校验状态
	Status    AccountStatus `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"Status"`
	Avatar    string        `gorm:"size:255" json:"avatar"`
	LastLogin time.Time     `gorm:"default:CURRENT_TIMESTAMP(3)" json:"LastLogin"`
}

func (User) TableName() string {
	return "users"
}
