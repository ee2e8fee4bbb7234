package database

import (
	"fmt"
	"log"
	"teach_clone_backend/internal/config"
	"teach_clone_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbc := &cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbc.User,
		dbc.Password,
		dbc.Host,
		dbc.Port,
		dbc.DBName,
		dbc.Charset,
		dbc.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认不自动迁移，-migrate / -migrate-only 强制执行
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Video{},
			&model.VideoAnalysis{},
			&model.AIPersonality{},
			&model.Conversation{},
			&model.Message{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")
	}

	// 默认管理员账号（首次启动时插入）
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("ChangeMe_Admin1!"), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		admin := &model.User{
			Name:     "System Administrator",
			Email:    "admin@teachclone.com",
			Password: string(hashed),
			Role:     model.Admin,
			Status:   model.AccountApproved,
		}
		db.Create(admin)
		log.Println("Default admin account created, please change its password")
	}

	return db, nil
}
