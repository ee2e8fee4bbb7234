package repository

import (
	"context"
	"encoding/json"
	"errors"
	"teach_clone_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 学生可见人格列表的缓存键，人格状态变化时失效
const activePersonalityCacheKey = "teachclone:personalities:active"

type PersonalityRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewPersonalityRepository(db *gorm.DB, rdb *redis.Client) *PersonalityRepository {
	return &PersonalityRepository{DB: db, RDB: rdb}
}

func (r *PersonalityRepository) FindByID(id uint) (*model.AIPersonality, error) {
	var p model.AIPersonality
	err := r.DB.First(&p, id).Error
	return &p, err
}

func (r *PersonalityRepository) FindByTeacherID(teacherID uint) (*model.AIPersonality, error) {
	var p model.AIPersonality
	err := r.DB.Where("teacher_id = ?", teacherID).First(&p).Error
	return &p, err
}

// Save 按 TeacherID upsert：重新生成原地覆盖，不追加历史
func (r *PersonalityRepository) Save(p *model.AIPersonality) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.AIPersonality
		ferr := tx.Where("teacher_id = ?", p.TeacherID).First(&existing).Error
		if ferr == nil {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			return tx.Save(p).Error
		}
		if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return ferr
		}
		return tx.Create(p).Error
	})
	if err == nil {
		r.invalidateListCache()
	}
	return err
}

func (r *PersonalityRepository) Update(p *model.AIPersonality) error {
	err := r.DB.Save(p).Error
	if err == nil {
		r.invalidateListCache()
	}
	return err
}

func (r *PersonalityRepository) CountByStatus(status model.PersonalityStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.AIPersonality{}).Where("approval_status = ?", status).Count(&count).Error
	return count, err
}

func (r *PersonalityRepository) listWithTeacher(cond string, args ...interface{}) ([]model.PersonalityWithTeacher, error) {
	var rows []model.PersonalityWithTeacher
	q := r.DB.Table("ai_personalities").
		Select("ai_personalities.*, users.name AS teacher_name").
		Joins("JOIN users ON users.id = ai_personalities.teacher_id").
		Where("ai_personalities.deleted_at IS NULL")
	if cond != "" {
		q = q.Where(cond, args...)
	}
	err := q.Order("ai_personalities.id DESC").Scan(&rows).Error
	return rows, err
}

func (r *PersonalityRepository) ListAll() ([]model.PersonalityWithTeacher, error) {
	return r.listWithTeacher("")
}

func (r *PersonalityRepository) ListPending() ([]model.PersonalityWithTeacher, error) {
	return r.listWithTeacher("ai_personalities.approval_status = ?", model.PersonalityPending)
}

// ListApprovedActive 学生可见的人格：approved 且 isActive，短 TTL 缓存
func (r *PersonalityRepository) ListApprovedActive() ([]model.PersonalityWithTeacher, error) {
	ctx := context.Background()

	if r.RDB != nil {
		if raw, err := r.RDB.Get(ctx, activePersonalityCacheKey).Result(); err == nil {
			var cached []model.PersonalityWithTeacher
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	rows, err := r.listWithTeacher(
		"ai_personalities.approval_status = ? AND ai_personalities.is_active = ?",
		model.PersonalityApproved, true,
	)
	if err != nil {
		return nil, err
	}

	if r.RDB != nil {
		if buf, merr := json.Marshal(rows); merr == nil {
			r.RDB.Set(ctx, activePersonalityCacheKey, buf, time.Minute)
		}
	}

	return rows, nil
}

func (r *PersonalityRepository) invalidateListCache() {
	if r.RDB != nil {
		r.RDB.Del(context.Background(), activePersonalityCacheKey)
	}
}
