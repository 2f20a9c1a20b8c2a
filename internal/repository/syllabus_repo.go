package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/moondec/syllabus/internal/model"
)

// SyllabusRepository 归档数据访问接口
type SyllabusRepository interface {
	List(ctx context.Context, query string) ([]model.Syllabus, error)
	GetByID(ctx context.Context, id uint64) (*model.Syllabus, error)
	Create(ctx context.Context, s *model.Syllabus) error
	Update(ctx context.Context, s *model.Syllabus) error
	Delete(ctx context.Context, id uint64) error
}

type syllabusRepo struct {
	db *gorm.DB
}

// NewSyllabusRepo 创建 SyllabusRepository 实例
func NewSyllabusRepo(db *gorm.DB) SyllabusRepository {
	return &syllabusRepo{db: db}
}

// List 按课程名或专业模糊搜索（不区分大小写），最近更新在前
// 列表不加载 data 列
func (r *syllabusRepo) List(ctx context.Context, query string) ([]model.Syllabus, error) {
	var list []model.Syllabus
	q := r.db.WithContext(ctx).Model(&model.Syllabus{}).Omit("data")

	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
		q = q.Where("lower(subject_name) LIKE ? OR lower(field_of_study) LIKE ?", pattern, pattern)
	}

	err := q.Order("updated_at DESC").Order("id DESC").Find(&list).Error
	return list, err
}

func (r *syllabusRepo) GetByID(ctx context.Context, id uint64) (*model.Syllabus, error) {
	var s model.Syllabus
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *syllabusRepo) Create(ctx context.Context, s *model.Syllabus) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Update 覆盖元数据与 data，保留 created_at；记录不存在返回 gorm.ErrRecordNotFound
func (r *syllabusRepo) Update(ctx context.Context, s *model.Syllabus) error {
	s.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&model.Syllabus{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"subject_name":   s.SubjectName,
			"field_of_study": s.FieldOfStudy,
			"level":          s.Level,
			"semester":       s.Semester,
			"legal_basis":    s.LegalBasis,
			"language":       s.Language,
			"data":           s.Data,
			"updated_at":     s.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *syllabusRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.Syllabus{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
