package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/moondec/syllabus/internal/dto"
	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/repository"
)

// ── 归档模块业务错误 ──

var (
	ErrSyllabusNotFound = errors.New("nie znaleziono sylabusa w archiwum")
)

// ArchiveService 已导出大纲的归档
//
// 导出成功的记录按 id 写入归档（有 id 更新，否则新建）；
// 从归档打开的记录合并 id 与 legal_basis 后进入编辑。
type ArchiveService interface {
	List(ctx context.Context, query string) ([]dto.ArchiveSummary, error)
	Get(ctx context.Context, id uint64) (*dto.ArchiveDetail, error)
	Delete(ctx context.Context, id uint64) error
	// Save 写入归档，返回记录 ID
	Save(ctx context.Context, rec *model.SyllabusRecord, lang model.Language) (uint64, error)
	// LoadForEditing 取出记录副本及其导出语言（缺省 pl）
	LoadForEditing(ctx context.Context, id uint64) (*model.SyllabusRecord, model.Language, error)
}

type archiveService struct {
	repo       repository.SyllabusRepository
	legalBasis string
	logger     *zap.Logger
}

// NewArchiveService 创建 ArchiveService 实例；legalBasis 为空时使用内置默认值
func NewArchiveService(repo repository.SyllabusRepository, legalBasis string, logger *zap.Logger) ArchiveService {
	if legalBasis == "" {
		legalBasis = model.DefaultLegalBasis
	}
	return &archiveService{repo: repo, legalBasis: legalBasis, logger: logger}
}

func (s *archiveService) List(ctx context.Context, query string) ([]dto.ArchiveSummary, error) {
	list, err := s.repo.List(ctx, query)
	if err != nil {
		s.logger.Error("查询归档列表失败", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	out := make([]dto.ArchiveSummary, 0, len(list))
	for i := range list {
		out = append(out, dto.ArchiveSummary{
			ID:           list[i].ID,
			SubjectName:  list[i].SubjectName,
			FieldOfStudy: list[i].FieldOfStudy,
			Level:        list[i].Level,
			Semester:     list[i].Semester,
			Language:     list[i].Language,
			UpdatedAt:    list[i].UpdatedAt,
		})
	}
	return out, nil
}

func (s *archiveService) Get(ctx context.Context, id uint64) (*dto.ArchiveDetail, error) {
	row, err := s.getRow(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ArchiveDetail{
		ID:           row.ID,
		SubjectName:  row.SubjectName,
		FieldOfStudy: row.FieldOfStudy,
		Semester:     row.Semester,
		LegalBasis:   row.LegalBasis,
		Data:         row.Data.SyllabusRecord,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (s *archiveService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSyllabusNotFound
		}
		s.logger.Error("删除归档失败", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("归档已删除", zap.Uint64("id", id))
	return nil
}

// Save 记录中带有可解析的 id 时更新；更新目标已不存在时新建
func (s *archiveService) Save(ctx context.Context, rec *model.SyllabusRecord, lang model.Language) (uint64, error) {
	data := rec.Clone()
	data.Set(model.FieldLanguage, string(lang))
	if strings.TrimSpace(data.Get(model.FieldLegalBasis)) == "" {
		data.Set(model.FieldLegalBasis, s.legalBasis)
	}

	row := &model.Syllabus{}
	if id, ok := parseArchiveID(data.Get(model.FieldID)); ok {
		row.ID = id
	}
	// id 由数据库列维护，不在 data 中重复
	data.Delete(model.FieldID)
	row.SyncFromRecord(data)

	if row.ID != 0 {
		err := s.repo.Update(ctx, row)
		if err == nil {
			s.logger.Info("归档已更新", zap.Uint64("id", row.ID), zap.String("subject", row.SubjectName))
			return row.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("更新归档失败: %w", err)
		}
		row.ID = 0
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return 0, fmt.Errorf("写入归档失败: %w", err)
	}
	s.logger.Info("归档已创建", zap.Uint64("id", row.ID), zap.String("subject", row.SubjectName))
	return row.ID, nil
}

func (s *archiveService) LoadForEditing(ctx context.Context, id uint64) (*model.SyllabusRecord, model.Language, error) {
	row, err := s.getRow(ctx, id)
	if err != nil {
		return nil, "", err
	}

	rec := row.Data.SyllabusRecord.Clone()
	if rec == nil {
		rec = model.BlankRecord()
	}
	rec.Set(model.FieldID, strconv.FormatUint(row.ID, 10))
	rec.Set(model.FieldLegalBasis, row.LegalBasis)

	lang, ok := model.ParseLanguage(row.Language)
	if !ok {
		lang = model.LanguageNative
	}
	return rec, lang, nil
}

func (s *archiveService) getRow(ctx context.Context, id uint64) (*model.Syllabus, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSyllabusNotFound
		}
		s.logger.Error("查询归档失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return row, nil
}

func parseArchiveID(s string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
