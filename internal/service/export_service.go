package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moondec/syllabus/internal/dto"
	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/repository"
	apperrors "github.com/moondec/syllabus/pkg/errors"
	"github.com/moondec/syllabus/pkg/jwt"
	"github.com/moondec/syllabus/pkg/metrics"
)

// ── 导出模块业务错误 ──

var (
	ErrUnsupportedFormat = errors.New("nieobsługiwany format dokumentu")
	ErrEmptyDocument     = errors.New("usługa generowania zwróciła pusty dokument")
	ErrDownloadNotFound  = errors.New("plik nie istnieje lub link wygasł")
)

const (
	FormatDOCX = "docx"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"

	// DefaultFormat 未指定格式时导出 Word
	DefaultFormat = FormatDOCX
)

var contentTypes = map[string]string{
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatPDF:  "application/pdf",
	FormatXLSX: xlsxContentType,
}

// DocumentRenderer 渲染协作方：记录 + 语言 + 格式 → 二进制或下载地址
type DocumentRenderer interface {
	Render(ctx context.Context, rec *model.SyllabusRecord, lang model.Language, format string) (*model.RenderedDocument, error)
}

// DocumentPublisher 导出文件的额外投递目标（如 SFTP）
type DocumentPublisher interface {
	Upload(ctx context.Context, fileName string, content []byte) error
}

// ExportService 导出业务接口
//
// 设计说明：
//   - xlsx 在进程内用 excelize 渲染，docx / pdf 交给渲染服务
//   - 二进制结果暂存到 DownloadRepository，返回签名的限时下载地址
//   - 渲染服务直接返回下载地址时原样透传
//   - 成功后写入归档；归档或投递失败只记录日志，不影响导出结果
type ExportService interface {
	Export(ctx context.Context, rec *model.SyllabusRecord, lang model.Language, format string) (*dto.ExportResponse, error)
	// ExportArchived 以归档时的语言重新导出，不改动归档
	ExportArchived(ctx context.Context, id uint64, format string) (*dto.ExportResponse, error)
	// Download 按签名令牌取出暂存文件
	Download(ctx context.Context, token string) (*repository.StoredFile, error)
}

type exportService struct {
	renderers map[string]DocumentRenderer
	archive   ArchiveService
	downloads repository.DownloadRepository
	tokens    *jwt.Manager
	publisher DocumentPublisher
	baseURL   string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// ExportDeps ExportService 依赖；Publisher 与 Metrics 可为 nil
type ExportDeps struct {
	Remote    DocumentRenderer
	Archive   ArchiveService
	Downloads repository.DownloadRepository
	Tokens    *jwt.Manager
	Publisher DocumentPublisher
	BaseURL   string
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(d ExportDeps) ExportService {
	return &exportService{
		renderers: map[string]DocumentRenderer{
			FormatDOCX: d.Remote,
			FormatPDF:  d.Remote,
			FormatXLSX: xlsxRenderer{},
		},
		archive:   d.Archive,
		downloads: d.Downloads,
		tokens:    d.Tokens,
		publisher: d.Publisher,
		baseURL:   strings.TrimRight(d.BaseURL, "/"),
		metrics:   d.Metrics,
		logger:    d.Logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Export — 渲染当前记录并归档
// ═══════════════════════════════════════════════════════════

func (s *exportService) Export(ctx context.Context, rec *model.SyllabusRecord, lang model.Language, format string) (*dto.ExportResponse, error) {
	resp, err := s.render(ctx, rec, lang, format)
	if err != nil {
		return nil, err
	}

	id, err := s.archive.Save(ctx, rec, lang)
	if err != nil {
		s.logger.Error("导出成功但归档失败", zap.String("subject", rec.SubjectName()), zap.Error(err))
	} else {
		resp.ArchiveID = id
	}
	return resp, nil
}

func (s *exportService) ExportArchived(ctx context.Context, id uint64, format string) (*dto.ExportResponse, error) {
	rec, lang, err := s.archive.LoadForEditing(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.render(ctx, rec, lang, format)
	if err != nil {
		return nil, err
	}
	resp.ArchiveID = id
	return resp, nil
}

func (s *exportService) render(ctx context.Context, rec *model.SyllabusRecord, lang model.Language, format string) (*dto.ExportResponse, error) {
	if format == "" {
		format = DefaultFormat
	}
	renderer, ok := s.renderers[format]
	if !ok || renderer == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if lang == "" {
		lang = model.LanguageNative
	}

	start := time.Now()
	doc, err := renderer.Render(ctx, rec, lang, format)
	if format != FormatXLSX {
		s.metrics.ObserveCollaborator("rendering", err, time.Since(start))
	}
	if err == nil && !doc.IsBinary() && doc.URL == "" {
		err = ErrEmptyDocument
	}
	s.metrics.IncExport(format, err)
	if err != nil {
		s.logger.Warn("渲染失败", zap.String("format", format), zap.String("subject", rec.SubjectName()), zap.Error(err))
		return nil, err
	}

	resp := &dto.ExportResponse{Format: format, FileName: doc.FileName}
	if resp.FileName == "" {
		resp.FileName = exportFileName(rec, format)
	}

	if !doc.IsBinary() {
		resp.DownloadURL = doc.URL
		s.logger.Info("渲染服务返回下载地址", zap.String("format", format), zap.String("url", doc.URL))
		return resp, nil
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = contentTypes[format]
	}
	file := &repository.StoredFile{
		ID:          uuid.New().String(),
		FileName:    resp.FileName,
		ContentType: contentType,
		Content:     doc.Content,
	}
	if err := s.downloads.Put(ctx, file, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("暂存导出文件失败: %w", err)
	}
	token, err := s.tokens.GenerateDownloadToken(file.ID, file.FileName)
	if err != nil {
		return nil, fmt.Errorf("签发下载令牌失败: %w", err)
	}
	resp.DownloadURL = s.baseURL + "/api/v1/downloads/" + url.PathEscape(token)

	s.publish(ctx, file)

	s.logger.Info("导出完成",
		zap.String("format", format),
		zap.String("file", file.FileName),
		zap.Int("bytes", len(file.Content)),
	)
	return resp, nil
}

// publish 额外投递；失败只记录
func (s *exportService) publish(ctx context.Context, f *repository.StoredFile) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Upload(ctx, f.FileName, f.Content); err != nil {
		s.logger.Warn("导出文件投递失败", zap.String("file", f.FileName), zap.Error(err))
	}
}

// ═══════════════════════════════════════════════════════════
// Download — 签名链接取文件
// ═══════════════════════════════════════════════════════════

func (s *exportService) Download(ctx context.Context, token string) (*repository.StoredFile, error) {
	claims, err := s.tokens.ParseDownloadToken(token)
	if err != nil {
		return nil, err
	}
	f, err := s.downloads.Get(ctx, claims.DownloadID)
	if err != nil {
		if errors.Is(err, repository.ErrDownloadNotFound) {
			return nil, ErrDownloadNotFound
		}
		return nil, err
	}
	if f.FileName == "" {
		f.FileName = claims.FileName
	}
	return f, nil
}

// ExportMessage 导出失败的用户消息
func ExportMessage(err error) string {
	return apperrors.UserMessage(err, exportFallbackMessage)
}

// ── 辅助函数 ──

// exportFileName "Sylabus_<nazwa>.<ext>"，名称中只保留字母数字
func exportFileName(rec *model.SyllabusRecord, ext string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, rec.SubjectName())
	name = strings.Trim(name, "_")
	if name == "" {
		return "Sylabus." + ext
	}
	return "Sylabus_" + name + "." + ext
}
