//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moondec/syllabus/internal/model"
	"github.com/moondec/syllabus/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=syllabus password=syllabus_password dbname=syllabus_test sslmode=disable TimeZone=Europe/Warsaw"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	if err := testDB.AutoMigrate(&model.Syllabus{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// createSyllabus 写入一条归档并注册清理
func createSyllabus(t *testing.T, repo repository.SyllabusRepository, fields map[string]string) *model.Syllabus {
	t.Helper()
	rec := model.NewSyllabusRecord(fields)
	s := &model.Syllabus{}
	s.SyncFromRecord(rec)
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("创建归档失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Delete(&model.Syllabus{}, s.ID)
	})
	return s
}

// ═══════════════════════════════════════════════════════════
// SyllabusRepo Tests
// ═══════════════════════════════════════════════════════════

func TestSyllabusRepo_CreateAndGet(t *testing.T) {
	repo := repository.NewSyllabusRepo(testDB)
	unique := fmt.Sprintf("Chemia-%d", time.Now().UnixNano())

	s := createSyllabus(t, repo, map[string]string{
		model.FieldSubjectName:  unique,
		model.FieldFieldOfStudy: "Biotechnologia",
		model.FieldECTS:         "5",
	})
	if s.ID == 0 {
		t.Fatal("应分配自增 ID")
	}

	got, err := repo.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.SubjectName != unique || got.LegalBasis != model.DefaultLegalBasis || got.Language != "pl" {
		t.Errorf("元数据错误: %+v", got)
	}
	if got.Data.SyllabusRecord == nil || got.Data.Get(model.FieldECTS) != "5" {
		t.Errorf("data 列往返错误: %+v", got.Data)
	}
}

func TestSyllabusRepo_ListSearch(t *testing.T) {
	repo := repository.NewSyllabusRepo(testDB)
	tag := fmt.Sprintf("%d", time.Now().UnixNano())

	createSyllabus(t, repo, map[string]string{model.FieldSubjectName: "Fizyka " + tag, model.FieldFieldOfStudy: "Inżynieria"})
	createSyllabus(t, repo, map[string]string{model.FieldSubjectName: "Botanika", model.FieldFieldOfStudy: "Ogrodnictwo " + tag})
	createSyllabus(t, repo, map[string]string{model.FieldSubjectName: "100%_znak " + tag})

	list, err := repo.List(context.Background(), tag)
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("按名称或专业应命中 3 条，实际 %d", len(list))
	}
	for _, s := range list {
		if s.Data.SyllabusRecord != nil {
			t.Error("列表不应加载 data 列")
		}
	}

	list, _ = repo.List(context.Background(), "FIZYKA "+tag)
	if len(list) != 1 {
		t.Errorf("搜索应不区分大小写，实际 %d 条", len(list))
	}

	list, _ = repo.List(context.Background(), "%_")
	for _, s := range list {
		if !strings.Contains(s.SubjectName, "%_") && !strings.Contains(s.FieldOfStudy, "%_") {
			t.Errorf("LIKE 通配符未转义，误匹配 %q", s.SubjectName)
		}
	}
}

func TestSyllabusRepo_Update(t *testing.T) {
	repo := repository.NewSyllabusRepo(testDB)
	s := createSyllabus(t, repo, map[string]string{model.FieldSubjectName: "Stara nazwa"})
	created := s.CreatedAt

	s.SyncFromRecord(model.NewSyllabusRecord(map[string]string{
		model.FieldSubjectName: "Nowa nazwa",
		model.FieldLanguage:    "en",
	}))
	if err := repo.Update(context.Background(), s); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), s.ID)
	if got.SubjectName != "Nowa nazwa" || got.Language != "en" {
		t.Errorf("更新未生效: %+v", got)
	}
	if !got.CreatedAt.Equal(created) && got.CreatedAt.Sub(created).Abs() > time.Second {
		t.Errorf("created_at 不应改变: %v → %v", created, got.CreatedAt)
	}

	missing := &model.Syllabus{ID: s.ID + 1_000_000}
	missing.SyncFromRecord(model.BlankRecord())
	if err := repo.Update(context.Background(), missing); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("不存在的记录应返回 ErrRecordNotFound，实际: %v", err)
	}
}

func TestSyllabusRepo_Delete(t *testing.T) {
	repo := repository.NewSyllabusRepo(testDB)
	s := createSyllabus(t, repo, map[string]string{model.FieldSubjectName: "Do usunięcia"})

	if err := repo.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), s.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("删除后应查不到，实际: %v", err)
	}
	if err := repo.Delete(context.Background(), s.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("重复删除应返回 ErrRecordNotFound，实际: %v", err)
	}
}
