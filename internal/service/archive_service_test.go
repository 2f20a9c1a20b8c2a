package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/moondec/syllabus/internal/model"
)

func setupTestArchiveService() (ArchiveService, *mockSyllabusRepo) {
	repo := newMockSyllabusRepo()
	return NewArchiveService(repo, "", zap.NewNop()), repo
}

func TestArchiveService_SaveCreatesThenUpdates(t *testing.T) {
	svc, repo := setupTestArchiveService()
	ctx := context.Background()

	rec := model.NewSyllabusRecord(map[string]string{
		model.FieldSubjectName:  "Chemia",
		model.FieldFieldOfStudy: "Biologia",
	})
	id, err := svc.Save(ctx, rec, model.LanguageTranslated)
	if err != nil || id == 0 {
		t.Fatalf("新建失败: id=%d err=%v", id, err)
	}

	row := repo.rows[id]
	if row.LegalBasis != model.DefaultLegalBasis {
		t.Errorf("期望默认法律依据，实际=%q", row.LegalBasis)
	}
	if row.Language != "en" {
		t.Errorf("期望语言 en，实际=%q", row.Language)
	}
	if _, ok := row.Data.Lookup(model.FieldID); ok {
		t.Error("data 中不应重复保存 id")
	}
	if rec.Get(model.FieldLegalBasis) != "" {
		t.Error("Save 不应修改调用方的记录")
	}

	rec.Set(model.FieldID, "1")
	rec.Set(model.FieldSubjectName, "Chemia organiczna")
	id2, err := svc.Save(ctx, rec, model.LanguageNative)
	if err != nil || id2 != id {
		t.Fatalf("带 id 应更新原记录: id=%d err=%v", id2, err)
	}
	if len(repo.rows) != 1 || repo.rows[id].SubjectName != "Chemia organiczna" {
		t.Errorf("更新结果错误: %+v", repo.rows[id])
	}
}

func TestArchiveService_SaveStaleIDCreates(t *testing.T) {
	svc, repo := setupTestArchiveService()
	rec := model.NewSyllabusRecord(map[string]string{model.FieldSubjectName: "A", model.FieldID: "99"})

	id, err := svc.Save(context.Background(), rec, model.LanguageNative)
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if id == 99 || len(repo.rows) != 1 {
		t.Errorf("不存在的 id 应新建记录，实际 id=%d", id)
	}
}

func TestArchiveService_LoadForEditingMergesMetadata(t *testing.T) {
	svc, _ := setupTestArchiveService()
	ctx := context.Background()

	rec := model.NewSyllabusRecord(map[string]string{model.FieldSubjectName: "Fizyka"})
	rec.Set(model.FieldLegalBasis, "Uchwała testowa")
	id, _ := svc.Save(ctx, rec, model.LanguageTranslated)

	got, lang, err := svc.LoadForEditing(ctx, id)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if got.Get(model.FieldID) != "1" || got.Get(model.FieldLegalBasis) != "Uchwała testowa" {
		t.Errorf("应合并 id 与 legal_basis，实际=%v", got.Fields)
	}
	if lang != model.LanguageTranslated {
		t.Errorf("期望语言 en，实际=%q", lang)
	}
}

func TestArchiveService_NotFound(t *testing.T) {
	svc, _ := setupTestArchiveService()
	ctx := context.Background()

	if _, err := svc.Get(ctx, 7); !errors.Is(err, ErrSyllabusNotFound) {
		t.Errorf("Get 期望 ErrSyllabusNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, 7); !errors.Is(err, ErrSyllabusNotFound) {
		t.Errorf("Delete 期望 ErrSyllabusNotFound，实际: %v", err)
	}
	if _, _, err := svc.LoadForEditing(ctx, 7); !errors.Is(err, ErrSyllabusNotFound) {
		t.Errorf("LoadForEditing 期望 ErrSyllabusNotFound，实际: %v", err)
	}
}

func TestArchiveService_ListFilters(t *testing.T) {
	svc, _ := setupTestArchiveService()
	ctx := context.Background()

	for _, name := range []string{"Chemia", "Fizyka", "Biochemia"} {
		_, _ = svc.Save(ctx, model.NewSyllabusRecord(map[string]string{model.FieldSubjectName: name}), model.LanguageNative)
	}

	list, err := svc.List(ctx, "CHEM")
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("期望 2 条匹配，实际=%d", len(list))
	}
}

func TestArchiveService_BackendErrorPassesThrough(t *testing.T) {
	svc, repo := setupTestArchiveService()
	repo.err = errMockBackend

	if _, err := svc.Get(context.Background(), 1); !errors.Is(err, errMockBackend) {
		t.Errorf("后端错误应透传，实际: %v", err)
	}
}
