package service

import (
	"reflect"
	"testing"

	"github.com/moondec/syllabus/internal/model"
)

func rec(name, level string) *model.SyllabusRecord {
	fields := map[string]string{model.FieldSubjectName: name}
	if level != "" {
		fields[model.FieldLevel] = level
	}
	return model.NewSyllabusRecord(fields)
}

func memberNames(g SubjectGroup) []string {
	out := make([]string, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Record.Get(model.FieldSubjectName)
	}
	return out
}

func TestGroupSubjects_RankingExample(t *testing.T) {
	records := []*model.SyllabusRecord{
		rec("1.2 A", "studia I stopnia"),
		rec("1.10 B", "studia I stopnia"),
		rec("1.2 C", "studia I stopnia"),
		rec("B", "studia I stopnia"),
	}

	groups := GroupSubjects(records)
	if len(groups) != 1 {
		t.Fatalf("期望 1 组，实际=%d", len(groups))
	}
	want := []string{"1.2 A", "1.2 C", "1.10 B", "B"}
	if got := memberNames(groups[0]); !reflect.DeepEqual(got, want) {
		t.Errorf("排序错误: %v，期望 %v", got, want)
	}
	if groups[0].Level != "Studia I stopnia" {
		t.Errorf("层次标签首字母应大写，实际=%q", groups[0].Level)
	}
}

func TestGroupSubjects_FirstAppearanceOrder(t *testing.T) {
	records := []*model.SyllabusRecord{
		rec("2.1 X", " studia II stopnia "),
		rec("1.1 Y", "studia I stopnia"),
		rec("Z", ""),
		rec("1.1 W", "Studia II stopnia"),
		rec("Q", "   "),
	}

	groups := GroupSubjects(records)
	levels := make([]string, len(groups))
	for i, g := range groups {
		levels[i] = g.Level
	}
	want := []string{"Studia II stopnia", "Studia I stopnia", UndeterminedLevel}
	if !reflect.DeepEqual(levels, want) {
		t.Fatalf("组顺序错误: %v，期望 %v", levels, want)
	}
	if got := memberNames(groups[0]); !reflect.DeepEqual(got, []string{"1.1 W", "2.1 X"}) {
		t.Errorf("组内排序错误: %v", got)
	}
	if got := memberNames(groups[2]); !reflect.DeepEqual(got, []string{"Q", "Z"}) {
		t.Errorf("哨兵组排序错误: %v", got)
	}
}

func TestGroupSubjects_IndexesPointIntoInput(t *testing.T) {
	records := []*model.SyllabusRecord{rec("B", "x"), rec("A", "x")}
	groups := GroupSubjects(records)
	for _, m := range groups[0].Members {
		if records[m.Index] != m.Record {
			t.Errorf("下标 %d 未指向原记录", m.Index)
		}
	}
	if groups[0].Members[0].Index != 1 {
		t.Errorf("A 应排在首位且下标为 1，实际=%d", groups[0].Members[0].Index)
	}
}

func TestGroupSubjects_Deterministic(t *testing.T) {
	records := []*model.SyllabusRecord{
		rec("3.12 Algebra", "I"), rec("3.2 Analiza", "I"), rec("Etyka", "I"),
		rec("etyka", "I"), rec("3.2 Analiza", "I"), rec("99999999999999999999.1 Overflow", "I"),
	}
	first := GroupSubjects(records)
	second := GroupSubjects(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("两次分组结果应一致")
	}
	names := memberNames(first[0])
	want := []string{"3.2 Analiza", "3.2 Analiza", "3.12 Algebra", "99999999999999999999.1 Overflow", "Etyka", "etyka"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("排序错误: %v，期望 %v", names, want)
	}
	// 相同名称保持输入顺序
	if first[0].Members[0].Index != 1 || first[0].Members[1].Index != 4 {
		t.Errorf("稳定排序应保持原顺序，实际下标=%d,%d", first[0].Members[0].Index, first[0].Members[1].Index)
	}
}

func TestGroupSubjects_Empty(t *testing.T) {
	if got := GroupSubjects(nil); len(got) != 0 {
		t.Errorf("空输入应得到空结果，实际=%v", got)
	}
}
