package model

import (
	"encoding/json"
	"testing"
)

func TestSyllabusRecord_UnmarshalFlat(t *testing.T) {
	raw := `{
		"nazwa_przedmiotu": "1.2 Algebra",
		"ects": 5,
		"semestr": null,
		"obowiazkowy": true,
		"efekty": [{"x": 1}],
		"available_outcomes": {
			"W": [{"symbol": "K_W01", "description": "zna"}, {"symbol": " ", "description": "pusty"}],
			"u": [{"symbol": "K_U01", "description": "potrafi", "verification": "kolokwium"}],
			"X": [{"symbol": "?"}]
		}
	}`

	var r SyllabusRecord
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	if r.Get(FieldSubjectName) != "1.2 Algebra" {
		t.Errorf("期望课程名，实际=%q", r.Get(FieldSubjectName))
	}
	if r.Get(FieldECTS) != "5" {
		t.Errorf("数字应转为文本，实际=%q", r.Get(FieldECTS))
	}
	if _, ok := r.Lookup(FieldSemester); ok {
		t.Error("null 应视为缺省")
	}
	if r.Get("obowiazkowy") != "true" {
		t.Errorf("布尔应转为文本，实际=%q", r.Get("obowiazkowy"))
	}
	if got := len(r.AvailableOutcomes.Options(CategoryKnowledge)); got != 1 {
		t.Errorf("空符号应被过滤，W 期望 1 项，实际=%d", got)
	}
	if got := r.AvailableOutcomes.Options(CategorySkills); len(got) != 1 || got[0].Verification != "kolokwium" {
		t.Errorf("小写类别应被接受，实际=%+v", got)
	}
	if _, ok := r.AvailableOutcomes["X"]; ok {
		t.Error("未知类别应被忽略")
	}
}

func TestSyllabusRecord_RoundTripPreservesUnknown(t *testing.T) {
	raw := `{"nazwa_przedmiotu":"A","efekty":[{"x":1}],"custom":"v"}`
	var r SyllabusRecord
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	var back map[string]json.RawMessage
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("回读失败: %v", err)
	}
	if string(back["efekty"]) != `[{"x":1}]` {
		t.Errorf("数组型未知键应原样保留，实际=%s", back["efekty"])
	}
	if string(back["custom"]) != `"v"` {
		t.Errorf("字符串未知键应保留，实际=%s", back["custom"])
	}
	if _, ok := back[FieldAvailableOutcomes]; ok {
		t.Error("空目录不应输出")
	}
}

func TestSyllabusRecord_CloneIsIndependent(t *testing.T) {
	r := NewSyllabusRecord(map[string]string{FieldSubjectName: "A"})
	r.AvailableOutcomes = OutcomeCatalog{CategoryKnowledge: {{Symbol: "K_W01"}}}

	c := r.Clone()
	c.Set(FieldSubjectName, "B")
	c.AvailableOutcomes[CategoryKnowledge][0].Symbol = "changed"

	if r.Get(FieldSubjectName) != "A" {
		t.Error("克隆后的修改不应影响原记录字段")
	}
	if r.AvailableOutcomes[CategoryKnowledge][0].Symbol != "K_W01" {
		t.Error("克隆后的修改不应影响原记录目录")
	}
}

func TestBlankRecord(t *testing.T) {
	r := BlankRecord()
	if len(r.Fields) != 2 {
		t.Fatalf("期望 2 个字段，实际=%d", len(r.Fields))
	}
	for _, k := range []string{FieldSubjectName, FieldECTS} {
		if v, ok := r.Lookup(k); !ok || v != "" {
			t.Errorf("%s 应为空串", k)
		}
	}
}

func TestDecodeRecords(t *testing.T) {
	one, err := DecodeRecords([]byte(`{"nazwa_przedmiotu":"A"}`))
	if err != nil || len(one) != 1 {
		t.Fatalf("单对象应得到 1 条记录: n=%d err=%v", len(one), err)
	}

	many, err := DecodeRecords([]byte(` [{"nazwa_przedmiotu":"A"}, null, {"nazwa_przedmiotu":"B"}]`))
	if err != nil || len(many) != 2 {
		t.Fatalf("数组应得到 2 条记录（null 跳过）: n=%d err=%v", len(many), err)
	}

	empty, err := DecodeRecords([]byte(`[]`))
	if err != nil || len(empty) != 0 {
		t.Fatalf("空数组应得到 0 条记录: n=%d err=%v", len(empty), err)
	}

	blank, err := DecodeRecords([]byte(" null\n"))
	if err != nil || len(blank) != 1 {
		t.Fatalf("null 应得到 1 条空白记录: n=%d err=%v", len(blank), err)
	}
	if name, ok := blank[0].Lookup(FieldSubjectName); !ok || name != "" || blank[0].Get(FieldECTS) != "" {
		t.Errorf("空白记录字段错误: %+v", blank[0])
	}

	if _, err := DecodeRecords([]byte(`"x"`)); err == nil {
		t.Error("非对象/数组应返回错误")
	}
}

func TestRecordJSON_ScanValue(t *testing.T) {
	src := RecordJSON{SyllabusRecord: NewSyllabusRecord(map[string]string{FieldSubjectName: "A"})}
	v, err := src.Value()
	if err != nil {
		t.Fatalf("Value 失败: %v", err)
	}

	var dst RecordJSON
	if err := dst.Scan(v); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if dst.Get(FieldSubjectName) != "A" {
		t.Errorf("期望 A，实际=%q", dst.Get(FieldSubjectName))
	}
	if err := dst.Scan(42); err == nil {
		t.Error("不支持的类型应返回错误")
	}
}

func TestFieldCatalog(t *testing.T) {
	if !IsGeneratable(FieldObjectives) || !IsGeneratable(FieldKnowledge) {
		t.Error("叙述字段应可生成")
	}
	if IsGeneratable(FieldSubjectName) || IsGeneratable(FieldOutcomesW) || IsGeneratable(FieldRefOutcomes) {
		t.Error("非叙述字段不应可生成")
	}
	if IsEditable(FieldRefOutcomes) || IsEditable(FieldRefVerification) {
		t.Error("参考字段不可编辑")
	}
	if !IsEditable(HourField(false, "razem")) {
		t.Error("学时合计字段应可编辑")
	}
	if IsEditable("unknown_key") {
		t.Error("未知字段不可编辑")
	}
	f, ok := LookupField(FieldOutcomesU)
	if !ok || f.Category != CategorySkills || f.Kind != KindSymbols {
		t.Errorf("符号字段描述错误: %+v", f)
	}
}

func TestSyllabus_SyncFromRecord(t *testing.T) {
	rec := NewSyllabusRecord(map[string]string{
		FieldSubjectName:  " Chemia ",
		FieldFieldOfStudy: "Biotechnologia",
		FieldSemester:     "2",
	})
	var s Syllabus
	s.SyncFromRecord(rec)

	if s.SubjectName != "Chemia" || s.FieldOfStudy != "Biotechnologia" || s.Semester != "2" {
		t.Errorf("元数据同步错误: %+v", s)
	}
	if s.LegalBasis != DefaultLegalBasis {
		t.Errorf("期望默认法律依据，实际=%q", s.LegalBasis)
	}
	if s.Language != "pl" {
		t.Errorf("期望默认语言 pl，实际=%q", s.Language)
	}
}
