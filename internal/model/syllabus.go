package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// SyllabusRecord — 一门课程的大纲记录
//
// 线上格式为扁平 JSON 对象：字段名 → 字符串值，外加只读的
// available_outcomes 目录。null 视为缺省；数字按文本保存；
// 未知键原样保留并回传给渲染服务。
// ═══════════════════════════════════════════════════════════

// OutcomeCategory 学习成果类别
type OutcomeCategory string

const (
	CategoryKnowledge   OutcomeCategory = "W" // wiedza
	CategorySkills      OutcomeCategory = "U" // umiejętności
	CategoryCompetences OutcomeCategory = "K" // kompetencje społeczne
)

// OutcomeCategories 固定顺序
var OutcomeCategories = []OutcomeCategory{CategoryKnowledge, CategorySkills, CategoryCompetences}

// ParseOutcomeCategory 解析类别代码（大小写不敏感）
func ParseOutcomeCategory(s string) (OutcomeCategory, bool) {
	switch OutcomeCategory(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryKnowledge:
		return CategoryKnowledge, true
	case CategorySkills:
		return CategorySkills, true
	case CategoryCompetences:
		return CategoryCompetences, true
	}
	return "", false
}

// OutcomeOption 目录中的一个可选成果符号
type OutcomeOption struct {
	Symbol       string `json:"symbol"`
	Description  string `json:"description"`
	Verification string `json:"verification,omitempty"`
}

// OutcomeCatalog 类别 → 有序的可选符号列表
type OutcomeCatalog map[OutcomeCategory][]OutcomeOption

// Options 返回某类别的符号列表
func (c OutcomeCatalog) Options(cat OutcomeCategory) []OutcomeOption {
	if c == nil {
		return nil
	}
	return c[cat]
}

// Clone 深拷贝
func (c OutcomeCatalog) Clone() OutcomeCatalog {
	if c == nil {
		return nil
	}
	out := make(OutcomeCatalog, len(c))
	for k, v := range c {
		out[k] = append([]OutcomeOption(nil), v...)
	}
	return out
}

// ── 字段键 ──

const (
	FieldSubjectName       = "nazwa_przedmiotu"
	FieldSubjectNameEN     = "nazwa_angielska"
	FieldFieldOfStudy      = "kierunek"
	FieldLevel             = "poziom"
	FieldProfile           = "profil"
	FieldStudyMode         = "forma"
	FieldSemester          = "semestr"
	FieldECTS              = "ects"
	FieldUnit              = "jednostka"
	FieldInstructor        = "kierownik"
	FieldObjectives        = "cel_przedmiotu"
	FieldPrerequisites     = "zalozenia"
	FieldTeachingMethods   = "metody_dydaktyczne"
	FieldVerification      = "metody_weryfikacji"
	FieldContent           = "tresci"
	FieldKnowledge         = "wiedza"
	FieldSkills            = "umiejetnosci"
	FieldCompetences       = "kompetencje"
	FieldLiterature        = "literatura"
	FieldAssessment        = "formy_zaliczenia"
	FieldOutcomesW         = "learning_outcomesW"
	FieldOutcomesU         = "learning_outcomesU"
	FieldOutcomesK         = "learning_outcomesK"
	FieldRefOutcomes       = "ref_kierunkowe"
	FieldRefVerification   = "ref_weryfikacja"
	FieldLanguage          = "language"
	FieldID                = "id"
	FieldLegalBasis        = "legal_basis"
	FieldAvailableOutcomes = "available_outcomes"
)

// SymbolField 返回某类别对应的符号选择字段
func SymbolField(cat OutcomeCategory) string {
	return "learning_outcomes" + string(cat)
}

// ── 记录 ──

// SyllabusRecord 课程大纲记录
type SyllabusRecord struct {
	Fields            map[string]string
	AvailableOutcomes OutcomeCatalog

	// extra 保存无法表示为标量的未知键（数组 / 对象）
	extra map[string]json.RawMessage
}

// NewSyllabusRecord 由字段映射创建记录
func NewSyllabusRecord(fields map[string]string) *SyllabusRecord {
	r := &SyllabusRecord{Fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		r.Fields[k] = v
	}
	return r
}

// BlankRecord 手动录入时使用的空白记录
func BlankRecord() *SyllabusRecord {
	return NewSyllabusRecord(map[string]string{FieldSubjectName: "", FieldECTS: ""})
}

// Get 读取字段，缺省返回空串
func (r *SyllabusRecord) Get(key string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

// Lookup 读取字段并返回是否存在
func (r *SyllabusRecord) Lookup(key string) (string, bool) {
	if r == nil || r.Fields == nil {
		return "", false
	}
	v, ok := r.Fields[key]
	return v, ok
}

// Set 写入字段
func (r *SyllabusRecord) Set(key, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[key] = value
}

// Delete 删除字段
func (r *SyllabusRecord) Delete(key string) {
	delete(r.Fields, key)
}

// Clone 深拷贝；向导选择候选时必须拷贝，保证编辑不回流到候选列表
func (r *SyllabusRecord) Clone() *SyllabusRecord {
	if r == nil {
		return nil
	}
	out := NewSyllabusRecord(r.Fields)
	out.AvailableOutcomes = r.AvailableOutcomes.Clone()
	if len(r.extra) > 0 {
		out.extra = make(map[string]json.RawMessage, len(r.extra))
		for k, v := range r.extra {
			out.extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Keys 已设置的字段键（排序后）
func (r *SyllabusRecord) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SubjectName 去除首尾空白的课程名
func (r *SyllabusRecord) SubjectName() string {
	return strings.TrimSpace(r.Get(FieldSubjectName))
}

// ── JSON ──

// MarshalJSON 输出扁平对象
func (r SyllabusRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+len(r.extra)+1)
	for k, v := range r.extra {
		out[k] = v
	}
	for k, v := range r.Fields {
		out[k] = v
	}
	if len(r.AvailableOutcomes) > 0 {
		out[FieldAvailableOutcomes] = r.AvailableOutcomes
	}
	return json.Marshal(out)
}

// UnmarshalJSON 接受扁平对象；null 跳过，数字与布尔转为文本
func (r *SyllabusRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("syllabus record: %w", err)
	}

	r.Fields = make(map[string]string, len(raw))
	r.AvailableOutcomes = nil
	r.extra = nil

	for key, value := range raw {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || bytes.Equal(value, []byte("null")) {
			continue
		}

		if key == FieldAvailableOutcomes {
			catalog, err := decodeCatalog(value)
			if err != nil {
				return fmt.Errorf("syllabus record: available_outcomes: %w", err)
			}
			r.AvailableOutcomes = catalog
			continue
		}

		switch value[0] {
		case '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("syllabus record: %s: %w", key, err)
			}
			r.Fields[key] = s
		case 't', 'f':
			var b bool
			if err := json.Unmarshal(value, &b); err != nil {
				return fmt.Errorf("syllabus record: %s: %w", key, err)
			}
			r.Fields[key] = strconv.FormatBool(b)
		case '{', '[':
			if r.extra == nil {
				r.extra = make(map[string]json.RawMessage)
			}
			r.extra[key] = append(json.RawMessage(nil), value...)
		default:
			var n json.Number
			if err := json.Unmarshal(value, &n); err != nil {
				return fmt.Errorf("syllabus record: %s: %w", key, err)
			}
			r.Fields[key] = n.String()
		}
	}
	return nil
}

// decodeCatalog 容忍缺失类别与多余字段
func decodeCatalog(data []byte) (OutcomeCatalog, error) {
	var raw map[string][]OutcomeOption
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	catalog := make(OutcomeCatalog, len(raw))
	for k, opts := range raw {
		cat, ok := ParseOutcomeCategory(k)
		if !ok {
			continue
		}
		filtered := make([]OutcomeOption, 0, len(opts))
		for _, o := range opts {
			o.Symbol = strings.TrimSpace(o.Symbol)
			if o.Symbol == "" {
				continue
			}
			filtered = append(filtered, o)
		}
		catalog[cat] = filtered
	}
	return catalog, nil
}

// DecodeRecords 解析抽取服务响应：单个对象或对象数组
// 响应为 null 时视为一条空白记录，直接进入编辑
func DecodeRecords(data []byte) ([]*SyllabusRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	if bytes.Equal(data, []byte("null")) {
		return []*SyllabusRecord{BlankRecord()}, nil
	}
	switch data[0] {
	case '[':
		var list []*SyllabusRecord
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		out := list[:0]
		for _, r := range list {
			if r != nil {
				out = append(out, r)
			}
		}
		return out, nil
	case '{':
		var r SyllabusRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return []*SyllabusRecord{&r}, nil
	}
	return nil, fmt.Errorf("expected JSON object or array")
}
