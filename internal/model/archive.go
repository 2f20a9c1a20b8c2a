package model

// DefaultLegalBasis 归档记录默认的法律依据
const DefaultLegalBasis = "Uchwała nr 27/2025 Senatu Uniwersytetu Przyrodniczego w Poznaniu z dnia 26 marca 2025 roku"

// Syllabus 归档表 — 对应 syllabi
// 元数据列冗余自 Data，便于列表与搜索
type Syllabus struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"         json:"id"`
	SubjectName  string     `gorm:"type:varchar(255);not null"       json:"subject_name"`
	FieldOfStudy string     `gorm:"type:varchar(255);not null"       json:"field_of_study"`
	Level        string     `gorm:"type:varchar(100);not null"       json:"level"`
	Semester     string     `gorm:"type:varchar(50);not null"        json:"semester"`
	LegalBasis   string     `gorm:"type:text;not null"               json:"legal_basis"`
	Language     string     `gorm:"type:varchar(8);not null;default:'pl'" json:"language"`
	Data         RecordJSON `gorm:"type:jsonb;not null"              json:"data"`
	SoftDeleteModel
}

// TableName 指定表名
func (Syllabus) TableName() string { return "syllabi" }

// SyncFromRecord 从记录刷新冗余元数据列
func (s *Syllabus) SyncFromRecord(rec *SyllabusRecord) {
	s.Data = RecordJSON{SyllabusRecord: rec}
	s.SubjectName = rec.SubjectName()
	s.FieldOfStudy = rec.Get(FieldFieldOfStudy)
	s.Level = rec.Get(FieldLevel)
	s.Semester = rec.Get(FieldSemester)
	if lang := rec.Get(FieldLanguage); lang != "" {
		s.Language = lang
	}
	if lb := rec.Get(FieldLegalBasis); lb != "" {
		s.LegalBasis = lb
	}
	if s.LegalBasis == "" {
		s.LegalBasis = DefaultLegalBasis
	}
	if s.Language == "" {
		s.Language = string(LanguageNative)
	}
}
