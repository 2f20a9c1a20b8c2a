package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL JSONB 自定义类型 ──

// RecordJSON 对应 JSONB 列中的完整大纲记录，实现 GORM Scanner/Valuer 接口。
type RecordJSON struct {
	*SyllabusRecord
}

// Scan 将 JSONB 文本解析为记录。
func (j *RecordJSON) Scan(src interface{}) error {
	if src == nil {
		j.SyllabusRecord = NewSyllabusRecord(nil)
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("RecordJSON.Scan: unsupported type %T", src)
	}
	rec := &SyllabusRecord{}
	if err := json.Unmarshal(b, rec); err != nil {
		return fmt.Errorf("RecordJSON.Scan: %w", err)
	}
	j.SyllabusRecord = rec
	return nil
}

// Value 将记录序列化为 JSONB 文本。
func (j RecordJSON) Value() (driver.Value, error) {
	if j.SyllabusRecord == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j.SyllabusRecord)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON 空记录输出 {}
func (j RecordJSON) MarshalJSON() ([]byte, error) {
	if j.SyllabusRecord == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j.SyllabusRecord)
}

// UnmarshalJSON 解析嵌套记录
func (j *RecordJSON) UnmarshalJSON(data []byte) error {
	rec := &SyllabusRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return err
	}
	j.SyllabusRecord = rec
	return nil
}

// GormDataType 声明列类型
func (RecordJSON) GormDataType() string { return "jsonb" }

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
