package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Syllabus  SyllabusRepository
	Settings  SettingsRepository
	Downloads DownloadRepository
}

// NewRepository 创建 Repository 聚合
// 设置与下载暂存的后端由调用方按配置选择
func NewRepository(db *gorm.DB, settings SettingsRepository, downloads DownloadRepository) *Repository {
	return &Repository{
		Syllabus:  NewSyllabusRepo(db),
		Settings:  settings,
		Downloads: downloads,
	}
}
