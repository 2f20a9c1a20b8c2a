package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/moondec/syllabus/pkg/redis"
)

// ErrSettingsNotFound 存储中尚无该键
var ErrSettingsNotFound = errors.New("settings: key not found")

// SettingsRepository 键值型设置存储
// Save 必须整体替换，不允许出现部分写入
type SettingsRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// ── 文件后端 ──

type fileSettingsRepo struct {
	dir string
}

// NewFileSettingsRepo 每个键一个 JSON 文件，写入使用临时文件 + rename
func NewFileSettingsRepo(dir string) SettingsRepository {
	return &fileSettingsRepo{dir: dir}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func (r *fileSettingsRepo) path(key string) string {
	return filepath.Join(r.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (r *fileSettingsRepo) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(r.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取设置失败: %w", err)
	}
	return data, nil
}

func (r *fileSettingsRepo) Save(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("创建设置目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // rename 成功后为空操作

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("同步临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err := os.Rename(tmpName, r.path(key)); err != nil {
		return fmt.Errorf("替换设置文件失败: %w", err)
	}
	return nil
}

// ── Redis 后端 ──

type redisSettingsRepo struct {
	rdb *redis.Client
}

// NewRedisSettingsRepo 单条 SET 完成替换
func NewRedisSettingsRepo(rdb *redis.Client) SettingsRepository {
	return &redisSettingsRepo{rdb: rdb}
}

func (r *redisSettingsRepo) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取设置失败: %w", err)
	}
	return []byte(v), nil
}

func (r *redisSettingsRepo) Save(ctx context.Context, key string, data []byte) error {
	return r.rdb.Set(ctx, key, string(data), 0)
}
