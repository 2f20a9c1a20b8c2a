package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moondec/syllabus/pkg/redis"
)

// ErrDownloadNotFound 文件不存在或已过期
var ErrDownloadNotFound = errors.New("download not found")

// StoredFile 暂存的导出文件
type StoredFile struct {
	ID          string
	FileName    string
	ContentType string
	Content     []byte
}

// DownloadRepository 导出文件暂存，过期自动失效
type DownloadRepository interface {
	Put(ctx context.Context, f *StoredFile, ttl time.Duration) error
	Get(ctx context.Context, id string) (*StoredFile, error)
}

// ── 内存后端 ──

type memoryEntry struct {
	file      StoredFile
	expiresAt time.Time
}

type memoryDownloadRepo struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryDownloadRepo 单实例部署使用
func NewMemoryDownloadRepo() DownloadRepository {
	return &memoryDownloadRepo{items: make(map[string]memoryEntry), now: time.Now}
}

func (r *memoryDownloadRepo) Put(_ context.Context, f *StoredFile, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, e := range r.items {
		if now.After(e.expiresAt) {
			delete(r.items, id)
		}
	}
	r.items[f.ID] = memoryEntry{file: *f, expiresAt: now.Add(ttl)}
	return nil
}

func (r *memoryDownloadRepo) Get(_ context.Context, id string) (*StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return nil, ErrDownloadNotFound
	}
	if r.now().After(e.expiresAt) {
		delete(r.items, id)
		return nil, ErrDownloadNotFound
	}
	f := e.file
	return &f, nil
}

// ── Redis 后端 ──

const downloadKeyPrefix = "syllabus:download:"

type redisDownloadRepo struct {
	rdb *redis.Client
}

// NewRedisDownloadRepo 多实例部署共享暂存
func NewRedisDownloadRepo(rdb *redis.Client) DownloadRepository {
	return &redisDownloadRepo{rdb: rdb}
}

func (r *redisDownloadRepo) Put(ctx context.Context, f *StoredFile, ttl time.Duration) error {
	return r.rdb.SetBlob(ctx, downloadKeyPrefix+f.ID, map[string]interface{}{
		"file_name":    f.FileName,
		"content_type": f.ContentType,
		"content":      f.Content,
	}, ttl)
}

func (r *redisDownloadRepo) Get(ctx context.Context, id string) (*StoredFile, error) {
	m, err := r.rdb.GetBlob(ctx, downloadKeyPrefix+id)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrDownloadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取导出文件失败: %w", err)
	}
	return &StoredFile{
		ID:          id,
		FileName:    m["file_name"],
		ContentType: m["content_type"],
		Content:     []byte(m["content"]),
	}, nil
}
