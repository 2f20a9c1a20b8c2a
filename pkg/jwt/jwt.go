package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/moondec/syllabus/config"
)

var (
	ErrTokenExpired = errors.New("link do pobrania wygasł")
	ErrTokenInvalid = errors.New("nieprawidłowy link do pobrania")
)

const issuer = "syllabus"

// DownloadClaims 下载链接声明
// DownloadID 指向暂存的导出文件；FileName 用于 Content-Disposition
type DownloadClaims struct {
	DownloadID string `json:"download_id"`
	FileName   string `json:"file_name"`
	jwtv5.RegisteredClaims
}

// Manager 下载链接签发器
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager 创建签发器
func NewManager(cfg *config.DownloadsConfig) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Manager{secret: []byte(cfg.Secret), ttl: ttl}
}

// TTL 链接有效期，同时作为暂存文件的过期时间
func (m *Manager) TTL() time.Duration { return m.ttl }

// GenerateDownloadToken 为暂存文件签发有效期受限的令牌
func (m *Manager) GenerateDownloadToken(downloadID, fileName string) (string, error) {
	now := time.Now()
	claims := DownloadClaims{
		DownloadID: downloadID,
		FileName:   fileName,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseDownloadToken 解析并验证令牌
func (m *Manager) ParseDownloadToken(tokenString string) (*DownloadClaims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &DownloadClaims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*DownloadClaims)
	if !ok || !token.Valid || claims.DownloadID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
