// Package sftp 将导出的文件发布到 SFTP 目录
package sftp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/moondec/syllabus/config"
)

// Uploader SFTP 上传器，每次上传建立独立连接
type Uploader struct {
	cfg    config.SFTPConfig
	logger *zap.Logger
}

// NewUploader 创建上传器
func NewUploader(cfg config.SFTPConfig, logger *zap.Logger) *Uploader {
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	return &Uploader{cfg: cfg, logger: logger}
}

// hostKeyCallback 默认按 known_hosts 校验主机指纹；显式开启 insecure 时跳过
func (u *Uploader) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if u.cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if u.cfg.KnownHostsFile == "" {
		return nil, fmt.Errorf("sftp: 未配置 known_hosts_file，且未开启 insecure_ignore_host_key")
	}
	cb, err := knownhosts.New(u.cfg.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("sftp: 读取 known_hosts 失败: %w", err)
	}
	return cb, nil
}

// Upload 将内容写入 remoteDir/fileName
func (u *Uploader) Upload(ctx context.Context, fileName string, content []byte) error {
	if u.cfg.Host == "" || u.cfg.User == "" {
		return fmt.Errorf("sftp: 缺少 host 或 user 配置")
	}

	hostKey, err := u.hostKeyCallback()
	if err != nil {
		return err
	}

	sshCfg := &ssh.ClientConfig{
		User:            u.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(u.cfg.Password)},
		HostKeyCallback: hostKey,
		Timeout:         20 * time.Second,
	}
	addr := net.JoinHostPort(u.cfg.Host, strconv.Itoa(u.cfg.Port))

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		return fmt.Errorf("sftp: 连接已取消: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("sftp: 连接失败: %w", r.err)
		}
		sshClient = r.client
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: 创建客户端失败: %w", err)
	}
	defer client.Close()

	if err := client.MkdirAll(u.cfg.RemoteDir); err != nil {
		return fmt.Errorf("sftp: 创建目录 %s 失败: %w", u.cfg.RemoteDir, err)
	}

	remotePath := path.Join(u.cfg.RemoteDir, path.Base(fileName))
	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp: 创建远程文件失败: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("sftp: 写入失败: %w", err)
	}

	u.logger.Info("导出文件已发布到 SFTP", zap.String("path", remotePath), zap.Int("bytes", len(content)))
	return nil
}
