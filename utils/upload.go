package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// LocalUploader stores uploaded images on disk, partitioned by date, and
// returns the public URL under which they are served.
type LocalUploader struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
	now       func() time.Time
}

func NewLocalUploader(dir, urlPrefix string, maxMB int) *LocalUploader {
	return &LocalUploader{
		Dir:       dir,
		URLPrefix: strings.TrimRight(urlPrefix, "/"),
		MaxBytes:  int64(maxMB) * 1024 * 1024,
		now:       time.Now,
	}
}

// SaveImage writes the file and returns its public reference path.
func (u *LocalUploader) SaveImage(header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExts[ext] {
		return "", ErrUnsupportedType
	}
	if header.Size > u.MaxBytes {
		return "", ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	day := u.now().Format("2006/01/02")
	baseDir := filepath.Join(u.Dir, filepath.FromSlash(day))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)
	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	// header.Size can lie; enforce the limit while copying
	written, err := io.Copy(out, &io.LimitedReader{R: src, N: u.MaxBytes + 1})
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > u.MaxBytes {
		_ = os.Remove(dstPath)
		return "", ErrFileTooLarge
	}

	return path.Join(u.URLPrefix, day, name), nil
}
