// Package attachments stores resume files and hands out time-limited
// download URLs for them.
//
// Two backends implement Store: Local (any afero filesystem, links served by
// this process at /files/{token}) and S3 (any S3-compatible endpoint through
// minio-go, links are presigned).
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the attachment contract used by the application handlers.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrNotFound        = errors.New("attachment not found")
	ErrTooLarge        = errors.New("file is larger than the upload limit")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrBadKey          = errors.New("invalid attachment key")
)

// MaxUploadSize is the largest accepted resume.
const MaxUploadSize = 5 << 20 // 5 MiB

// DefaultSignedURLTTL is used when a caller passes ttl <= 0.
const DefaultSignedURLTTL = time.Hour

// allowedTypes maps accepted extensions to the content type stored with them.
var allowedTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain; charset=utf-8",
}

// AllowedExtensions lists accepted extensions for the upload form's accept attribute.
func AllowedExtensions() string {
	return ".pdf,.doc,.docx,.txt"
}

// CheckUpload validates an upload by name and size and returns the content
// type to store it with.
func CheckUpload(filename string, size int64) (string, error) {
	if size > MaxUploadSize {
		return "", ErrTooLarge
	}
	ct, ok := allowedTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ct, nil
}

// ResumeKey returns a unique key for a user's resume:
// resumes/{userID}/{uuid8}-{sanitized filename}.
func ResumeKey(userID, filename string) string {
	return fmt.Sprintf("resumes/%s/%s-%s", userID, uuid.New().String()[:8], SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'. Long names are cut to 100 bytes, keeping the
// extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '.' || c == '-' || c == '_'
}

// cleanKey rejects keys that are empty or try to leave the store root.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+key)), "/")
	if key == "" || key == "." {
		return "", ErrBadKey
	}
	return key, nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultSignedURLTTL
	}
	return ttl
}
