// Package storage saves uploaded images on local disk under a single root
// that is also served statically at /uploads.
package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxImageSize is the upload cap for the generic upload endpoints.
const MaxImageSize = 5 << 20

var (
	ErrInvalidType = errors.New("only jpeg, jpg, png, gif and webp images are allowed")
	ErrTooLarge    = errors.New("file exceeds the 5MB limit")
	ErrOutsideRoot = errors.New("path is outside the upload directory")
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var folderPattern = regexp.MustCompile(`[^a-z0-9_-]+`)

// Local stores files below Root. Stored paths are relative, slash separated
// and prefixed with URLPrefix, e.g. /uploads/destinos/<uuid>.jpg.
type Local struct {
	Root      string
	URLPrefix string
}

func NewLocal(root string) *Local {
	return &Local{Root: root, URLPrefix: "/uploads"}
}

// Validate enforces the image allow-list and size cap.
func (l *Local) Validate(fh *multipart.FileHeader) error {
	if !allowedExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		return ErrInvalidType
	}
	if fh.Size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}

// Save writes fh into folder under a random name and returns its public path.
func (l *Local) Save(c *fiber.Ctx, fh *multipart.FileHeader, folder string) (string, error) {
	folder = SanitizeFolder(folder)
	dir := filepath.Join(l.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := c.SaveFile(fh, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path.Join(l.URLPrefix, folder, name), nil
}

// Remove deletes a file previously returned by Save.
func (l *Local) Remove(publicPath string) error {
	full, err := l.resolve(publicPath)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

func (l *Local) resolve(publicPath string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+publicPath), l.URLPrefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		return "", ErrOutsideRoot
	}

	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// SanitizeFolder keeps a folder name to a single lowercase path segment.
func SanitizeFolder(folder string) string {
	folder = folderPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(folder)), "")
	if folder == "" {
		return "general"
	}
	return folder
}
