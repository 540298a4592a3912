package http

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadStore saves uploaded media under a local directory and hands back
// the public URL a browser can fetch it from.
type UploadStore struct {
	dir     string
	baseURL string
}

// NewUploadStore creates an upload store rooted at dir
func NewUploadStore(dir, baseURL string) *UploadStore {
	return &UploadStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

var allowedUploadExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".mp4": true, ".webm": true, ".mkv": true,
}

// Save writes one uploaded file to disk under a random name and returns its
// public URL. The original filename only contributes its extension.
func (u *UploadStore) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads dir: %w", err)
	}

	name := uuid.New().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(u.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return u.baseURL + "/" + name, nil
}

// SaveOptional resolves an optional form file to a URL; a missing file is
// not an error and returns ""
func (u *UploadStore) SaveOptional(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	return u.Save(c, file)
}
