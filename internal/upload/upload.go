// Package upload stores multipart image uploads on the local filesystem
// and hands back the URL under which the static file server exposes them.
package upload

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pingliu/service-rental-go/pkg/utilities"
)

var (
	ErrNoFile   = errors.New("no file uploaded")
	ErrTooLarge = errors.New("file too large")
	ErrBadType  = errors.New("unsupported file type")
)

type Config struct {
	// Dir is the uploads root, served under /uploads/.
	Dir string
	// MaxBytes caps a single upload.
	MaxBytes int64
}

// ConfigFromEnv reads UPLOAD_DIR (default "uploads") from the environment.
// The size cap is fixed at 5MB.
func ConfigFromEnv() Config {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return Config{Dir: dir, MaxBytes: 5 << 20}
}

// Storage writes uploaded images under per-kind subdirectories of the
// configured root.
type Storage struct {
	dir      string
	maxBytes int64
}

func NewStorage(cfg Config) *Storage {
	return &Storage{dir: cfg.Dir, maxBytes: cfg.MaxBytes}
}

// Dir returns the uploads root for the static file server.
func (s *Storage) Dir() string { return s.dir }

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

func allowedContentType(ct string) bool {
	switch ct {
	case "image/jpeg", "image/png", "image/gif", "":
		return true
	}
	return false
}

// SaveImage reads the named multipart field from the request, checks size
// and type, and stores the file as <dir>/<kind>/<prefix>_<ksuid><ext>.
// It returns the public URL path of the stored file.
func (s *Storage) SaveImage(r *http.Request, field, kind, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ErrNoFile
		}
		return "", err
	}
	defer file.Close()

	if header.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] || !allowedContentType(header.Header.Get("Content-Type")) {
		return "", ErrBadType
	}

	name := prefix + "_" + utilities.NewKSUID() + ext
	if err := s.write(file, kind, name); err != nil {
		return "", err
	}
	return path.Join("/uploads", kind, name), nil
}

func (s *Storage) write(src multipart.File, kind, name string) error {
	dir := filepath.Join(s.dir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes)); err != nil {
		os.Remove(dst.Name())
		return err
	}
	return nil
}
