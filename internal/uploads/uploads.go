package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize caps a single uploaded review image.
const MaxImageSize = 5 << 20 // 5 MB

// PublicPrefix is the URL prefix uploaded files are served under.
const PublicPrefix = "/uploads/"

var ErrInvalidImage = errors.New("only jpeg, png or gif images are allowed")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Uploader stores review images on local disk under unique names and hands
// back the relative path recorded as image_path.
type Uploader struct {
	dir string
}

func New(dir string) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploader{dir: dir}, nil
}

func (u *Uploader) Dir() string { return u.dir }

// SaveImage validates and stores one multipart image, returning its public
// path. Both the file extension and the sniffed content are checked; the
// declared Content-Type header alone is not trusted.
func (u *Uploader) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", fmt.Errorf("image exceeds the %dMB limit", MaxImageSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrInvalidImage
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("sniff upload: %w", err)
	}
	if !allowedMIMETypes[mtype.String()] {
		return "", ErrInvalidImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}

	return PublicPrefix + name, nil
}

// Remove deletes a previously stored image by its public path. Callers treat
// failures as best-effort and only log them.
func (u *Uploader) Remove(publicPath string) error {
	name := filepath.Base(strings.TrimPrefix(publicPath, PublicPrefix))
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid upload path %q", publicPath)
	}
	return os.Remove(filepath.Join(u.dir, name))
}
