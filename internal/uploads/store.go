package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where the router serves stored images from.
const URLPrefix = "/uploads/"

var (
	ErrTooLarge = errors.New("image exceeds upload size limit")
	ErrNotImage = errors.New("file is not a supported image")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store saves plant images on local disk
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the upload size ceiling.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates and stores an uploaded image, returning its public URL.
// Oversized or non-image files are rejected before anything is written.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	return s.write(src)
}

func (s *Store) write(src io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	head = head[:n]

	ext, ok := extensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrNotImage
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}

	// The header size can lie; enforce the ceiling on the bytes themselves.
	limited := io.LimitReader(io.MultiReader(bytes.NewReader(head), src), s.maxBytes+1)
	written, err := io.Copy(dst, limited)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", ErrTooLarge
	}

	return URLPrefix + name, nil
}

// Remove deletes a stored image by its public URL. URLs that do not point
// into the store are ignored.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, URLPrefix))
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
