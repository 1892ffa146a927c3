package storage

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrInvalidName  = errors.New("invalid file name")
	ErrNotPDF       = errors.New("only PDF files are allowed")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

// Kind selects which directory a file lives in.
type Kind int

const (
	Books Kind = iota
	Thumbnails
)

// Local keeps uploaded PDFs and generated thumbnails in two directories.
type Local struct {
	booksDir      string
	thumbnailsDir string
	maxSize       int64
}

func NewLocal(booksDir, thumbnailsDir string, maxSize int64) (*Local, error) {
	for _, dir := range []string{booksDir, thumbnailsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &Local{booksDir: booksDir, thumbnailsDir: thumbnailsDir, maxSize: maxSize}, nil
}

func (l *Local) dir(kind Kind) string {
	if kind == Thumbnails {
		return l.thumbnailsDir
	}
	return l.booksDir
}

// BooksDir is where PDFs are written; thumbnails are rendered from here.
func (l *Local) BooksDir() string { return l.booksDir }

// ThumbnailsDir is where rendered PNGs are written.
func (l *Local) ThumbnailsDir() string { return l.thumbnailsDir }

// Path resolves a bare file name inside the kind's directory.
func (l *Local) Path(kind Kind, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(l.dir(kind), name), nil
}

// UniqueName mirrors "<unix-millis>-<9 random digits><ext>".
func UniqueName(ext string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1e9))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1e9)
	}
	return fmt.Sprintf("%d-%09d%s", time.Now().UnixMilli(), n.Int64(), ext)
}

// ValidatePDF checks size, extension and sniffed content of an upload.
func (l *Local) ValidatePDF(header *multipart.FileHeader) error {
	if l.maxSize > 0 && header.Size > l.maxSize {
		return fmt.Errorf("%w (%d MB)", ErrFileTooLarge, l.maxSize>>20)
	}
	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		return ErrNotPDF
	}

	f, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return ErrNotPDF
	}
	return nil
}

// SaveBook validates and writes the upload under a fresh unique name.
func (l *Local) SaveBook(header *multipart.FileHeader) (string, error) {
	if err := l.ValidatePDF(header); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := UniqueName(".pdf")
	path := filepath.Join(l.booksDir, name)
	if err := writeFile(path, src); err != nil {
		return "", err
	}
	return name, nil
}

func writeFile(path string, src io.Reader) error {
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return dst.Close()
}

// Delete removes a stored file. Missing files are not an error.
func (l *Local) Delete(kind Kind, name string) error {
	if name == "" {
		return nil
	}
	path, err := l.Path(kind, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether a stored file is present.
func (l *Local) Exists(kind Kind, name string) bool {
	path, err := l.Path(kind, name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
