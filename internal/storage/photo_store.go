// Package storage keeps uploaded photo files in one directory per owner.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

var (
	ErrFileExists   = errors.New("file already exists")
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid file name")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PhotoStore reads and writes photo files under <root>/<userID>/<name>.
type PhotoStore struct {
	fs afero.Fs
}

// NewPhotoStore uses fs as the storage root.
func NewPhotoStore(fs afero.Fs) *PhotoStore {
	return &PhotoStore{fs: fs}
}

// NewOSPhotoStore roots the store at dir on the local filesystem, creating it
// if needed.
func NewOSPhotoStore(dir string) (*PhotoStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return NewPhotoStore(afero.NewBasePathFs(osFs, dir)), nil
}

// SanitizeFilename reduces a client supplied name to a safe base name made of
// letters, digits, dot, dash and underscore. It never returns an empty string.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._-")
	if len(name) > 200 {
		name = name[len(name)-200:]
	}
	if name == "" {
		return "photo"
	}
	return name
}

// Save writes r to a new file named name in userID's directory. The file is
// created exclusively: ErrFileExists means the name is taken and nothing was
// written. A partially written file is removed on failure.
func (s *PhotoStore) Save(userID int64, name string, r io.Reader) (int64, error) {
	p, err := s.path(userID, name)
	if err != nil {
		return 0, err
	}

	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create user dir: %w", err)
	}

	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, ErrFileExists
		}
		return 0, fmt.Errorf("failed to create %s: %w", p, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return 0, fmt.Errorf("failed to write %s: %w", p, err)
	}

	return n, nil
}

// Open opens a stored file for reading.
func (s *PhotoStore) Open(userID int64, name string) (afero.File, error) {
	p, err := s.path(userID, name)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrFileNotFound
	}

	return f, nil
}

// Remove deletes a stored file.
func (s *PhotoStore) Remove(userID int64, name string) error {
	p, err := s.path(userID, name)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

// ContentType sniffs the MIME type of f and rewinds it.
func ContentType(f afero.File) (string, error) {
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}
	return mtype.String(), nil
}

// ModTime returns the modification time of f, or the zero time.
func ModTime(f afero.File) time.Time {
	info, err := f.Stat()
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (s *PhotoStore) path(userID int64, name string) (string, error) {
	if userID <= 0 || name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(strconv.FormatInt(userID, 10), name), nil
}
