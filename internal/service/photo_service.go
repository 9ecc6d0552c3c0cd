package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"photo-inventory/internal/apperr"
	"photo-inventory/internal/domain"
	"photo-inventory/internal/repository"
	"photo-inventory/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// maxNameAttempts bounds uuid regeneration when a storage name is taken
const maxNameAttempts = 5

var (
	ErrPhotoNotFound  = apperr.NotFound("photo not found")
	ErrPhotoForbidden = apperr.Forbidden("you do not own this photo")
	ErrNoFile         = apperr.Validation("no file uploaded",
		apperr.FieldError{Field: "photo", Message: "is required"})
	ErrEmptyFile = apperr.Validation("uploaded file is empty",
		apperr.FieldError{Field: "photo", Message: "must not be empty"})
	ErrEmptyFilename = apperr.Validation("filename is required",
		apperr.FieldError{Field: "filename", Message: "is required"})
)

// PhotoInfo is photo metadata plus its retrieval URL
type PhotoInfo struct {
	UUID      uuid.UUID `json:"uuid"`
	UserID    int64     `json:"user_id"`
	Filename  string    `json:"filename"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoFile is an opened photo ready to be streamed. The caller closes File.
type PhotoFile struct {
	File        afero.File
	Name        string
	ContentType string
	ModTime     time.Time
}

// PhotoService manages uploaded photo files and their metadata
type PhotoService interface {
	Upload(ctx context.Context, userID int64, filename string, content io.Reader) (*PhotoInfo, error)
	List(ctx context.Context, userID int64) ([]*PhotoInfo, error)
	GetByUUID(ctx context.Context, id uuid.UUID, userID int64) (*PhotoFile, error)
	OpenRaw(ctx context.Context, ownerID int64, filename string) (*PhotoFile, error)
	Delete(ctx context.Context, id uuid.UUID, userID int64) error
}

type photoService struct {
	photoRepo repository.PhotoRepository
	store     *storage.PhotoStore
	baseURL   string
	newUUID   func() uuid.UUID
}

// NewPhotoService creates a PhotoService. baseURL prefixes every retrieval
// URL and may be empty for relative URLs.
func NewPhotoService(photoRepo repository.PhotoRepository, store *storage.PhotoStore, baseURL string) PhotoService {
	return &photoService{
		photoRepo: photoRepo,
		store:     store,
		baseURL:   strings.TrimRight(baseURL, "/"),
		newUUID:   uuid.New,
	}
}

// Upload stores content under "<uuid>_<sanitized name>" in the caller's
// directory and records it.
func (s *photoService) Upload(ctx context.Context, userID int64, filename string, content io.Reader) (*PhotoInfo, error) {
	if content == nil {
		return nil, ErrNoFile
	}
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}

	safeName := storage.SanitizeFilename(filename)

	var (
		id      uuid.UUID
		name    string
		written int64
		err     error
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		id = s.newUUID()
		name = id.String() + "_" + safeName
		written, err = s.store.Save(userID, name, content)
		if !errors.Is(err, storage.ErrFileExists) {
			break
		}
	}
	if err != nil {
		return nil, apperr.Internal("failed to save photo", err)
	}

	if written == 0 {
		_ = s.store.Remove(userID, name)
		return nil, ErrEmptyFile
	}

	photo := &domain.Photo{UUID: id, Filename: name, UserID: userID}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		_ = s.store.Remove(userID, name)
		return nil, apperr.Internal("failed to save photo", err)
	}

	return s.info(photo), nil
}

func (s *photoService) List(ctx context.Context, userID int64) ([]*PhotoInfo, error) {
	photos, err := s.photoRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list photos", err)
	}
	if len(photos) == 0 {
		return nil, apperr.NotFound("no photos found")
	}

	infos := make([]*PhotoInfo, 0, len(photos))
	for _, p := range photos {
		infos = append(infos, s.info(p))
	}
	return infos, nil
}

func (s *photoService) GetByUUID(ctx context.Context, id uuid.UUID, userID int64) (*PhotoFile, error) {
	photo, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.open(photo.UserID, photo.Filename)
}

// OpenRaw opens a file by owner directory and name without consulting the
// database. Names that escape the directory are reported as not found.
func (s *photoService) OpenRaw(_ context.Context, ownerID int64, filename string) (*PhotoFile, error) {
	return s.open(ownerID, filename)
}

// Delete removes the file and then the row. A row whose file is already gone
// is left in place and reported as not found.
func (s *photoService) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	photo, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.store.Remove(photo.UserID, photo.Filename); err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return apperr.NotFound("photo file not found")
		}
		return apperr.Internal("failed to delete photo", err)
	}

	if err := s.photoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return ErrPhotoNotFound
		}
		return apperr.Internal("failed to delete photo", err)
	}

	return nil
}

func (s *photoService) findOwned(ctx context.Context, id uuid.UUID, userID int64) (*domain.Photo, error) {
	photo, err := s.photoRepo.FindByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, apperr.Internal("failed to get photo", err)
	}
	if !photo.OwnedBy(userID) {
		return nil, ErrPhotoForbidden
	}
	return photo, nil
}

func (s *photoService) open(ownerID int64, name string) (*PhotoFile, error) {
	f, err := s.store.Open(ownerID, name)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, apperr.NotFound("photo file not found")
		}
		return nil, apperr.Internal("failed to open photo", err)
	}

	ctype, err := storage.ContentType(f)
	if err != nil {
		f.Close()
		return nil, apperr.Internal("failed to open photo", err)
	}

	return &PhotoFile{
		File:        f,
		Name:        name,
		ContentType: ctype,
		ModTime:     storage.ModTime(f),
	}, nil
}

func (s *photoService) info(p *domain.Photo) *PhotoInfo {
	return &PhotoInfo{
		UUID:      p.UUID,
		UserID:    p.UserID,
		Filename:  p.Filename,
		PhotoURL:  s.photoURL(p.UserID, p.Filename),
		CreatedAt: p.CreatedAt,
	}
}

func (s *photoService) photoURL(userID int64, filename string) string {
	return fmt.Sprintf("%s/photos/%s/%s", s.baseURL, strconv.FormatInt(userID, 10), filename)
}
