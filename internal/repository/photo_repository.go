package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"photo-inventory/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrPhotoAlreadyExists = errors.New("photo with this uuid or filename already exists")
)

// PhotoRepository defines the interface for photo metadata access
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.Photo) error
	FindByUUID(ctx context.Context, id uuid.UUID) (*domain.Photo, error)
	ListByOwner(ctx context.Context, userID int64) ([]*domain.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type photoRepository struct {
	db *sql.DB
}

// NewPhotoRepository creates a new instance of PhotoRepository
func NewPhotoRepository(db *sql.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// Create inserts photo metadata and fills in the generated id and timestamp
func (r *photoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	query := `
		INSERT INTO photos (uuid, filename, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, photo.UUID, photo.Filename, photo.UserID).
		Scan(&photo.ID, &photo.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrPhotoAlreadyExists
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}

	return nil
}

// FindByUUID retrieves photo metadata by its public identifier
func (r *photoRepository) FindByUUID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	query := `
		SELECT id, uuid, filename, user_id, created_at
		FROM photos
		WHERE uuid = $1
	`

	photo := &domain.Photo{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&photo.ID,
		&photo.UUID,
		&photo.Filename,
		&photo.UserID,
		&photo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to find photo: %w", err)
	}

	return photo, nil
}

// ListByOwner retrieves every photo owned by userID, oldest first
func (r *photoRepository) ListByOwner(ctx context.Context, userID int64) ([]*domain.Photo, error) {
	query := `
		SELECT id, uuid, filename, user_id, created_at
		FROM photos
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	photos := []*domain.Photo{}
	for rows.Next() {
		photo := &domain.Photo{}
		if err := rows.Scan(
			&photo.ID,
			&photo.UUID,
			&photo.Filename,
			&photo.UserID,
			&photo.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// Delete removes photo metadata by uuid
func (r *photoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPhotoNotFound
	}

	return nil
}
