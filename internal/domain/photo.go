package domain

import (
	"time"

	"github.com/google/uuid"
)

// Photo is the metadata row for an uploaded file. The file itself lives in
// the owner's storage directory under Filename.
type Photo struct {
	ID        int64     `json:"id" db:"id"`
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	Filename  string    `json:"filename" db:"filename"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OwnedBy reports whether userID owns the photo
func (p *Photo) OwnedBy(userID int64) bool {
	return p.UserID == userID
}
