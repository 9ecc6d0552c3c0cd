package transport

import (
	"errors"
	"net/http"
	"strconv"

	"photo-inventory/internal/apperr"
	"photo-inventory/internal/middleware"
	"photo-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PhotoFormField is the multipart field carrying the upload
const PhotoFormField = "photo"

// PhotoHandler handles HTTP requests for photo operations
type PhotoHandler struct {
	photoService   service.PhotoService
	logger         *zap.Logger
	maxUploadBytes int64
	publicURLs     bool
}

// NewPhotoHandler creates a new PhotoHandler. With publicURLs the raw file
// route is served without authentication.
func NewPhotoHandler(photoService service.PhotoService, logger *zap.Logger, maxUploadBytes int64, publicURLs bool) *PhotoHandler {
	return &PhotoHandler{
		photoService:   photoService,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		publicURLs:     publicURLs,
	}
}

// RegisterRoutes registers all photo routes
func (h *PhotoHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/photos", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.UploadPhoto)
			r.Get("/", h.ListPhotos)
			r.Get("/uuid/{uuid}", h.GetPhoto)
			r.Delete("/uuid/{uuid}", h.DeletePhoto)
		})

		if h.publicURLs {
			r.Get("/{userId}/{filename}", h.ServeRaw)
		} else {
			r.With(authMiddleware, middleware.RequireOwnerParam("userId", h.logger)).
				Get("/{userId}/{filename}", h.ServeRaw)
		}
	})
}

// UploadPhoto handles POST /photos
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile(PhotoFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			middleware.RespondWithAppError(w, h.logger, service.ErrNoFile)
		default:
			middleware.RespondWithAppError(w, h.logger, apperr.Validation("invalid multipart form").Wrap(err))
		}
		return
	}
	defer file.Close()
	defer r.MultipartForm.RemoveAll()

	info, err := h.photoService.Upload(r.Context(), userID, header.Filename, file)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	h.logger.Info("Photo uploaded",
		zap.String("uuid", info.UUID.String()),
		zap.Int64("user_id", userID),
		zap.Int64("size", header.Size),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, info)
}

// ListPhotos handles GET /photos
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	photos, err := h.photoService.List(r.Context(), userID)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, photos)
}

// GetPhoto handles GET /photos/uuid/{uuid}
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, err := photoUUIDParam(r)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	photo, err := h.photoService.GetByUUID(r.Context(), id, userID)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	h.serve(w, r, photo)
}

// ServeRaw handles GET /photos/{userId}/{filename}
func (h *PhotoHandler) ServeRaw(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, service.ErrPhotoNotFound)
		return
	}

	photo, err := h.photoService.OpenRaw(r.Context(), ownerID, chi.URLParam(r, "filename"))
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	h.serve(w, r, photo)
}

// DeletePhoto handles DELETE /photos/uuid/{uuid}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, err := photoUUIDParam(r)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	if err := h.photoService.Delete(r.Context(), id, userID); err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	h.logger.Info("Photo deleted", zap.String("uuid", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "photo deleted successfully"})
}

func (h *PhotoHandler) serve(w http.ResponseWriter, r *http.Request, photo *service.PhotoFile) {
	defer photo.File.Close()

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if !h.publicURLs {
		w.Header().Set("Cache-Control", "private")
	}
	http.ServeContent(w, r, photo.Name, photo.ModTime, photo.File)
}

func photoUUIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid photo UUID",
			apperr.FieldError{Field: "uuid", Message: "must be a valid UUID"})
	}
	return id, nil
}
