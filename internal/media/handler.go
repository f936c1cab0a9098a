package media

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/snapvault/backend/internal/apperror"
	"github.com/snapvault/backend/internal/auth"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/response"
)

// Upload limits enforced before anything reaches the service layer.
const (
	MaxFileSize  = 10 << 20 // 10MB per file
	MaxFileCount = 5        // files per multi-upload request
)

// Handler holds media HTTP handlers.
type Handler struct {
	svc     *Service
	respond *response.Writer
}

func NewHandler(svc *Service, respond *response.Writer) *Handler {
	return &Handler{svc: svc, respond: respond}
}

// Upload handles POST /media (multipart: file, albumId, title?, description?).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "No file uploaded"))
		return
	}
	defer file.Close()

	if err := checkFile(header); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	albumID := r.FormValue("albumId")
	if albumID == "" {
		h.respond.Error(w, r, apperror.Validation("Validation failed", "albumId is required"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.respond.Error(w, r, apperror.Wrap(apperror.BadRequest, "Failed to read uploaded file", err))
		return
	}

	item, err := h.svc.Upload(r.Context(), user, albumID, UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Data(w, http.StatusCreated, map[string]*models.MediaItem{"mediaItem": item})
}

// UploadMultiple handles POST /media/multiple (multipart: files[], albumId).
// All files are validated up front; nothing is uploaded if any file is
// rejected.
func (h *Handler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Invalid multipart form"))
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "No files uploaded"))
		return
	}
	if len(headers) > MaxFileCount {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Too many files"))
		return
	}
	albumID := r.FormValue("albumId")
	if albumID == "" {
		h.respond.Error(w, r, apperror.Validation("Validation failed", "albumId is required"))
		return
	}

	inputs := make([]UploadInput, 0, len(headers))
	for _, header := range headers {
		if err := checkFile(header); err != nil {
			h.respond.Error(w, r, err)
			return
		}
		file, err := header.Open()
		if err != nil {
			h.respond.Error(w, r, apperror.Wrap(apperror.BadRequest, "Failed to read uploaded file", err))
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.respond.Error(w, r, apperror.Wrap(apperror.BadRequest, "Failed to read uploaded file", err))
			return
		}
		inputs = append(inputs, UploadInput{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	items, err := h.svc.UploadMany(r.Context(), user, albumID, inputs)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.DataMessage(w, http.StatusCreated,
		pluralUploaded(len(items)),
		map[string][]models.MediaItem{"mediaItems": items},
		len(items),
	)
}

// Get handles GET /media/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	item, err := h.svc.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Data(w, http.StatusOK, map[string]*models.MediaItem{"mediaItem": item})
}

// Update handles PATCH /media/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req models.UpdateMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Invalid request body"))
		return
	}

	item, err := h.svc.Update(r.Context(), user, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Data(w, http.StatusOK, map[string]*models.MediaItem{"mediaItem": item})
}

// Delete handles DELETE /media/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	if err := h.svc.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Message(w, http.StatusOK, "Media item deleted successfully")
}

// checkFile enforces the MIME and size limits on one multipart file.
func checkFile(header *multipart.FileHeader) error {
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return apperror.New(apperror.BadRequest, "Only image and video files are allowed")
	}
	if header.Size > MaxFileSize {
		return apperror.New(apperror.BadRequest, "File too large")
	}
	return nil
}

func pluralUploaded(n int) string {
	if n == 1 {
		return "1 file uploaded successfully"
	}
	return strconv.Itoa(n) + " files uploaded successfully"
}
