package album

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snapvault/backend/internal/apperror"
	"github.com/snapvault/backend/internal/auth"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/response"
)

// Handler holds album HTTP handlers.
type Handler struct {
	svc     *Service
	respond *response.Writer
}

func NewHandler(svc *Service, respond *response.Writer) *Handler {
	return &Handler{svc: svc, respond: respond}
}

// Create handles POST /albums.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req models.CreateAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Invalid request body"))
		return
	}
	if req.Name == "" {
		h.respond.Error(w, r, apperror.Validation("Validation failed", "name is required"))
		return
	}

	album, err := h.svc.Create(r.Context(), user, &req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Data(w, http.StatusCreated, map[string]*models.Album{"album": album})
}

// List handles GET /albums (owned + public).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	albums, err := h.svc.List(r.Context(), user)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Results(w, http.StatusOK, map[string][]models.Album{"albums": albums}, len(albums))
}

// ListMine handles GET /albums/my (owned only).
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	albums, err := h.svc.ListMine(r.Context(), user)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Results(w, http.StatusOK, map[string][]models.Album{"albums": albums}, len(albums))
}

// Get handles GET /albums/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	album, err := h.svc.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Data(w, http.StatusOK, map[string]*models.Album{"album": album})
}

// Update handles PATCH /albums/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req models.UpdateAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Invalid request body"))
		return
	}
	if req.Name != nil && *req.Name == "" {
		h.respond.Error(w, r, apperror.Validation("Validation failed", "name cannot be empty"))
		return
	}

	album, err := h.svc.Update(r.Context(), user, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Data(w, http.StatusOK, map[string]*models.Album{"album": album})
}

// Delete handles DELETE /albums/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	if err := h.svc.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Message(w, http.StatusOK, "Album deleted successfully")
}

// ListMedia handles GET /albums/{id}/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	items, err := h.svc.ListMedia(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Results(w, http.StatusOK, map[string][]models.MediaItem{"mediaItems": items}, len(items))
}
