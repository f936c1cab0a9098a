package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/snapvault/backend/internal/apperror"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/response"
	"github.com/snapvault/backend/internal/store"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Revoker records revoked token IDs until their expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users   UserStore
	tokens  *TokenManager
	revoker Revoker
	respond *response.Writer
}

func NewHandler(users UserStore, tokens *TokenManager, revoker Revoker, respond *response.Writer) *Handler {
	return &Handler{users: users, tokens: tokens, revoker: revoker, respond: respond}
}

type authPayload struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new user and issues a token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Invalid request body"))
		return
	}
	if issues := validateRegistration(&req); len(issues) > 0 {
		h.respond.Error(w, r, apperror.Validation("Validation failed", issues...))
		return
	}

	// Check the email first so that a request conflicting on both fields
	// reports the email conflict.
	if _, err := h.users.GetUserByEmail(r.Context(), req.Email); err == nil {
		h.respond.Error(w, r, apperror.New(apperror.Conflict, "Email already in use"))
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		h.respond.Error(w, r, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respond.Error(w, r, apperror.Wrap(apperror.Internal, "Something went wrong", err))
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, req.Email, string(hashed))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			h.respond.Error(w, r, apperror.New(apperror.Conflict, "Email already in use"))
		case errors.Is(err, store.ErrDuplicateUsername):
			h.respond.Error(w, r, apperror.New(apperror.Conflict, "Username already taken"))
		default:
			h.respond.Error(w, r, err)
		}
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.respond.Error(w, r, apperror.Wrap(apperror.Internal, "Something went wrong", err))
		return
	}

	h.respond.Data(w, http.StatusCreated, authPayload{User: user, Token: token})
}

// Login authenticates a user and issues a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.BadRequest, "Invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		h.respond.Error(w, r, apperror.Validation("Validation failed", "email and password are required"))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.respond.Error(w, r, apperror.New(apperror.Unauthorized, "Invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.respond.Error(w, r, apperror.New(apperror.Unauthorized, "Invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.respond.Error(w, r, apperror.Wrap(apperror.Internal, "Something went wrong", err))
		return
	}

	h.respond.Data(w, http.StatusOK, authPayload{User: user, Token: token})
}

// Logout revokes the presented token until its natural expiry.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		h.respond.Error(w, r, apperror.New(apperror.Unauthorized, "You are not logged in"))
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.revoker.Revoke(r.Context(), claims.ID, ttl); err != nil {
		h.respond.Error(w, r, apperror.Wrap(apperror.Internal, "Something went wrong", err))
		return
	}

	h.respond.Message(w, http.StatusOK, "Logged out successfully")
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		h.respond.Error(w, r, apperror.New(apperror.Unauthorized, "You are not logged in"))
		return
	}
	h.respond.Data(w, http.StatusOK, map[string]*models.User{"user": user})
}

func validateRegistration(req *models.RegisterRequest) []string {
	var issues []string
	if req.Username == "" {
		issues = append(issues, "username is required")
	}
	if req.Email == "" {
		issues = append(issues, "email is required")
	} else if !emailRegex.MatchString(req.Email) {
		issues = append(issues, "email must be a valid email address")
	}
	if len(req.Password) < 8 {
		issues = append(issues, "password must be at least 8 characters")
	}
	return issues
}
