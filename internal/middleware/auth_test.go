package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/snapvault/backend/internal/auth"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/response"
	"github.com/snapvault/backend/internal/store"
)

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

type fakeRevocations struct {
	revoked map[string]bool
}

func (f *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], nil
}

func protectedEcho(t *testing.T) (http.Handler, *auth.TokenManager, *fakeUsers, *fakeRevocations) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	users := &fakeUsers{users: map[string]*models.User{
		"user-1": {ID: "user-1", Username: "alice"},
	}}
	revocations := &fakeRevocations{revoked: make(map[string]bool)}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFrom(r.Context())
		if !ok {
			t.Error("user missing from context inside protected handler")
			return
		}
		w.Write([]byte(user.Username))
	})
	return Protect(tokens, revocations, users, response.New(false))(next), tokens, users, revocations
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return body.Message
}

func get(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestProtectMissingHeader(t *testing.T) {
	handler, _, _, _ := protectedEcho(t)

	rec := get(handler, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); got != "You are not logged in" {
		t.Errorf("message = %q", got)
	}
}

func TestProtectMalformedHeader(t *testing.T) {
	handler, _, _, _ := protectedEcho(t)

	rec := get(handler, "Token abc")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectInvalidToken(t *testing.T) {
	handler, _, _, _ := protectedEcho(t)

	rec := get(handler, "Bearer not.a.token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); got != "Invalid token" {
		t.Errorf("message = %q", got)
	}
}

func TestProtectExpiredToken(t *testing.T) {
	handler, _, _, _ := protectedEcho(t)

	// Structurally valid but issued with zero lifetime.
	expired, err := auth.NewTokenManager("test-secret", 0).Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := get(handler, "Bearer "+expired)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); got != "Token expired" {
		t.Errorf("message = %q", got)
	}
}

func TestProtectRevokedToken(t *testing.T) {
	handler, tokens, _, revocations := protectedEcho(t)

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	revocations.revoked[claims.ID] = true

	rec := get(handler, "Bearer "+raw)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); got != "Token expired" {
		t.Errorf("message = %q", got)
	}
}

func TestProtectDeletedUser(t *testing.T) {
	handler, tokens, _, _ := protectedEcho(t)

	raw, err := tokens.Issue("user-gone")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := get(handler, "Bearer "+raw)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); got != "User belonging to this token no longer exists" {
		t.Errorf("message = %q", got)
	}
}

func TestProtectSuccessAttachesUser(t *testing.T) {
	handler, tokens, _, _ := protectedEcho(t)

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := get(handler, "Bearer "+raw)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "alice" {
		t.Errorf("downstream saw %q, want alice", rec.Body.String())
	}
}
