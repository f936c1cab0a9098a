package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snapvault/backend/internal/apperror"
)

func TestDataEnvelope(t *testing.T) {
	wr := New(false)
	rec := httptest.NewRecorder()
	wr.Data(rec, http.StatusCreated, map[string]string{"name": "Holiday"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "success" {
		t.Errorf("status field = %v, want success", body["status"])
	}
	if body["data"] == nil {
		t.Error("data field missing")
	}
}

func TestErrorEnvelope(t *testing.T) {
	wr := New(false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/albums/123", nil)

	wr.Error(rec, req, apperror.New(apperror.Forbidden, "You do not have permission to access this album"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "error" {
		t.Errorf("status field = %v, want error", body["status"])
	}
	if body["message"] != "You do not have permission to access this album" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestErrorDetailHiddenByDefault(t *testing.T) {
	wr := New(false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/media/1", nil)

	wr.Error(rec, req, errors.New("pg: connection refused"))

	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if _, ok := body["detail"]; ok {
		t.Error("detail must not be exposed when ExposeDetails is false")
	}
	if body["message"] != "Something went wrong" {
		t.Errorf("message = %v, want generic", body["message"])
	}
}

func TestErrorDetailExposedInDev(t *testing.T) {
	wr := New(true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/media/1", nil)

	wr.Error(rec, req, apperror.Wrap(apperror.Internal, "Something went wrong", errors.New("pg: connection refused")))

	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["detail"] != "pg: connection refused" {
		t.Errorf("detail = %v, want underlying error", body["detail"])
	}
}
