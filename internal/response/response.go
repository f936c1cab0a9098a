// Package response provides the shared JSON envelope for HTTP handlers.
//
// Success bodies look like {"status":"success","data":...} with an optional
// "results" count; error bodies look like {"status":"error","message":...}
// with optional field-level "errors". All domain errors funnel through
// Writer.Error, the single boundary that logs and serializes them.
package response

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/snapvault/backend/internal/apperror"
)

// Writer serializes API responses. ExposeDetails controls whether the
// underlying error detail is included in 5xx bodies (never in production).
type Writer struct {
	ExposeDetails bool
}

// New creates a response Writer. Pass exposeDetails=false in production.
func New(exposeDetails bool) *Writer {
	return &Writer{ExposeDetails: exposeDetails}
}

type successBody struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Results *int        `json:"results,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errorBody struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func (wr *Writer) JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Data writes a success envelope with data.
func (wr *Writer) Data(w http.ResponseWriter, status int, data interface{}) {
	wr.JSON(w, status, successBody{Status: "success", Data: data})
}

// Results writes a success envelope with data and a results count.
func (wr *Writer) Results(w http.ResponseWriter, status int, data interface{}, results int) {
	wr.JSON(w, status, successBody{Status: "success", Results: &results, Data: data})
}

// DataMessage writes a success envelope carrying both a message and data.
func (wr *Writer) DataMessage(w http.ResponseWriter, status int, message string, data interface{}, results int) {
	wr.JSON(w, status, successBody{Status: "success", Message: message, Results: &results, Data: data})
}

// Message writes a success envelope with only a message.
func (wr *Writer) Message(w http.ResponseWriter, status int, message string) {
	wr.JSON(w, status, successBody{Status: "success", Message: message})
}

// Error logs err by severity and writes the error envelope. 5xx failures are
// logged as errors, everything else as warnings.
func (wr *Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	e := apperror.From(err)
	status := e.Kind.Status()

	if status >= http.StatusInternalServerError {
		log.Printf("error: %s %s: %v", r.Method, r.URL.Path, e)
	} else {
		log.Printf("warn: %s %s: %v", r.Method, r.URL.Path, e)
	}

	body := errorBody{Status: "error", Message: e.Message, Errors: e.Fields}
	if wr.ExposeDetails && status >= http.StatusInternalServerError && e.Err != nil {
		body.Detail = e.Err.Error()
	}
	wr.JSON(w, status, body)
}
