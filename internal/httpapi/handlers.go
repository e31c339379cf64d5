// Package httpapi exposes the submission pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	pdfmailer "github.com/alnah/go-pdfmailer"
)

// livenessBody is the response of GET /, kept contract-free on purpose.
const livenessBody = "go-pdfmailer backend is running"

// SubmissionProcessor runs the submission pipeline for one request.
// Implemented by pdfmailer.Service and pdfmailer.ServicePool.
type SubmissionProcessor interface {
	Process(ctx context.Context, in pdfmailer.SubmissionInput) (*pdfmailer.Submission, error)
}

// Handler maps pipeline outcomes to HTTP responses.
type Handler struct {
	processor SubmissionProcessor
	log       *slog.Logger
}

// NewHandler creates a Handler backed by the given processor.
func NewHandler(processor SubmissionProcessor, log *slog.Logger) *Handler {
	return &Handler{processor: processor, log: log}
}

// messageResponse is the 200 body of the submit endpoint.
type messageResponse struct {
	Message string `json:"message"`
}

// validationResponse is the 400 body: one entry per failed field.
type validationResponse struct {
	Errors []pdfmailer.FieldError `json:"errors"`
}

// serverErrorResponse is the 500 body for failures past validation.
type serverErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// SubmitForm handles POST /api/submit-form.
//
// 400 carries the full list of field errors and guarantees no side effect
// occurred; 500 means a downstream step (store, render, send) failed after
// validation passed.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var in pdfmailer.SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Errors: []pdfmailer.FieldError{{Field: "body", Msg: "Request body must be valid JSON."}},
		})
		return
	}

	sub, err := h.processor.Process(r.Context(), in)
	if err != nil {
		var fieldErrs pdfmailer.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeJSON(w, http.StatusBadRequest, validationResponse{Errors: fieldErrs})
			return
		}

		h.log.Error("submission processing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, serverErrorResponse{
			Message: "Server error during submission processing.",
			Error:   err.Error(),
		})
		return
	}

	h.log.Info("submission processed",
		"id", sub.ID,
		"email", sub.Email,
	)
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Form submitted, PDF generated, and email sent successfully!",
	})
}

// Liveness handles GET /.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(livenessBody))
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
