package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/tutorplanet/internal/model"
)

func TestWriteErrorResponse_WritesUnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorResponse(w, http.StatusConflict, model.NewEmailTakenError())

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeEmailTaken {
		t.Errorf("code = %q", body.Code)
	}
	if body.Message != model.MessageEmailTaken {
		t.Errorf("message = %q", body.Message)
	}
	if body.Category == "" || body.Action == "" {
		t.Error("category and action should be present")
	}
}

func TestWriteInternalServerError_HidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["code"] != model.ErrCodeInternal {
		t.Errorf("code = %q", body["code"])
	}
	for _, key := range []string{"code", "message", "category", "action"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
}

func TestStatusForAPIError(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{model.ErrCodeMalformedRequest, http.StatusBadRequest},
		{model.ErrCodeEmailTaken, http.StatusConflict},
		{model.ErrCodeTutorNotFound, http.StatusNotFound},
		{model.ErrCodePermissionDenied, http.StatusForbidden},
		{model.ErrCodeCSRFFailed, http.StatusForbidden},
		{model.ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{model.ErrCodeRateLimited, http.StatusTooManyRequests},
		{model.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusForAPIError(&model.APIError{Code: tt.code}); got != tt.want {
			t.Errorf("StatusForAPIError(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWriteAPIError_UsesCodeStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteAPIError(w, model.NewRequestTooLargeError(1024))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "Request body exceeds 1024 bytes." {
		t.Errorf("Message = %q", body.Message)
	}
}
