package httputil

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, 200, map[string]int{"count": 5})

	if w.Code != 200 {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %v, want application/json", ct)
	}

	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["count"] != 5 {
		t.Errorf("count = %d, want 5", body["count"])
	}
}

func TestBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, "parameter 'limit' is not an integer")

	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body is empty")
	}
}

func TestDownstreamError(t *testing.T) {
	w := httptest.NewRecorder()
	DownstreamError(w, "dataapi unavailable")

	if w.Code != 502 {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestHandleError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		w := httptest.NewRecorder()
		if HandleError(w, nil, 500) {
			t.Error("HandleError(nil) = true, want false")
		}
	})

	t.Run("non-nil error", func(t *testing.T) {
		w := httptest.NewRecorder()
		if !HandleError(w, errors.New("boom"), 502) {
			t.Error("HandleError(err) = false, want true")
		}
		if w.Code != 502 {
			t.Errorf("status = %d, want 502", w.Code)
		}
	})
}
