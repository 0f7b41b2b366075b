package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
)

type signup struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required"`
	Age   int    `validate:"gte=18"`
}

func TestProcessValidationErrors(t *testing.T) {
	err := validator.New().Struct(signup{Email: "nope", Age: 12})
	got := ProcessValidationErrors(err)

	want := map[string]string{"Email": "email", "Name": "required", "Age": "gte"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for field, tag := range want {
		if got[field] != tag {
			t.Fatalf("field %s: got %q, want %q", field, got[field], tag)
		}
	}
}

func TestProcessValidationErrorsIgnoresOtherErrors(t *testing.T) {
	if got := ProcessValidationErrors(errors.New("boom")); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "bin not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != false || body["error"] != "bin not found" {
		t.Fatalf("unexpected body %v", body)
	}
}
