package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"x"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := pkgerrors.As(err).Message(); got != "email must be a valid email" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"x","role":"admin"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyAcceptsValidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Email != "a@b.co" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&page_size=abc&big=500", nil)

	if v, err := ParseQueryInt(req, "page", 1, 1, 100); err != nil || v != 3 {
		t.Fatalf("page: got %d, %v", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 7, 1, 100); err != nil || v != 7 {
		t.Fatalf("missing: got %d, %v", v, err)
	}
	if _, err := ParseQueryInt(req, "page_size", 1, 1, 100); err == nil {
		t.Fatalf("expected error for non numeric value")
	}
	if _, err := ParseQueryInt(req, "big", 1, 1, 100); err == nil {
		t.Fatalf("expected error for out of range value")
	}
	if !HasQuery(req, "nope", "page") || HasQuery(req, "nope") {
		t.Fatalf("HasQuery mismatch")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  linen   shirt \t", 0); got != "linen shirt" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("ação", 2); got != "aç" {
		t.Fatalf("expected rune aware cut, got %q", got)
	}
}
