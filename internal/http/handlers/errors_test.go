package handlers

import (
	"errors"
	"testing"

	"github.com/remontpro/frontdesk/internal/backend"
)

func TestErrorMessageTransportFailure(t *testing.T) {
	if got := errorMessage(errors.New("dial tcp: connection refused")); got != genericErrorMessage {
		t.Fatalf("transport failure must use the generic message, got %q", got)
	}
}

func TestErrorMessageBackendMessage(t *testing.T) {
	err := &backend.APIError{Status: 400, Code: "invalid_transition", Message: "Недопустимый переход статуса"}
	if got := errorMessage(err); got != "Недопустимый переход статуса" {
		t.Fatalf("expected backend message, got %q", got)
	}
}

func TestErrorMessageValidationDetails(t *testing.T) {
	err := &backend.APIError{
		Status:  422,
		Code:    "validation_error",
		Message: "Ошибка валидации",
		Details: []backend.FieldError{
			{Loc: []any{"body", "clientPhone"}, Msg: "field required"},
			{Loc: []any{"body", "customField"}, Msg: "too long"},
		},
	}
	got := errorMessage(err)
	if got != "Телефон: field required; customField: too long" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestErrorMessageEmptyDetailsFallsBack(t *testing.T) {
	err := &backend.APIError{
		Status:  422,
		Code:    "validation_error",
		Message: "Ошибка валидации",
		Details: []backend.FieldError{{Loc: []any{"body"}}},
	}
	if got := errorMessage(err); got != "Ошибка валидации" {
		t.Fatalf("expected fallback to message, got %q", got)
	}
}
