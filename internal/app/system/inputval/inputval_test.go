package inputval

import (
	"testing"

	"github.com/campushub/campushub/internal/app/system/apperr"
)

type loginShape struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func TestStructAcceptsValidPayload(t *testing.T) {
	if err := Struct(loginShape{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("Struct returned %v for a valid payload", err)
	}
}

func TestStructReportsMissingFields(t *testing.T) {
	err := Struct(loginShape{Username: "a"})
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if e.Fields["password"] != "required" {
		t.Errorf("fields = %v, want password:required", e.Fields)
	}
	if _, present := e.Fields["username"]; present {
		t.Errorf("fields = %v, username should not be flagged", e.Fields)
	}
}
