package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf_UnwrapsChains(t *testing.T) {
	base := NotFound("Pet not found")
	wrapped := fmt.Errorf("load pet: %w", base)

	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("expected not_found, got %v", KindOf(wrapped))
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("errors.Is should match the sentinel")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatalf("plain errors must be internal")
	}
}

func TestWrap_KeepsSentinelAndCause(t *testing.T) {
	base := BadRequest("invalid")
	cause := errors.New("driver said no")
	err := Wrap(base, cause)

	if !errors.Is(err, base) || !errors.Is(err, cause) {
		t.Fatalf("wrap must keep both errors reachable: %v", err)
	}
	if KindOf(err).HTTPStatus() != http.StatusBadRequest {
		t.Fatalf("expected 400")
	}
}

func TestDuplicate_NamesField(t *testing.T) {
	e := Duplicate("email")
	if e.Kind != KindBadRequest {
		t.Fatalf("duplicate must be bad request")
	}
	if e.Message != "Duplicate value entered for email" {
		t.Fatalf("unexpected message %q", e.Message)
	}
	if len(e.Fields) != 1 || e.Fields[0].Field != "email" {
		t.Fatalf("unexpected fields %+v", e.Fields)
	}
}

func TestValidation_Is422(t *testing.T) {
	e := Validation([]FieldError{{Field: "name", Message: "required"}})
	if e.Kind.HTTPStatus() != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", e.Kind.HTTPStatus())
	}
}
