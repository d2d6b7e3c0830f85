package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	base := BadRequest("INSUFFICIENT_BALANCE", "not enough")
	custom := base.WithMessage("balance 10.00 is below price 20.00")

	if !errors.Is(custom, base) {
		t.Fatal("expected copies with a different message to match")
	}
	if errors.Is(custom, BadRequest("OTHER", "x")) {
		t.Fatal("expected different codes not to match")
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("purchase: %w", NotFound("COURSE_NOT_FOUND", "Course not found"))

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("expected apperror in chain")
	}
	if appErr.Status != http.StatusNotFound || appErr.Code != "COURSE_NOT_FOUND" {
		t.Fatalf("unexpected error: %+v", appErr)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Fatal("plain errors must not convert")
	}
}
