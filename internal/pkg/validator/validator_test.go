package validator

import "testing"

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"signup_role"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	errs := Validate(registerRequest{Email: "nope", Password: "short", Role: "ADMIN"})

	for _, field := range []string{"email", "password", "role"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for %s, got %#v", field, errs)
		}
	}
}

func TestValidatePasses(t *testing.T) {
	errs := Validate(registerRequest{Email: "a@b.io", Password: "longenough", Role: "INSTRUCTOR"})
	if errs != nil {
		t.Fatalf("expected no errors, got %#v", errs)
	}
}
