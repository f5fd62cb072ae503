package validate_test

import (
	"errors"
	"testing"

	"github.com/shashiranjanraj/kuman/pkg/validate"
)

type emailInput struct {
	Email   string `json:"email"   validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=20"`
	Message string `json:"message" validate:"required,min=3"`
	Note    string `json:"note"    validate:"nullable,min=5"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(emailInput{
		Email:   "walker@example.com",
		Subject: "Account",
		Message: "Your account was verified.",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(emailInput{})
	for _, f := range []string{"email", "subject", "message"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected %s to be required", f)
		}
	}
	if _, ok := errs["note"]; ok {
		t.Error("nullable field must not be reported when empty")
	}
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(emailInput{Email: "not-an-email", Subject: "s", Message: "hello"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
}

func TestLengthBounds(t *testing.T) {
	errs := validate.Struct(emailInput{
		Email:   "a@b.co",
		Subject: "this subject is far too long",
		Message: "hi",
		Note:    "abc",
	})
	for _, f := range []string{"subject", "message", "note"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected %s to fail its length rule", f)
		}
	}
}

func TestInAndInteger(t *testing.T) {
	type in struct {
		Role     string `json:"role"     validate:"required,in=requester|walker"`
		WalkerID string `json:"walkerId" validate:"required,integer"`
	}
	if errs := validate.Struct(in{Role: "walker", WalkerID: "12"}); validate.HasErrors(errs) {
		t.Errorf("expected pass, got %v", errs)
	}
	errs := validate.Struct(in{Role: "admin", WalkerID: "x"})
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %v", errs)
	}
}

func TestCheck(t *testing.T) {
	err := validate.Check(emailInput{})
	if !errors.Is(err, validate.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var ve *validate.Error
	if !errors.As(err, &ve) || len(ve.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", err)
	}
	if validate.Check(&emailInput{Email: "a@b.co", Subject: "s", Message: "hey"}) != nil {
		t.Error("pointer input should validate")
	}
}
