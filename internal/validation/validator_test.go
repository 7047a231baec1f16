package validation

import (
	"errors"
	"testing"
)

type sampleInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func TestValidateStructOK(t *testing.T) {
	in := sampleInput{Email: "dana@example.com", Code: "123456"}
	if err := ValidateStruct(&in); err != nil {
		t.Fatalf("ValidateStruct: %v", err)
	}
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	in := sampleInput{Email: "not-an-email", Code: "12ab"}
	err := ValidateStruct(&in)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	fields := verr.Fields()
	if _, ok := fields["email"]; !ok {
		t.Errorf("missing email field error: %v", fields)
	}
	if _, ok := fields["code"]; !ok {
		t.Errorf("missing code field error: %v", fields)
	}
	if verr.ProblemStatus() != 422 {
		t.Errorf("ProblemStatus = %d, want 422", verr.ProblemStatus())
	}
}
