package validate

import (
	"testing"

	"cashloan/internal/domain"
	"cashloan/internal/domain/models"
)

func TestContactUpdateMessages(t *testing.T) {
	cases := []struct {
		name string
		in   models.ContactUpdate
		want string
	}{
		{"missing last name", models.ContactUpdate{FirstName: "Jane", Phone: "09171234567"}, "First name and last name are required"},
		{"short phone", models.ContactUpdate{FirstName: "Jane", LastName: "Doe", Phone: "0917123"}, "Phone number must be exactly 11 digits"},
		{"letters in phone", models.ContactUpdate{FirstName: "Jane", LastName: "Doe", Phone: "0917123456a"}, "Phone number must be exactly 11 digits"},
		{"empty phone", models.ContactUpdate{FirstName: "Jane", LastName: "Doe"}, "Phone number must be exactly 11 digits"},
	}
	for _, c := range cases {
		err := Struct(c.in)
		if !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", c.name, err)
		}
		if err.Error() != c.want {
			t.Fatalf("%s: got %q want %q", c.name, err.Error(), c.want)
		}
	}
}

func TestContactUpdateValid(t *testing.T) {
	in := models.ContactUpdate{FirstName: " Jane ", LastName: "Doe", Phone: " 09171234567 ", Address: "Manila"}
	in.Normalize()
	if err := Struct(in); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestWhitespaceNamesFailAfterNormalize(t *testing.T) {
	in := models.ContactUpdate{FirstName: "   ", LastName: "Doe", Phone: "09171234567"}
	in.Normalize()
	if err := Struct(in); err == nil {
		t.Fatalf("whitespace-only first name should fail")
	}
}

func TestApproveRequest(t *testing.T) {
	rate := 120.0
	err := Struct(models.ApproveRequest{ApprovedAmount: 5000, InterestRate: &rate})
	if err == nil || err.Error() != "Interest rate must be at most 100" {
		t.Fatalf("unexpected error %v", err)
	}
	err = Struct(models.ApproveRequest{})
	if err == nil || err.Error() != "Approved amount must be greater than zero" {
		t.Fatalf("unexpected error %v", err)
	}
	if err := Struct(models.ApproveRequest{ApprovedAmount: 1}); err != nil {
		t.Fatalf("minimal approve should pass: %v", err)
	}
}

func TestActivateDates(t *testing.T) {
	bad := "03/01/2025"
	if err := Struct(models.ActivateRequest{StartDate: &bad}); !domain.IsValidation(err) {
		t.Fatalf("expected date validation error, got %v", err)
	}
	good := "2025-03-01"
	if err := Struct(models.ActivateRequest{StartDate: &good, FirstPaymentDate: &good}); err != nil {
		t.Fatalf("expected valid dates: %v", err)
	}
}

func TestFields(t *testing.T) {
	err := Validator().Struct(models.ContactUpdate{})
	f := Fields(err)
	if f["first_name"] != "required" || f["phone"] != "phone11" {
		t.Fatalf("unexpected fields %v", f)
	}
}
