package validate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/pkg/validate"
)

func validLead() domain.LeadRequest {
	return domain.LeadRequest{
		VehicleID: "mc-1",
		VIN:       "4T1B11HK5KU123456",
		User: domain.LeadUser{
			Name:  "Jane Doe",
			Email: "jane@example.com",
		},
		Consent: true,
	}
}

func TestLeadValidator_Validate(t *testing.T) {
	v := validate.NewLeadValidator()
	ctx := context.Background()

	t.Run("valid lead", func(t *testing.T) {
		if err := v.Validate(ctx, validLead()); err != nil {
			t.Fatalf("expected valid lead, got: %v", err)
		}
	})

	t.Run("lowercase vin", func(t *testing.T) {
		l := validLead()
		l.VIN = strings.ToLower(l.VIN)
		if err := v.Validate(ctx, l); err != nil {
			t.Fatalf("expected lowercase vin to be accepted, got: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(l *domain.LeadRequest)
		msg    string
	}{
		{"empty vehicle", func(l *domain.LeadRequest) { l.VehicleID = "" }, "vehicleId обязателен"},
		{"missing vin", func(l *domain.LeadRequest) { l.VIN = "" }, "vin некорректен"},
		{"vin with letter O", func(l *domain.LeadRequest) { l.VIN = "4T1B11HK5KU12345O" }, "vin некорректен"},
		{"vin too short", func(l *domain.LeadRequest) { l.VIN = "4T1B11" }, "vin некорректен"},
		{"empty name", func(l *domain.LeadRequest) { l.User.Name = "" }, "user.name обязателен"},
		{"empty email", func(l *domain.LeadRequest) { l.User.Email = "" }, "user.email обязателен"},
		{"invalid email", func(l *domain.LeadRequest) { l.User.Email = "not-an-email" }, "user.email некорректен"},
		{"no consent", func(l *domain.LeadRequest) { l.Consent = false }, "согласие"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := validLead()
			tc.mutate(&l)
			err := v.Validate(ctx, l)
			if !errors.Is(err, domain.ErrInvalidLead) {
				t.Fatalf("expected ErrInvalidLead, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected error message to contain %q, got %q", tc.msg, err.Error())
			}
		})
	}
}
