package validate

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

var _ ports.LeadValidator = (*LeadValidator)(nil)

// vinPattern — VIN без букв I, O, Q; регистр не важен.
var vinPattern = regexp.MustCompile(`(?i)^[A-HJ-NPR-Z0-9]{11,17}$`)

// IsVIN — похожа ли строка на VIN.
func IsVIN(s string) bool { return vinPattern.MatchString(s) }

// LeadValidator — валидация заявки; ошибки оборачивают domain.ErrInvalidLead.
type LeadValidator struct{}

func NewLeadValidator() *LeadValidator { return &LeadValidator{} }

func (v *LeadValidator) Validate(_ context.Context, req domain.LeadRequest) error {
	if strings.TrimSpace(req.VehicleID) == "" {
		return fmt.Errorf("%w: vehicleId обязателен", domain.ErrInvalidLead)
	}
	if !IsVIN(req.VIN) {
		return fmt.Errorf("%w: vin некорректен", domain.ErrInvalidLead)
	}
	if strings.TrimSpace(req.User.Name) == "" {
		return fmt.Errorf("%w: user.name обязателен", domain.ErrInvalidLead)
	}
	if req.User.Email == "" {
		return fmt.Errorf("%w: user.email обязателен", domain.ErrInvalidLead)
	}
	if addr, err := mail.ParseAddress(req.User.Email); err != nil || addr.Address != req.User.Email {
		return fmt.Errorf("%w: user.email некорректен", domain.ErrInvalidLead)
	}
	if !req.Consent {
		return fmt.Errorf("%w: требуется согласие на передачу контактов", domain.ErrInvalidLead)
	}
	return nil
}
