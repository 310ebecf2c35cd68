package validate

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

// Проверка, что SearchValidator удовлетворяет интерфейсу SearchValidator.
var _ ports.SearchValidator = (*SearchValidator)(nil)

// MaxRadiusMiles — максимальный радиус поиска.
const MaxRadiusMiles = 500

// SearchValidator — валидация параметров поиска.
// Возвращает domain.ErrInvalidSearch (с обёрнутой причиной) при любой проблеме.
type SearchValidator struct{}

func NewSearchValidator() *SearchValidator { return &SearchValidator{} }

// Validate — проверяет параметры поиска до обращения к кэшу и апстриму.
func (v *SearchValidator) Validate(_ context.Context, p domain.SearchParams) error {
	if strings.TrimSpace(p.Location) == "" {
		return fmt.Errorf("%w: location обязателен", domain.ErrInvalidSearch)
	}
	switch p.Condition {
	case domain.ConditionNew, domain.ConditionUsed:
	default:
		return fmt.Errorf("%w: condition должен быть new или used", domain.ErrInvalidSearch)
	}
	if p.MaxPrice != nil && !(isFinite(*p.MaxPrice) && *p.MaxPrice > 0) {
		return fmt.Errorf("%w: maxPrice должен быть положительным", domain.ErrInvalidSearch)
	}
	if p.RadiusMiles != nil && !(isFinite(*p.RadiusMiles) && *p.RadiusMiles > 0 && *p.RadiusMiles <= MaxRadiusMiles) {
		return fmt.Errorf("%w: radiusMiles должен быть в диапазоне (0, %d]", domain.ErrInvalidSearch, MaxRadiusMiles)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
