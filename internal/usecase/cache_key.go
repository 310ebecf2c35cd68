package usecase

import (
	"encoding/json"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

// DeriveCacheKey — канонический ключ кэша: JSON-объект с отсортированными именами полей.
// Незаданные необязательные поля в ключ не попадают.
func DeriveCacheKey(p domain.SearchParams) string {
	fields := map[string]any{
		"location":  p.Location,
		"condition": p.Condition,
	}
	if p.MaxPrice != nil {
		fields["maxPrice"] = *p.MaxPrice
	}
	if p.Make != nil {
		fields["make"] = *p.Make
	}
	if p.Model != nil {
		fields["model"] = *p.Model
	}
	if p.RadiusMiles != nil {
		fields["radiusMiles"] = *p.RadiusMiles
	}

	// encoding/json сортирует ключи map; для строк и чисел ошибка невозможна.
	raw, _ := json.Marshal(fields)
	return string(raw)
}
