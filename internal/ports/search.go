package ports

import (
	"context"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

// SearchCache — кэш результатов поиска.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1); возврат копий.
type SearchCache interface {
	// Get — результат по ключу; (result, true) при попадании, (zero, false) при промахе/истечении.
	Get(ctx context.Context, key string) (domain.SearchResult, bool)

	// Set — сохранить/обновить результат.
	Set(ctx context.Context, key string, result domain.SearchResult)

	// Has — есть ли живая запись; не влияет на порядок вытеснения.
	Has(ctx context.Context, key string) bool
}

// VehicleSearcher — апстрим поиска машин.
type VehicleSearcher interface {
	Search(ctx context.Context, params domain.SearchParams) (domain.SearchResult, error)
}

// SearchValidator — проверка параметров поиска; ошибки оборачивают domain.ErrInvalidSearch.
type SearchValidator interface {
	Validate(ctx context.Context, params domain.SearchParams) error
}
