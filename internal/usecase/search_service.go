package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

// FallbackPolicy — поведение поиска при отказе апстрима.
type FallbackPolicy string

const (
	// FallbackError — вернуть типизированную ошибку.
	FallbackError FallbackPolicy = "error"
	// FallbackStatic — вернуть отфильтрованный встроенный каталог (source=fallback).
	FallbackStatic FallbackPolicy = "static"
)

// DefaultSearchTimeout — общий лимит оркестратора на вызов апстрима.
const DefaultSearchTimeout = 5 * time.Second

// SearchOptions — настройки оркестратора поиска.
type SearchOptions struct {
	Timeout  time.Duration
	Fallback FallbackPolicy
	// Catalog — источник данных для FallbackStatic.
	Catalog func(domain.SearchParams) domain.SearchResult
}

// SearchService — оркестратор поиска: валидация → кэш → апстрим → кэш.
type SearchService struct {
	searcher  ports.VehicleSearcher // nil — апстрим не сконфигурирован
	cache     ports.SearchCache
	validator ports.SearchValidator
	log       ports.Logger
	timeout   time.Duration
	fallback  FallbackPolicy
	catalog   func(domain.SearchParams) domain.SearchResult
}

// NewSearchService — DI-конструктор. searcher может быть nil.
func NewSearchService(
	searcher ports.VehicleSearcher,
	cache ports.SearchCache,
	validator ports.SearchValidator,
	log ports.Logger,
	opts SearchOptions,
) *SearchService {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	fallback := opts.Fallback
	if fallback != FallbackStatic || opts.Catalog == nil {
		fallback = FallbackError
	}
	return &SearchService{
		searcher:  searcher,
		cache:     cache,
		validator: validator,
		log:       log,
		timeout:   timeout,
		fallback:  fallback,
		catalog:   opts.Catalog,
	}
}

// SearchFromArgs — разобрать аргументы инструмента и выполнить поиск.
func (s *SearchService) SearchFromArgs(ctx context.Context, raw json.RawMessage) (domain.SearchParams, domain.SearchOutcome, error) {
	var params domain.SearchParams
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, domain.SearchOutcome{}, fmt.Errorf("%w: %v", domain.ErrInvalidSearch, err)
	}
	out, err := s.Search(ctx, params)
	return params, out, err
}

// Search — выполнить поиск. Успешный результат апстрима кладётся в кэш,
// ошибки и данные встроенного каталога — никогда.
func (s *SearchService) Search(ctx context.Context, params domain.SearchParams) (domain.SearchOutcome, error) {
	start := time.Now()

	if err := s.validator.Validate(ctx, params); err != nil {
		s.log.Warnf(ctx, "search rejected err=%v", err)
		return domain.SearchOutcome{}, err
	}

	key := DeriveCacheKey(params)
	if cached, ok := s.cache.Get(ctx, key); ok {
		s.log.Infof(ctx, "search source=cache results=%d took=%s", len(cached.Vehicles), time.Since(start))
		return domain.SearchOutcome{Result: cached, Source: domain.SourceCache}, nil
	}

	result, err := s.callUpstream(ctx, params)
	if err != nil {
		return s.degrade(ctx, params, err, start)
	}

	result = capResult(result)
	s.cache.Set(ctx, key, result)
	s.log.Infof(ctx, "search source=upstream results=%d took=%s", len(result.Vehicles), time.Since(start))
	return domain.SearchOutcome{Result: result, Source: domain.SourceUpstream}, nil
}

// callUpstream — вызов апстрима под собственным таймаутом оркестратора.
// Таймаут срабатывает, даже если адаптер не реагирует на отмену контекста.
func (s *SearchService) callUpstream(ctx context.Context, params domain.SearchParams) (domain.SearchResult, error) {
	if s.searcher == nil {
		return domain.SearchResult{}, domain.ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type reply struct {
		result domain.SearchResult
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		r, err := s.searcher.Search(ctx, params)
		done <- reply{result: r, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(r.err, domain.ErrUpstreamTimeout) {
			return domain.SearchResult{}, fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, r.err)
		}
		return r.result, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.SearchResult{}, fmt.Errorf("%w after %s", domain.ErrUpstreamTimeout, s.timeout)
		}
		return domain.SearchResult{}, ctx.Err()
	}
}

func (s *SearchService) degrade(ctx context.Context, params domain.SearchParams, cause error, start time.Time) (domain.SearchOutcome, error) {
	if s.fallback == FallbackStatic && isDegradable(cause) {
		result := capResult(s.catalog(params))
		s.log.Warnf(ctx, "search source=fallback results=%d took=%s cause=%v", len(result.Vehicles), time.Since(start), cause)
		return domain.SearchOutcome{Result: result, Source: domain.SourceFallback}, nil
	}
	s.log.Errorf(ctx, "search failed took=%s err=%v", time.Since(start), cause)
	return domain.SearchOutcome{}, cause
}

// isDegradable — отказы апстрима, при которых допустим встроенный каталог.
// Отмену запроса клиентом каталогом не маскируем.
func isDegradable(err error) bool {
	var httpErr *domain.UpstreamHTTPError
	return errors.Is(err, domain.ErrNotConfigured) ||
		errors.Is(err, domain.ErrUpstreamTimeout) ||
		errors.Is(err, domain.ErrUpstreamProtocol) ||
		errors.As(err, &httpErr)
}

// capResult — не больше domain.MaxResults машин; totalCount не превышает лимит.
func capResult(r domain.SearchResult) domain.SearchResult {
	if len(r.Vehicles) > domain.MaxResults {
		r.Vehicles = r.Vehicles[:domain.MaxResults]
	}
	if r.TotalCount > domain.MaxResults {
		r.TotalCount = domain.MaxResults
	}
	if r.Vehicles == nil {
		r.Vehicles = []domain.Vehicle{}
	}
	return r
}
