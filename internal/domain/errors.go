package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSearch — некорректные параметры поиска; до кэша и апстрима не доходит.
	ErrInvalidSearch = errors.New("invalid search parameters")

	// ErrNotConfigured — не заданы учётные данные апстрима; сеть не трогаем.
	ErrNotConfigured = errors.New("marketcheck api key not configured")

	// ErrUpstreamTimeout — истёк таймаут адаптера или оркестратора.
	ErrUpstreamTimeout = errors.New("upstream request timed out")

	// ErrUpstreamProtocol — апстрим вернул ответ неожиданной формы.
	ErrUpstreamProtocol = errors.New("malformed upstream response")

	// ErrInvalidLead — заявка не прошла валидацию.
	ErrInvalidLead = errors.New("invalid lead")

	// ErrRateLimited — превышен лимит заявок с одного IP.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrIngestUnauthorized — неверный или отсутствующий токен приёма заявок.
	ErrIngestUnauthorized = errors.New("ingest unauthorized")
)

// UpstreamHTTPError — апстрим ответил не-2xx (Status == 0 — сетевой сбой).
type UpstreamHTTPError struct {
	Status     int
	StatusText string
	Err        error
}

func (e *UpstreamHTTPError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("upstream %s: %v", e.StatusText, e.Err)
		}
		return "upstream " + e.StatusText
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.StatusText)
}

func (e *UpstreamHTTPError) Unwrap() error { return e.Err }
