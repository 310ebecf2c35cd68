package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

// DecodeStrict — строгий разбор JSON: неизвестные поля и хвост после объекта запрещены.
func DecodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return fmt.Errorf("invalid json: trailing data")
	}
	return nil
}

// SearchParamsFromJSON — разбор и валидация параметров поиска из JSON.
func SearchParamsFromJSON(ctx context.Context, validator ports.SearchValidator, raw []byte) (domain.SearchParams, error) {
	var params domain.SearchParams
	if err := DecodeStrict(raw, &params); err != nil {
		return domain.SearchParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidSearch, err)
	}
	if err := validator.Validate(ctx, params); err != nil {
		return domain.SearchParams{}, err
	}
	return params, nil
}
