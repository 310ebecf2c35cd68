package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/autoagent/internal/ports"
)

// InputFormat — формат входа validate-search.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// Summary — итог проверки: сколько записей прошло и сколько отвергнуто.
type Summary struct {
	Valid   int
	Invalid int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d valid / %d invalid", s.Valid, s.Invalid)
}

// FormatForPath — формат по расширению файла; всё, кроме .jsonl, читается как JSON.
func FormatForPath(path string) InputFormat {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return FormatJSONL
	}
	return FormatJSON
}

// ValidateFile — открыть файл и проверить его как JSON или JSONL (FormatAuto — по расширению).
func ValidateFile(ctx context.Context, validator ports.SearchValidator, key KeyFunc, path string, format InputFormat, w io.Writer) (Summary, error) {
	if format == FormatAuto {
		format = FormatForPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ValidateReader(ctx, validator, key, f, format, w)
}

// ValidateReader — проверить поток. Для каждой валидной записи в w пишется key(params).
// Одиночный JSON с ошибкой возвращает ошибку валидации вместе с Summary{Invalid: 1}.
func ValidateReader(ctx context.Context, validator ports.SearchValidator, key KeyFunc, r io.Reader, format InputFormat, w io.Writer) (Summary, error) {
	switch format {
	case FormatJSONL:
		return ValidateJSONLStream(ctx, validator, key, r, w)
	case FormatJSON:
		raw, err := io.ReadAll(r)
		if err != nil {
			return Summary{}, fmt.Errorf("read input: %w", err)
		}
		params, err := SearchParamsFromJSON(ctx, validator, raw)
		if err != nil {
			return Summary{Invalid: 1}, err
		}
		if _, err := fmt.Fprintln(w, key(params)); err != nil {
			return Summary{}, fmt.Errorf("write key: %w", err)
		}
		return Summary{Valid: 1}, nil
	default:
		return Summary{}, fmt.Errorf("unsupported format: %s", format)
	}
}
