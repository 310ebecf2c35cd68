package validate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

// KeyFunc — каноническое представление валидных параметров для вывода.
type KeyFunc func(domain.SearchParams) string

// ValidateJSONLStream — читает JSONL из reader’а, валидирует каждую строку
// и для валидных пишет key(params) отдельной строкой. Пустые строки пропускаются.
func ValidateJSONLStream(ctx context.Context, validator ports.SearchValidator, key KeyFunc, ir io.Reader, ow io.Writer) (Summary, error) {
	var res Summary

	scanner := bufio.NewScanner(ir)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(strings.TrimSpace(string(lineBytes))) == 0 {
			continue
		}

		params, err := SearchParamsFromJSON(ctx, validator, lineBytes)
		if err != nil {
			res.Invalid++
			continue
		}

		if _, err := io.WriteString(ow, key(params)+"\n"); err != nil {
			return res, fmt.Errorf("write valid line: %w", err)
		}
		res.Valid++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}
