package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Gunvolt24/autoagent/internal/usecase"
	"github.com/Gunvolt24/autoagent/pkg/validate"
)

// validate-search — проверка параметров поиска: для каждой валидной записи печатает ключ кэша.
// Без -in читает JSONL из stdin.
func main() {
	inputPath := flag.String("in", "", "path to input (.json or .jsonl); stdin when empty")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	flag.Parse()

	ctx := context.Background()
	format := validate.InputFormat(*formatStr)

	var (
		summary validate.Summary
		err     error
	)
	if *inputPath == "" {
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
		summary, err = validate.ValidateReader(ctx, validate.NewSearchValidator(), usecase.DeriveCacheKey, os.Stdin, format, os.Stdout)
	} else {
		summary, err = validate.ValidateFile(ctx, validate.NewSearchValidator(), usecase.DeriveCacheKey, *inputPath, format, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
