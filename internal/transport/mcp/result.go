package mcp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Content — текстовый блок результата инструмента.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Component — встраиваемый виджет.
type Component struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// ToolResult — результат tools/call.
type ToolResult struct {
	Content           []Content   `json:"content"`
	StructuredContent any         `json:"structuredContent,omitempty"`
	Components        []Component `json:"components,omitempty"`
}

func textContent(text string) []Content {
	return []Content{{Type: "text", Text: text}}
}

func iframe(u string) []Component {
	return []Component{{Type: "iframe", URL: u}}
}

var errBadResult = errors.New("malformed tool result")

// ValidateToolResult — проверка формы результата: непустой текстовый content,
// iframe-компоненты с абсолютными URL; для виджетов компоненты обязательны.
func ValidateToolResult(r ToolResult, requireComponents bool) error {
	if len(r.Content) == 0 {
		return fmt.Errorf("%w: empty content", errBadResult)
	}
	for i, c := range r.Content {
		if c.Type != "text" {
			return fmt.Errorf("%w: content[%d] type %q", errBadResult, i, c.Type)
		}
	}
	if requireComponents && len(r.Components) == 0 {
		return fmt.Errorf("%w: components required", errBadResult)
	}
	for i, c := range r.Components {
		if c.Type != "iframe" {
			return fmt.Errorf("%w: components[%d] type %q", errBadResult, i, c.Type)
		}
		if !isAbsoluteURL(c.URL) {
			return fmt.Errorf("%w: components[%d] url %q is not absolute", errBadResult, i, c.URL)
		}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
