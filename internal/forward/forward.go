// Package forward — доставка заявок в дашборд дилера по HTTP.
package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

// DefaultTimeout — таймаут одного POST в дашборд.
const DefaultTimeout = 5 * time.Second

// ErrNoIngestURL — адрес приёма заявок не задан.
var ErrNoIngestURL = errors.New("dashboard ingest url is not set")

var (
	_ ports.LeadForwarder = (*HTTPForwarder)(nil)
	_ ports.LeadForwarder = NoopForwarder{}
)

// HTTPForwarder — POST JSON в /api/ingest/lead с bearer-токеном.
type HTTPForwarder struct {
	url     string
	token   string
	timeout time.Duration
	http    *http.Client
}

func NewHTTPForwarder(ingestURL, token string, timeout time.Duration) (*HTTPForwarder, error) {
	ingestURL = strings.TrimSpace(ingestURL)
	if ingestURL == "" {
		return nil, ErrNoIngestURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPForwarder{
		url:     ingestURL,
		token:   token,
		timeout: timeout,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

// Forward — ответ вне 2xx считается ошибкой.
func (f *HTTPForwarder) Forward(ctx context.Context, lead domain.ForwardedLead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("post lead: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("dashboard responded %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}

// NoopForwarder — пересылка не настроена; заявка только остаётся в локальном хранилище.
type NoopForwarder struct {
	Log ports.Logger
}

func (n NoopForwarder) Forward(ctx context.Context, lead domain.ForwardedLead) error {
	if n.Log != nil {
		n.Log.Warnf(ctx, "lead forwarding not configured lead_id=%s", lead.LeadID)
	}
	return nil
}
