// Package marketcheck — адаптер поиска объявлений MarketCheck.
package marketcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/pkg/metrics"
)

const (
	searchPath = "/v2/search/car/active"
	pageSize   = 20

	// DefaultTimeout — таймаут одного HTTP-запроса к апстриму.
	DefaultTimeout = 2 * time.Second

	// maxBodyBytes — ограничение на размер ответа апстрима.
	maxBodyBytes = 8 << 20
)

var _ ports.VehicleSearcher = (*Client)(nil)

// Config — параметры подключения к MarketCheck.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client — HTTP-клиент MarketCheck.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	log     ports.Logger
}

// NewFromConfig — клиент из конфигурации; без API-ключа возвращает domain.ErrNotConfigured.
func NewFromConfig(cfg Config, log ports.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrNotConfigured
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("marketcheck base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:     log,
	}, nil
}

// Search — первая страница объявлений (не больше 20) под собственным таймаутом клиента.
func (c *Client) Search(ctx context.Context, params domain.SearchParams) (domain.SearchResult, error) {
	start := time.Now()
	defer func() { metrics.UpstreamDuration.Observe(time.Since(start).Seconds()) }()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.searchURL(params), nil)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SearchResult{}, c.transportError(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		metrics.UpstreamRequests.WithLabelValues("http_error").Inc()
		c.log.Warnf(ctx, "marketcheck error status=%d", resp.StatusCode)
		return domain.SearchResult{}, &domain.UpstreamHTTPError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		if isTimeout(reqCtx, err) {
			metrics.UpstreamRequests.WithLabelValues("timeout").Inc()
			return domain.SearchResult{}, fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamTimeout, err)
		}
		metrics.UpstreamRequests.WithLabelValues("protocol").Inc()
		c.log.Warnf(ctx, "marketcheck malformed body err=%v", err)
		return domain.SearchResult{}, fmt.Errorf("%w: %v", domain.ErrUpstreamProtocol, err)
	}
	if body.Listings == nil {
		metrics.UpstreamRequests.WithLabelValues("protocol").Inc()
		return domain.SearchResult{}, fmt.Errorf("%w: listings missing", domain.ErrUpstreamProtocol)
	}

	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	res, skipped := normalize(body)
	if skipped > 0 {
		c.log.Warnf(ctx, "marketcheck skipped non-object listings count=%d", skipped)
	}
	return res, nil
}

// normalize — первые 20 объявлений; элементы listings, не являющиеся объектами, пропускаются.
func normalize(body searchResponse) (domain.SearchResult, int) {
	listings := *body.Listings
	if len(listings) > pageSize {
		listings = listings[:pageSize]
	}
	vehicles := make([]domain.Vehicle, 0, len(listings))
	skipped := 0
	for _, raw := range listings {
		l, ok := decodeListing(raw)
		if !ok {
			skipped++
			continue
		}
		vehicles = append(vehicles, l.toVehicle())
	}
	total := min(max(int(body.NumFound), 0), pageSize)
	return domain.SearchResult{Vehicles: vehicles, TotalCount: total}, skipped
}

// searchURL — URL поиска; api_key передаётся в query, как требует MarketCheck.
func (c *Client) searchURL(p domain.SearchParams) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	switch p.Condition {
	case domain.ConditionNew, domain.ConditionUsed:
		q.Set("car_type", string(p.Condition))
	}
	if p.MaxPrice != nil {
		q.Set("price_range", "0-"+formatNumber(*p.MaxPrice))
	}
	if p.Make != nil && *p.Make != "" {
		q.Set("make", *p.Make)
	}
	if p.Model != nil && *p.Model != "" {
		q.Set("model", *p.Model)
	}
	if p.RadiusMiles != nil {
		q.Set("radius", formatNumber(*p.RadiusMiles))
	}
	q.Set("page", "1")
	q.Set("pageSize", strconv.Itoa(pageSize))
	return c.baseURL + searchPath + "?" + q.Encode()
}

func (c *Client) transportError(ctx, reqCtx context.Context, err error) error {
	if isTimeout(reqCtx, err) {
		metrics.UpstreamRequests.WithLabelValues("timeout").Inc()
		c.log.Warnf(ctx, "marketcheck timeout after %s", c.timeout)
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, redact(err))
	}
	metrics.UpstreamRequests.WithLabelValues("network").Inc()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.log.Warnf(ctx, "marketcheck network error err=%v", redact(err))
	return &domain.UpstreamHTTPError{StatusText: "network error", Err: redact(err)}
}

func isTimeout(reqCtx context.Context, err error) bool {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// redact — убрать URL запроса (в нём api_key) из ошибки транспорта.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
