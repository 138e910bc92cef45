package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/travel-console/internal/config"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/travel-console/pkg/errors"
	"github.com/jwalitptl/travel-console/pkg/metrics"
)

// OnBehalfOfHeader carries the operator a notification call is made for.
const OnBehalfOfHeader = "X-On-Behalf-Of"

const maxErrorBody = 4 << 10

// Client talks to the travel REST API.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	cb      *circuitbreaker.CircuitBreaker
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func New(cfg config.UpstreamConfig, logger zerolog.Logger, m *metrics.Metrics) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger = logger.With().Str("component", "upstream").Logger()
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "upstream",
		MaxFailures: cfg.BreakerFailures,
		Timeout:     cfg.BreakerCoolDown,
		IsFailure: func(err error) bool {
			// Only transport failures and 5xx trip the breaker.
			return apperrors.IsCode(err, apperrors.ErrUpstream)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", string(from)).Str("to", string(to)).Msg("Circuit breaker state changed")
			if m != nil {
				open := 0.0
				if to == circuitbreaker.StateOpen {
					open = 1
				}
				m.BreakerState.WithLabelValues(name).Set(open)
			}
		},
	})

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
		logger:  logger,
		metrics: m,
	}, nil
}

// request describes one call to the travel API.
type request struct {
	method     string
	path       string
	query      url.Values
	onBehalfOf string
	body       interface{}
	out        interface{}
}

func (c *Client) do(ctx context.Context, r request) error {
	resource := resourceLabel(r.path)
	start := time.Now()

	var status int
	err := c.cb.Execute(func() error {
		var err error
		status, err = c.send(ctx, r)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		err = apperrors.Upstream("travel API temporarily unavailable", err)
	}

	if c.metrics != nil {
		label := strconv.Itoa(status)
		if status == 0 {
			label = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(resource, r.method, label).Inc()
		c.metrics.UpstreamLatency.WithLabelValues(resource, r.method).Observe(time.Since(start).Seconds())
	}

	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}
	event.
		Str("method", r.method).
		Str("path", r.path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("Upstream request")

	return err
}

func (c *Client) send(ctx context.Context, r request) (int, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return 0, apperrors.Internal(fmt.Errorf("failed to marshal request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if r.onBehalfOf != "" {
		req.Header.Set(OnBehalfOfHeader, r.onBehalfOf)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apperrors.Upstream("travel API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp)
	}

	if r.out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return resp.StatusCode, apperrors.Upstream("invalid travel API response", err)
	}
	return resp.StatusCode, nil
}

// decodeError maps a non-2xx response onto an AppError.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	message := http.StatusText(resp.StatusCode)
	if json.Unmarshal(raw, &payload) == nil {
		for _, m := range []string{payload.Message, payload.Error, payload.Detail} {
			if m != "" {
				message = m
				break
			}
		}
	}
	cause := fmt.Errorf("travel API returned %d", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.BadRequest(message, cause)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(cause)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{Code: apperrors.ErrNotFound, Message: message, Err: cause}
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(message, cause)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.Upstream(message, cause)
	default:
		return apperrors.Internal(cause)
	}
}

func resourceLabel(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

func listQuery(params model.ListParams) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("page_size", strconv.Itoa(params.PageSize))
	if params.SearchTerm != "" {
		q.Set("search", params.SearchTerm)
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	if params.Field != "" {
		q.Set("sort_field", params.Field)
		q.Set("sort_dir", params.Dir)
	}
	return q
}

// List fetches one page of a resource collection.
func List[T any](ctx context.Context, c *Client, resource string, params model.ListParams) (*model.ListResponse[T], error) {
	params = params.Normalize()
	var out model.ListResponse[T]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/" + resource,
		query:  listQuery(params),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return &out, nil
}

// Get fetches a single resource record.
func Get[T any](ctx context.Context, c *Client, resource, id string) (*T, error) {
	var out T
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/" + resource + "/" + id,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
