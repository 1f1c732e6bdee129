// Package pipedrive is the REST client for the Pipedrive v1 API. It is
// the record source behind every tool: fetch-all, fetch-by-id, the
// (unreliable) item search, and mutations. Every request goes through the
// shared throttle invoker and, when configured, the call budget.
package pipedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
	"github.com/crmforge/pipedex/internal/metrics"
	"github.com/crmforge/pipedex/internal/usecase/throttle"
)

// DefaultBaseURL is the public Pipedrive API endpoint.
const DefaultBaseURL = "https://api.pipedrive.com/v1"

// searchPageSize is how many hits one itemSearch call requests.
const searchPageSize = 100

// BudgetChecker gates and accounts remote calls. Check runs before
// dispatch; Record runs after every dispatched call, success or failure,
// since Pipedrive meters both.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(n int64)
}

// Config holds the client settings.
type Config struct {
	BaseURL  string
	APIToken string
	Logger   *zap.Logger
}

// Client calls the Pipedrive API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	invoker    *throttle.Invoker
	budget     BudgetChecker
	logger     *zap.Logger
}

// NewClient creates a Pipedrive client. invoker is required; budget may be
// nil (unlimited mode).
func NewClient(cfg Config, invoker *throttle.Invoker, budget BudgetChecker) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		// Transport-level timeout is a backstop; the invoker's per-call
		// deadline is the operative one.
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		token:      cfg.APIToken,
		invoker:    invoker,
		budget:     budget,
		logger:     log,
	}
}

// apiEnvelope is the uniform Pipedrive response wrapper.
type apiEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorInfo string          `json:"error_info"`
}

// FetchAll returns up to limit records of the kind, in API order.
func (c *Client) FetchAll(ctx context.Context, kind domain.EntityKind, limit int) ([]record.Record, error) {
	op := "list_" + kind.Endpoint()
	q := url.Values{"limit": {strconv.Itoa(limit)}}

	var out []record.Record
	err := c.call(ctx, op, http.MethodGet, "/"+kind.Endpoint(), q, nil, func(data json.RawMessage) error {
		return decodeRecords(data, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchByID returns one record, or domain.ErrNotFound.
func (c *Client) FetchByID(ctx context.Context, kind domain.EntityKind, id int64) (record.Record, error) {
	op := "get_" + string(kind)
	path := fmt.Sprintf("/%s/%d", kind.Endpoint(), id)

	var out record.Record
	err := c.call(ctx, op, http.MethodGet, path, nil, nil, func(data json.RawMessage) error {
		return decodeRecord(data, &out)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// RemoteSearch runs the itemSearch endpoint for the term. Known to be
// unreliable: an empty result does not mean the data is absent.
func (c *Client) RemoteSearch(ctx context.Context, kind domain.EntityKind, term string) ([]record.Record, error) {
	q := url.Values{
		"term":       {term},
		"item_types": {string(kind)},
		"limit":      {strconv.Itoa(searchPageSize)},
	}

	var out []record.Record
	err := c.call(ctx, "item_search", http.MethodGet, "/itemSearch", q, nil, func(data json.RawMessage) error {
		var wrapper struct {
			Items []struct {
				ResultScore float64       `json:"result_score"`
				Item        record.Record `json:"item"`
			} `json:"items"`
		}
		if len(data) == 0 || string(data) == "null" {
			return nil
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return fmt.Errorf("decode search items: %w", err)
		}
		for _, it := range wrapper.Items {
			if it.Item != nil {
				out = append(out, it.Item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a record of the kind with the given fields.
func (c *Client) Create(ctx context.Context, kind domain.EntityKind, fields map[string]any) (record.Record, error) {
	op := "create_" + string(kind)

	var out record.Record
	err := c.call(ctx, op, http.MethodPost, "/"+kind.Endpoint(), nil, fields, func(data json.RawMessage) error {
		return decodeRecord(data, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update modifies an existing record.
func (c *Client) Update(ctx context.Context, kind domain.EntityKind, id int64, fields map[string]any) (record.Record, error) {
	op := "update_" + string(kind)
	path := fmt.Sprintf("/%s/%d", kind.Endpoint(), id)

	var out record.Record
	err := c.call(ctx, op, http.MethodPut, path, nil, fields, func(data json.RawMessage) error {
		return decodeRecord(data, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HealthCheck verifies API availability and token validity via the
// current-user endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.call(ctx, "health", http.MethodGet, "/users/me", nil, nil, func(json.RawMessage) error {
		return nil
	})
}

// call dispatches one API request through the budget check and the
// throttle invoker, records transport metrics, and hands the decoded data
// payload to sink. Failures propagate unchanged apart from wrapping with
// operation context.
func (c *Client) call(
	ctx context.Context, op, method, path string,
	query url.Values, body map[string]any,
	sink func(json.RawMessage) error,
) error {
	if c.budget != nil {
		if err := c.budget.Check(ctx); err != nil {
			metrics.CRMErrorsTotal.WithLabelValues(op, "budget").Inc()
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return c.invoker.Do(ctx, op, func(ctx context.Context) error {
		start := time.Now()
		err := c.doHTTP(ctx, op, method, path, query, body, sink)
		duration := time.Since(start)

		if c.budget != nil {
			c.budget.Record(1)
		}

		if err != nil {
			metrics.CRMRequestsTotal.WithLabelValues(op, "error").Inc()
			return err
		}
		metrics.CRMRequestsTotal.WithLabelValues(op, "success").Inc()
		metrics.CRMRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
		return nil
	})
}

func (c *Client) doHTTP(
	ctx context.Context, op, method, path string,
	query url.Values, body map[string]any,
	sink func(json.RawMessage) error,
) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_token", c.token)
	reqURL := c.baseURL + path + "?" + query.Encode()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CRMErrorsTotal.WithLabelValues(op, "network").Inc()
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CRMErrorsTotal.WithLabelValues(op, "network").Inc()
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		metrics.CRMErrorsTotal.WithLabelValues(op, "decode").Inc()
		return fmt.Errorf("%s: API status %d with undecodable body: %w", op, resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		metrics.CRMErrorsTotal.WithLabelValues(op, "api_error").Inc()
		return fmt.Errorf("%s: API error %d: %s: %w",
			op, resp.StatusCode, apiMessage(env), domain.ErrRemoteUnavailable)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		metrics.CRMErrorsTotal.WithLabelValues(op, "api_error").Inc()
		c.logger.Warn("pipedrive API rejected request",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiMessage(env)),
		)
		return fmt.Errorf("%s: API error %d: %s", op, resp.StatusCode, apiMessage(env))
	}

	return sink(env.Data)
}

// apiMessage extracts the most useful human-readable text from an error
// envelope.
func apiMessage(env apiEnvelope) string {
	if env.Error != "" && env.ErrorInfo != "" {
		return env.Error + " (" + env.ErrorInfo + ")"
	}
	if env.Error != "" {
		return env.Error
	}
	return "unknown error"
}

func decodeRecords(data json.RawMessage, out *[]record.Record) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode records: %w", err)
	}
	return nil
}

func decodeRecord(data json.RawMessage, out *record.Record) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
