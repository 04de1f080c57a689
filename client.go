// Package solrq is a small Solr client. It talks to the JSON Request API
// exclusively and ships, in the lucene subpackage, a grammar-driven sanitizer
// for untrusted Lucene-style query input.
package solrq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/solrq/solrq/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Client is the solrq SDK entry point. It is scoped to a single Solr core or
// collection URL and is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
	metrics *metrics.ClientMetrics
}

// New creates a Client for the given core URL, e.g.
// "http://localhost:8983/solr/sources".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("solrq: server URL required")
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o(cfg)
	}

	httpc := cfg.httpClient
	if httpc == nil {
		httpc = &http.Client{Timeout: cfg.timeout}
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		logger:  logger,
	}
	if cfg.registerer != nil {
		m, err := metrics.NewClientMetrics(cfg.registerer)
		if err != nil {
			return nil, fmt.Errorf("solrq: register metrics: %w", err)
		}
		c.metrics = m
	}
	return c, nil
}

// Search posts a JSON Request API query. The handler defaults to /select and
// may be overridden with a single variadic value.
func (c *Client) Search(ctx context.Context, req *JSONRequest, handler ...string) (*Results, error) {
	h := "/select"
	if len(handler) > 0 && handler[0] != "" {
		h = handler[0]
	}
	env, err := c.post(ctx, h, req)
	if err != nil {
		return nil, err
	}
	return newResults(env), nil
}

// Get fetches a single document by ID through the realtime /get handler,
// which sees uncommitted updates. It returns a nil Document when the ID does
// not exist.
func (c *Client) Get(ctx context.Context, docID string, fields ...string) (Document, error) {
	req := &JSONRequest{Params: map[string]any{"id": docID}}
	if len(fields) > 0 {
		req.Fields = fields
	}
	env, err := c.post(ctx, "/get", req)
	if err != nil {
		return nil, err
	}
	return env.Doc, nil
}

// Add indexes documents through the /update handler. Visibility of the new
// documents follows the server's commit settings.
func (c *Client) Add(ctx context.Context, docs []Document) error {
	_, err := c.post(ctx, "/update", docs)
	return err
}

// Delete removes the documents matching query and commits in the same update,
// so deleted documents do not linger in results.
func (c *Client) Delete(ctx context.Context, query string) error {
	body := map[string]any{
		"delete": map[string]any{"query": query},
		"commit": map[string]any{},
	}
	_, err := c.post(ctx, "/update", body)
	return err
}

// Ping checks connectivity with a zero-row catch-all query.
func (c *Client) Ping(ctx context.Context) error {
	req := &JSONRequest{Query: "*:*", Params: map[string]any{"rows": 0}}
	_, err := c.post(ctx, "/select", req)
	return err
}

func (c *Client) post(ctx context.Context, handler string, payload any) (*envelope, error) {
	url := c.baseURL + "/" + strings.TrimLeft(handler, "/")

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("solrq: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("solrq: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.httpc.Do(httpReq)
	if err != nil {
		c.observe(handler, 0, time.Since(start))
		return nil, &SolrError{URL: url, Reason: "connection failed", cause: err}
	}
	defer func() { _ = res.Body.Close() }()
	c.observe(handler, res.StatusCode, time.Since(start))

	if res.StatusCode != http.StatusOK {
		return nil, &SolrError{URL: url, Status: res.StatusCode, Reason: res.Status}
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, &SolrError{URL: url, Reason: "malformed response", cause: err}
	}

	c.logger.Debug("solr request",
		zap.String("handler", handler),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &env, nil
}

func (c *Client) observe(handler string, status int, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.Observe(handler, status, elapsed)
	}
}
