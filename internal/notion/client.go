package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/retry"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Defaults for the Notion API
const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"
	// MaxPageSize is the largest page_size the query endpoint is asked for
	MaxPageSize    = 20
	requestTimeout = 30 * time.Second
)

// Client is a record store backed by a Notion database
type Client struct {
	api        *notionapi.Client
	databaseID notionapi.DatabaseID
	http       *http.Client
	policy     retry.Policy
	logger     *zap.Logger

	mu     sync.Mutex
	schema Schema
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryPolicy replaces the default retry policy
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient creates a Notion client for one database
func NewClient(cfg config.Notion, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.Token == "" || cfg.DatabaseID == "" {
		return nil, &Error{Message: "token and database id are required"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		http:       &http.Client{Timeout: requestTimeout},
		policy:     retry.DefaultPolicy,
		logger:     logger.Named("notion"),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := c.http
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" && base != DefaultBaseURL {
		u, err := url.Parse(base)
		if err != nil || u.Host == "" {
			return nil, &Error{Message: fmt.Sprintf("invalid base url %q", cfg.BaseURL), Cause: err}
		}
		next := hc.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		rebased := *hc
		rebased.Transport = rebase{base: u, next: next}
		hc = &rebased
	}

	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	// rate limits are retried by the policy below, not inside the SDK
	c.api = notionapi.NewClient(notionapi.Token(cfg.Token),
		notionapi.WithHTTPClient(hc),
		notionapi.WithVersion(version),
		notionapi.WithRetry(1))

	c.policy.Retryable = retryable
	c.policy.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.logger.Warn("retrying notion request",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	return c, nil
}

// retryable treats rate limits, server errors and transport failures as transient
func retryable(err error) bool {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	return true
}

// Schema returns the database's property definitions, fetching them once
func (c *Client) Schema(ctx context.Context) (Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schema != nil {
		return c.schema, nil
	}

	var db *notionapi.Database
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		db, err = c.api.Database.Get(ctx, c.databaseID)
		return err
	})
	if err != nil {
		return nil, &Error{Message: "failed to fetch database schema", Cause: err}
	}

	schema := make(Schema, len(db.Properties))
	for name, prop := range db.Properties {
		schema[name] = PropertySchema{
			ID:   string(prop.GetID()),
			Name: name,
			Type: string(prop.GetType()),
		}
	}
	c.schema = schema
	return schema, nil
}

// FetchByStatus returns up to limit pages whose status property equals status, oldest first
func (c *Client) FetchByStatus(ctx context.Context, status string, limit int) ([]types.JobRecord, error) {
	schema, err := c.Schema(ctx)
	if err != nil {
		return nil, err
	}
	prop, ok := schema.Resolve(PropStatus)
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("database has no %q property", PropStatus)}
	}

	filter := &notionapi.PropertyFilter{Property: prop.Name}
	switch prop.Type {
	case TypeStatus:
		filter.Status = &notionapi.StatusFilterCondition{Equals: status}
	case TypeSelect:
		filter.Select = &notionapi.SelectFilterCondition{Equals: status}
	default:
		return nil, &Error{Message: fmt.Sprintf("property %q has unsupported type %q", prop.Name, prop.Type)}
	}

	req := &notionapi.DatabaseQueryRequest{
		Filter:   filter,
		PageSize: min(max(limit, 1), MaxPageSize),
		Sorts: []notionapi.SortObject{{
			Timestamp: "created_time",
			Direction: "ascending",
		}},
	}

	var resp *notionapi.DatabaseQueryResponse
	err = retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		resp, err = c.api.Database.Query(ctx, c.databaseID, req)
		return err
	})
	if err != nil {
		return nil, &Error{Message: "failed to query database", Cause: err}
	}

	records := make([]types.JobRecord, 0, len(resp.Results))
	for _, page := range resp.Results {
		records = append(records, Record(page))
	}
	return records, nil
}

// Update writes a run result to a page. Properties the database lacks are logged and skipped.
func (c *Client) Update(ctx context.Context, id string, update types.RecordUpdate) error {
	_, err := c.UpdateWithReport(ctx, id, update)
	return err
}

// UpdateWithReport is Update returning the names of the properties that were skipped
func (c *Client) UpdateWithReport(ctx context.Context, id string, update types.RecordUpdate) ([]string, error) {
	schema, err := c.Schema(ctx)
	if err != nil {
		return nil, err
	}

	props, skipped := BuildProperties(schema, update)
	if len(skipped) > 0 {
		c.logger.Warn("skipping properties missing from database",
			zap.String("page", id),
			zap.Strings("properties", skipped))
	}
	if len(props) == 0 {
		return skipped, nil
	}

	req := &notionapi.PageUpdateRequest{Properties: props}
	err = retry.Do(ctx, c.policy, func(ctx context.Context) error {
		_, err := c.api.Page.Update(ctx, notionapi.PageID(id), req)
		return err
	})
	if err != nil {
		return skipped, &Error{Message: fmt.Sprintf("failed to update page %s", id), Cause: err}
	}
	return skipped, nil
}

// rebase points API requests at another origin, such as a proxy
type rebase struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebase) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.base.Scheme
	out.URL.Host = t.base.Host
	out.URL.Path = strings.TrimRight(t.base.Path, "/") + req.URL.Path
	out.Host = t.base.Host
	return t.next.RoundTrip(out)
}
