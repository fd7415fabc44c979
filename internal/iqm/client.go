package iqm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Client is the remote quantum computer API. Implementations must be safe
// for concurrent use.
type Client interface {
	// Architecture fetches the device description.
	Architecture(ctx context.Context) (*QuantumArchitecture, error)

	// Submit queues a run request for execution and returns the
	// server-assigned job ID.
	Submit(ctx context.Context, req *RunRequest) (uuid.UUID, error)

	// Run fetches the current state of a submitted job.
	Run(ctx context.Context, id uuid.UUID) (*RunResult, error)

	// WaitForResults polls a job until it reaches a terminal status or
	// ctx is done. A failed or aborted job is not an error here; the
	// returned RunResult carries the status.
	WaitForResults(ctx context.Context, id uuid.UUID) (*RunResult, error)
}

// DefaultPollInterval is the delay between job status queries.
const DefaultPollInterval = time.Second

// HTTPClient talks to a server over HTTPS with a static bearer token.
type HTTPClient struct {
	baseURL      string
	httpc        *http.Client
	log          *slog.Logger
	pollInterval time.Duration
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *HTTPClient) { c.log = log }
}

// WithPollInterval overrides the job polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *HTTPClient) { c.pollInterval = d }
}

// WithHTTPClient replaces the underlying transport. The token transport
// installed by NewHTTPClient is discarded; the caller owns auth.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *HTTPClient) { c.httpc = httpc }
}

// NewHTTPClient builds a client for the server at baseURL, attaching
// token as a bearer credential on every request.
func NewHTTPClient(baseURL, token string, opts ...Option) *HTTPClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	c := &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpc:        oauth2.NewClient(context.Background(), src),
		log:          slog.Default(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Architecture implements Client.
func (c *HTTPClient) Architecture(ctx context.Context) (*QuantumArchitecture, error) {
	var resp architectureResponse
	if err := c.getJSON(ctx, c.baseURL+"/quantum-architecture", &resp); err != nil {
		return nil, fmt.Errorf("fetch quantum architecture: %w", err)
	}
	return &resp.QuantumArchitecture, nil
}

// Submit implements Client.
func (c *HTTPClient) Submit(ctx context.Context, req *RunRequest) (uuid.UUID, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode run request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp SubmitResponse
	if err := c.do(httpReq, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("submit job: %w", err)
	}
	c.log.Debug("job submitted", "id", resp.ID, "circuits", len(req.Circuits), "shots", req.Shots)
	return resp.ID, nil
}

// Run implements Client.
func (c *HTTPClient) Run(ctx context.Context, id uuid.UUID) (*RunResult, error) {
	var resp RunResult
	if err := c.getJSON(ctx, c.baseURL+"/jobs/"+id.String(), &resp); err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", id, err)
	}
	return &resp, nil
}

// WaitForResults implements Client.
func (c *HTTPClient) WaitForResults(ctx context.Context, id uuid.UUID) (*RunResult, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		res, err := c.Run(ctx, id)
		if err != nil {
			return nil, err
		}
		if StatusTerminal(res.Status) {
			return res, nil
		}
		c.log.Debug("job pending", "id", id, "status", res.Status)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
