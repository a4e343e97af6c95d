package graphql

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

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/logger"
)

const (
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
	maxBodyBytes   = 32 << 20
)

// ResponseError lists the errors a GraphQL response carried.
// The request itself succeeded.
type ResponseError struct {
	Messages []string
}

func (e *ResponseError) Error() string {
	return "graphql: " + strings.Join(e.Messages, domain.DataErrorSeparator)
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql: HTTP %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether a failed attempt may succeed if repeated.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500
	}
	var respErr *ResponseError
	return !errors.As(err, &respErr)
}

// Client sends GraphQL queries to one endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   failsafe.Executor[[]byte]
	log        *logger.Logger
}

// NewClient creates a client from API settings.
// A non-empty token is sent as a bearer token.
func NewClient(settings domain.APISettings) (*Client, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("graphql endpoint: %w", domain.ErrConfiguration)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if settings.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.Token, TokenType: "Bearer"}),
			Base:   transport,
		}
	}

	limit := rate.Inf
	if settings.Rate > 0 {
		limit = rate.Limit(settings.Rate)
	}

	maxRetries := max(settings.MaxRetries, 0)
	retry := retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool { return retryable(err) }).
		WithBackoff(retryBaseDelay, retryMaxDelay).
		WithMaxRetries(maxRetries).
		WithJitterFactor(0.1).
		Build()

	return &Client{
		endpoint:   settings.Endpoint,
		httpClient: &http.Client{Transport: transport, Timeout: settings.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		executor:   failsafe.With[[]byte](retry),
		log:        logger.For("graphql"),
	}, nil
}

// Endpoint returns the GraphQL endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do runs q with variables and decodes the response data into out.
// GraphQL errors in the response are returned as *ResponseError, after
// any data that came with them has been decoded.
func (c *Client) Do(ctx context.Context, q Query, variables map[string]any, out any) error {
	payload, err := json.Marshal(request{Query: q.String(), OperationName: q.Name(), Variables: variables})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	attempt := 0
	body, err := c.executor.WithContext(ctx).Get(func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			c.log.Debug("%s: attempt %d", q.Name(), attempt)
		}
		return c.post(ctx, payload)
	})
	if err != nil {
		return unwrapExceeded(err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Data) > 0 && string(resp.Data) != "null" && out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			messages[i] = e.Message
		}
		return &ResponseError{Messages: messages}
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// unwrapExceeded returns the last HTTP status error when retries ran out.
func unwrapExceeded(err error) error {
	var status *StatusError
	if errors.As(err, &status) {
		return status
	}
	return err
}
