package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/pkg/middleware/requestid"
)

const maxResponseBytes = 10 << 20

// Outcomes recorded per registry call.
const (
	OutcomeOK      = "ok"
	OutcomeNetwork = string(KindNetwork)
	OutcomeAPI     = string(KindAPI)
	OutcomeDecode  = string(KindDecode)
)

// Recorder receives per-call instrumentation.
type Recorder interface {
	ObserveRegistryCall(endpoint, outcome string, duration time.Duration)
}

// Config configures the registry client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a typed client for the registry REST API.
type Client struct {
	baseURL string
	http    *http.Client
	metrics Recorder
	logger  *zap.Logger
}

// ClientParams groups constructor dependencies.
type ClientParams struct {
	Config     Config
	HTTPClient *http.Client
	Metrics    Recorder
	Logger     *zap.Logger
}

// NewClient constructs a Client. A nil HTTPClient gets one with Config.Timeout.
func NewClient(params ClientParams) *Client {
	timeout := params.Config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(params.Config.BaseURL, "/"),
		http:    httpClient,
		metrics: params.Metrics,
		logger:  logger,
	}
}

// BaseURL is the registry origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadURL returns the public URL of a file served from the registry uploads directory.
func (c *Client) UploadURL(filename string) string {
	return c.baseURL + "/uploads/" + url.PathEscape(filename)
}

type tokenKey struct{}

// WithToken attaches the caller's registry bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the registry bearer token attached to ctx, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type messageBody struct {
	Message string `json:"message"`
}

type call struct {
	endpoint    string
	method      string
	path        string
	body        io.Reader
	contentType string
	fallback    string
}

func (c *Client) getJSON(ctx context.Context, endpoint, path, fallback string, out interface{}) error {
	return c.do(ctx, call{endpoint: endpoint, method: http.MethodGet, path: path, fallback: fallback}, out)
}

func (c *Client) sendJSON(ctx context.Context, endpoint, method, path string, payload interface{}, fallback string, out interface{}) error {
	cl := call{endpoint: endpoint, method: method, path: path, fallback: fallback}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &Error{Kind: KindDecode, Endpoint: endpoint, Message: fallback, Err: fmt.Errorf("encode payload: %w", err)}
		}
		cl.body = bytes.NewReader(raw)
		cl.contentType = "application/json"
	}
	return c.do(ctx, cl, out)
}

// send issues a mutation and returns the registry's message.
func (c *Client) send(ctx context.Context, endpoint, method, path string, payload interface{}, fallback string) (string, error) {
	var body messageBody
	if err := c.sendJSON(ctx, endpoint, method, path, payload, fallback, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

func (c *Client) do(ctx context.Context, cl call, out interface{}) (err error) {
	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		duration := time.Since(start)
		if c.metrics != nil {
			c.metrics.ObserveRegistryCall(cl.endpoint, outcome, duration)
		}
		c.logger.Debug("registry call",
			zap.String("endpoint", cl.endpoint),
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.String("outcome", outcome),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}()

	req, reqErr := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if reqErr != nil {
		outcome = OutcomeNetwork
		return &Error{Kind: KindNetwork, Endpoint: cl.endpoint, Message: MessageUnreachable, Err: reqErr}
	}
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.Header, reqID)
	}

	resp, doErr := c.http.Do(req)
	if doErr != nil {
		outcome = OutcomeNetwork
		return &Error{Kind: KindNetwork, Endpoint: cl.endpoint, Message: MessageUnreachable, Err: doErr}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if readErr != nil {
		outcome = OutcomeNetwork
		return &Error{Kind: KindNetwork, Endpoint: cl.endpoint, Status: resp.StatusCode, Message: MessageUnreachable, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = OutcomeAPI
		message := cl.fallback
		var body apiErrorBody
		if json.Unmarshal(raw, &body) == nil {
			switch {
			case body.Error != "":
				message = body.Error
			case body.Message != "":
				message = body.Message
			}
		}
		return &Error{Kind: KindAPI, Endpoint: cl.endpoint, Status: resp.StatusCode, Message: message}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if decodeErr := json.Unmarshal(raw, out); decodeErr != nil {
		outcome = OutcomeDecode
		return &Error{Kind: KindDecode, Endpoint: cl.endpoint, Status: resp.StatusCode, Message: cl.fallback, Err: decodeErr}
	}
	return nil
}
