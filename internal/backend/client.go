// Package backend talks to the loan service. The gateway uses it to forward
// browser requests; the console client uses the same typed calls against the
// gateway, which exposes identical paths.
package backend

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

	"cashloan/internal/domain"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
	Logger   *zap.Logger
	// Transport overrides the round tripper, mainly for tests.
	Transport http.RoundTripper
}

type Client struct {
	baseURL string
	reads   *http.Client
	writes  *http.Client
	log     *zap.Logger
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }

// New builds a client. Idempotent reads go through a retrying client;
// mutations are sent exactly once.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: transport}
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = retryLogger{s: logger.Named("backend.retry").Sugar()}
	// hand the last response back instead of a "giving up" error so the
	// backend's status and message can be relayed
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	reads := rc.StandardClient()
	reads.Timeout = opts.Timeout

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		reads:   reads,
		writes:  &http.Client{Transport: transport, Timeout: opts.Timeout},
		log:     logger.Named("backend"),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request is one call to the backend. Path starts with /api.
type Request struct {
	Method      string
	Path        string
	Token       string
	Query       url.Values
	Body        []byte
	ContentType string
	RequestID   string
}

// JSONRequest marshals body into a Request.
func JSONRequest(method, path, token string, body any) (Request, error) {
	req := Request{Method: method, Path: path, Token: token}
	if body == nil {
		return req, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return req, domain.InternalError{Msg: "encode request body", Err: err}
	}
	req.Body = b
	req.ContentType = "application/json"
	return req, nil
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "json")
}

// errorBody is the Laravel error envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
	Errors  any    `json:"errors"`
}

// Err converts a non-2xx response into a domain error. JSON bodies keep their
// message and validation errors; anything else becomes "Server error: <status>".
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	var eb errorBody
	if r.IsJSON() {
		_ = json.Unmarshal(r.Body, &eb)
		if eb.Message == "" {
			if s, ok := eb.Error.(string); ok {
				eb.Message = s
			}
		}
	}
	if r.Status == http.StatusUnauthorized {
		return domain.UnauthorizedError{Msg: eb.Message}
	}
	return domain.UpstreamError{Status: r.Status, Message: eb.Message, Details: eb.Errors}
}

// Do sends req and returns the backend's answer whatever its status. Only
// transport failures are returned as errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, domain.InternalError{Msg: "build backend request", Err: err}
	}
	hr.Header.Set("Accept", "application/json")
	hr.Header.Set("X-Requested-With", "XMLHttpRequest")
	if req.Token != "" {
		hr.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.Body != nil {
		ct := req.ContentType
		if ct == "" {
			ct = "application/json"
		}
		hr.Header.Set("Content-Type", ct)
	}
	if req.RequestID != "" {
		hr.Header.Set("X-Request-ID", req.RequestID)
	}

	hc := c.writes
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		hc = c.reads
	}

	start := time.Now()
	resp, err := hc.Do(hr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.log.Warn("backend call failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, domain.NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NetworkError{Op: "read " + req.Path, Err: err}
	}
	c.log.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// call runs req and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return DecodeJSON(resp.Body, out)
}

// DecodeJSON maps a parse failure to MalformedResponseError.
func DecodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return domain.MalformedResponseError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
