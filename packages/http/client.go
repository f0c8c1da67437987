package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/callsy/packages/core/normalize"
)

// Sender issues one outbound request and returns the complete response.
type Sender interface {
	Send(ctx context.Context, req *normalize.OutboundRequest) (*InboundResponse, error)
}

// TransportError wraps any failure to obtain a complete response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error when sending the request: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Execute sends req exactly once through sender. Errors are *TransportError.
func Execute(ctx context.Context, sender Sender, req *normalize.OutboundRequest) (*InboundResponse, error) {
	resp, err := sender.Send(ctx, req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	validateSSL bool
	proxyURL    string
	userAgent   string
	logger      *slog.Logger
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		validateSSL: true,
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	// One request per process, nothing to keep alive. Compression stays off so
	// the request carries only the document's headers and the response
	// headers and body are kept as received.
	transport := &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		DisableKeepAlives:  true,
		DisableCompression: true,
	}

	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			c.logger.Warn("ignoring invalid proxy URL", "proxy", c.proxyURL, "error", err)
		}
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}

	return c
}

// WithTimeout bounds the whole exchange. Zero, the default, means no limit.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithUserAgent sets the User-Agent sent when the request doesn't carry one.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func (c *Client) Send(ctx context.Context, req *normalize.OutboundRequest) (*InboundResponse, error) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, err
	}

	httpReq.Header = req.HTTPHeader()

	// net/http takes these from Request fields, not from Header.
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
	}
	if cl := httpReq.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			httpReq.ContentLength = n
		}
	}

	if c.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("sending request", "method", req.Method, "url", req.URL.String(), "headers", len(req.Headers), "body_bytes", len(req.Body))

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	duration := time.Since(start)

	c.logger.Debug("received response", "status", httpResp.StatusCode, "body_bytes", len(respBody), "duration", duration)

	return &InboundResponse{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       respBody,
		Duration:   duration,
	}, nil
}
