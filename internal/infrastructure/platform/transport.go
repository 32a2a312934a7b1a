package platform

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shopunion/client/internal/domain/affiliate"
	"github.com/shopunion/client/internal/infrastructure/logger"
	"github.com/shopunion/client/internal/infrastructure/telemetry"
)

// Default transport timeouts
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// HTTPRequest is one outbound platform request
type HTTPRequest struct {
	// Method is the HTTP method (POST for every platform gateway)
	Method string
	// URL is the platform gateway
	URL string
	// Form is sent as an application/x-www-form-urlencoded body
	Form url.Values

	// Platform and APIMethod label logs, spans and metrics
	Platform  affiliate.PlatformCode
	APIMethod string
}

// HTTPResponse is the raw reply of a platform gateway
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// HTTPClient is the transport capability used by the platform clients.
// Implementations return an error wrapping affiliate.ErrPlatformUnavailable
// on network failure, keeping the original cause in the chain.
type HTTPClient interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// HTTPStatusError reports a gateway reply with status >= 400
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// TransportConfig holds the default transport settings
type TransportConfig struct {
	// Timeout bounds the whole request including reading the body
	Timeout time.Duration
	// ConnectTimeout bounds the TCP dial
	ConnectTimeout time.Duration
}

// DefaultTransportConfig returns the default timeouts
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:        DefaultRequestTimeout,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// RestyHTTPClient is the default HTTPClient, backed by resty
type RestyHTTPClient struct {
	client  *resty.Client
	logger  *zap.Logger
	metrics *telemetry.APIMetrics
}

// RestyOption configures a RestyHTTPClient
type RestyOption func(*RestyHTTPClient)

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) RestyOption {
	return func(c *RestyHTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request counts and latency
func WithMetrics(m *telemetry.APIMetrics) RestyOption {
	return func(c *RestyHTTPClient) {
		c.metrics = m
	}
}

// NewRestyHTTPClient creates the default transport
func NewRestyHTTPClient(cfg TransportConfig, opts ...RestyOption) *RestyHTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &RestyHTTPClient{
		client: resty.New().
			SetTransport(transport).
			SetTimeout(cfg.Timeout),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and returns the raw response.
// Network failures and HTTP status >= 400 wrap affiliate.ErrPlatformUnavailable.
// A request id or platform already carried by ctx (see logger.WithRequestID,
// logger.WithPlatform) is reused instead of being added again.
func (c *RestyHTTPClient) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	ctx = logger.WithContext(ctx, logger.FromContextOr(ctx, c.logger))
	requestID := logger.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
		ctx, _ = logger.WithRequestID(ctx, logger.FromContext(ctx), requestID)
	}
	if logger.GetPlatform(ctx) == "" {
		ctx, _ = logger.WithPlatform(ctx, logger.FromContext(ctx), req.Platform.String())
	}

	ctx, span := telemetry.StartSpan(ctx, "affiliate.http",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrPlatform, req.Platform.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAPIMethod, req.APIMethod),
		telemetry.WithAttribute(telemetry.SpanAttrRequestID, requestID),
		telemetry.WithAttribute(telemetry.SpanAttrHTTPMethod, method),
		telemetry.WithAttribute(telemetry.SpanAttrServerURL, req.URL),
	)
	defer span.End()

	log := logger.L(ctx).With(
		zap.String("api_method", req.APIMethod),
		zap.String("http_method", method),
	)
	log.Debug("Sending platform request")

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormDataFromValues(req.Form).
		Execute(method, req.URL)
	elapsed := time.Since(start)
	fields := []zap.Field{zap.Duration("duration", elapsed)}

	if err != nil {
		telemetry.RecordError(span, err)
		c.metrics.RecordRequest(ctx, req.Platform.String(), req.APIMethod, telemetry.OutcomeTransport, elapsed)
		log.Warn("Platform request failed", append(fields, zap.Error(err))...)
		return nil, fmt.Errorf("%w: %w", affiliate.ErrPlatformUnavailable, err)
	}

	status := resp.StatusCode()
	telemetry.SetAttributes(span, telemetry.SpanAttrHTTPStatus, status)
	fields = append(fields, zap.Int("status", status))

	if status >= http.StatusBadRequest {
		statusErr := &HTTPStatusError{StatusCode: status, Body: snippet(resp.Body())}
		telemetry.RecordError(span, statusErr)
		c.metrics.RecordRequest(ctx, req.Platform.String(), req.APIMethod, telemetry.OutcomeHTTPError, elapsed)
		log.Warn("Platform returned HTTP error", fields...)
		return nil, fmt.Errorf("%w: %w", affiliate.ErrPlatformUnavailable, statusErr)
	}

	telemetry.SetOK(span)
	c.metrics.RecordRequest(ctx, req.Platform.String(), req.APIMethod, telemetry.OutcomeSuccess, elapsed)
	log.Debug("Platform request completed", fields...)

	return &HTTPResponse{
		StatusCode: status,
		Headers:    resp.Header(),
		Body:       resp.Body(),
	}, nil
}
