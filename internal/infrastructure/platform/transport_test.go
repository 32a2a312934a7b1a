package platform

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shopunion/client/internal/domain/affiliate"
	"github.com/shopunion/client/internal/infrastructure/logger"
	"github.com/shopunion/client/internal/infrastructure/telemetry"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func createMockGateway(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestDefaultTransportConfig(t *testing.T) {
	cfg := DefaultTransportConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}

func TestRestyHTTPClient_Do(t *testing.T) {
	sr := setupTestTracer(t)

	var gotForm url.Values
	var gotContentType, gotMethod string
	server := createMockGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	metrics, err := telemetry.NewAPIMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	var logs bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&logs), zapcore.DebugLevel)

	client := NewRestyHTTPClient(TransportConfig{Timeout: 5 * time.Second},
		WithLogger(zap.New(core)),
		WithMetrics(metrics),
	)

	resp, err := client.Do(context.Background(), &HTTPRequest{
		URL:       server.URL,
		Form:      url.Values{"method": {"taobao.tbk.item.info.get"}, "q": {"连衣裙 & 裙"}},
		Platform:  affiliate.PlatformCodeTaobao,
		APIMethod: "taobao.tbk.item.info.get",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Contains(t, gotContentType, "application/x-www-form-urlencoded")
	assert.Equal(t, "taobao.tbk.item.info.get", gotForm.Get("method"))
	assert.Equal(t, "连衣裙 & 裙", gotForm.Get("q"))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "affiliate.http", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "TAOBAO", attrs[telemetry.SpanAttrPlatform])
	assert.Equal(t, int64(200), attrs[telemetry.SpanAttrHTTPStatus])
	assert.NotEmpty(t, attrs[telemetry.SpanAttrRequestID])

	assert.Contains(t, logs.String(), `"api_method":"taobao.tbk.item.info.get"`)
	assert.Contains(t, logs.String(), `"request_id"`)
	assert.Contains(t, logs.String(), `"platform":"TAOBAO"`)
	assert.Contains(t, logs.String(), `"trace_id"`)
}

func TestRestyHTTPClient_Do_ReusesContextFields(t *testing.T) {
	setupTestTracer(t)

	server := createMockGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	var logs bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&logs), zapcore.DebugLevel)
	base := zap.New(core)

	ctx, _ := logger.WithPlatform(context.Background(), base, "JD")
	ctx, _ = logger.WithRequestID(ctx, logger.FromContext(ctx), "req-42")

	client := NewRestyHTTPClient(DefaultTransportConfig(), WithLogger(zap.NewNop()))
	_, err := client.Do(ctx, &HTTPRequest{
		URL:       server.URL,
		Platform:  affiliate.PlatformCodeJD,
		APIMethod: JDMethodGoodsQuery,
	})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 1, bytes.Count(line, []byte(`"platform"`)), string(line))
		assert.Equal(t, 1, bytes.Count(line, []byte(`"request_id"`)), string(line))
		assert.Contains(t, string(line), `"request_id":"req-42"`)
	}
}

func TestRestyHTTPClient_Do_HTTPError(t *testing.T) {
	sr := setupTestTracer(t)

	server := createMockGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	client := NewRestyHTTPClient(DefaultTransportConfig())
	_, err := client.Do(context.Background(), &HTTPRequest{URL: server.URL, Platform: affiliate.PlatformCodeJD})
	require.Error(t, err)
	assert.ErrorIs(t, err, affiliate.ErrPlatformUnavailable)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestRestyHTTPClient_Do_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	gateway := server.URL
	server.Close()

	client := NewRestyHTTPClient(TransportConfig{Timeout: 2 * time.Second, ConnectTimeout: time.Second})
	_, err := client.Do(context.Background(), &HTTPRequest{URL: gateway, Platform: affiliate.PlatformCodePinduoduo})
	require.Error(t, err)
	assert.ErrorIs(t, err, affiliate.ErrPlatformUnavailable)

	var statusErr *HTTPStatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestRestyHTTPClient_Do_ContextCanceled(t *testing.T) {
	server := createMockGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewRestyHTTPClient(DefaultTransportConfig())
	_, err := client.Do(ctx, &HTTPRequest{URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, affiliate.ErrPlatformUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlatformClients_OverHTTP(t *testing.T) {
	var gotForm url.Values
	server := createMockGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"pdd_ddk_goods_detail_response":{"goods_details":[{"goods_name":"耳机"}]}}`))
	})

	cfg := pinduoduoTestConfig()
	cfg.Gateway = server.URL
	client := NewPinduoduoClient(cfg, NewRestyHTTPClient(DefaultTransportConfig()))

	res, err := client.ItemDetail(context.Background(), &affiliate.ItemDetailRequest{GoodsSignList: []string{"s1", "s2"}})
	require.NoError(t, err)
	assert.Equal(t, "耳机", res.String("goods_details.0.goods_name"))

	assert.Equal(t, `["s1","s2"]`, gotForm.Get("goods_sign_list"))
	assertSigned(t, gotForm, "pdd-secret")
}
