package platform

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is the clock used by client tests
var fixedNow = time.Date(2024, 3, 15, 10, 30, 45, 0, time.Local)

// fixedNowUnix is fixedNow as the Pinduoduo timestamp string
func fixedNowUnix() string {
	return strconv.FormatInt(fixedNow.Unix(), 10)
}

// fakeHTTPClient records requests and replies with a canned body or error
type fakeHTTPClient struct {
	mu       sync.Mutex
	requests []*HTTPRequest
	body     string
	err      error
}

func newFakeHTTPClient(body string) *fakeHTTPClient {
	return &fakeHTTPClient{body: body}
}

func (f *fakeHTTPClient) Do(_ context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &HTTPResponse{
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(f.body),
	}, nil
}

func (f *fakeHTTPClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// lastRequest returns the most recent request, failing the test if none
func (f *fakeHTTPClient) lastRequest(t *testing.T) *HTTPRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "expected an outbound request")
	return f.requests[len(f.requests)-1]
}

// upperMD5 returns the uppercase hex MD5 of s
func upperMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// expectedSign recomputes secret + sorted(k+v) + secret over the form,
// the way the platform gateways verify it.
func expectedSign(form url.Values, secret string) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		if k == SignParam || form.Get(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(secret)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}
	b.WriteString(secret)
	return upperMD5(b.String())
}

// assertSigned checks the sign field against an independent recomputation
func assertSigned(t *testing.T, form url.Values, secret string) {
	t.Helper()
	require.NotEmpty(t, form.Get(SignParam))
	assert.Equal(t, expectedSign(form, secret), form.Get(SignParam))
}
