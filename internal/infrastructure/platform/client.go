package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// Timestamp layout shared by the Taobao and JD envelopes
const timestampLayout = "2006-01-02 15:04:05"

// signedCall is one signed request to a platform gateway
type signedCall struct {
	platform affiliate.PlatformCode
	gateway  string
	method   string
	secret   string
	params   affiliate.Params
	signer   Signer
	parse    EnvelopeParser
}

// dispatch signs the call, sends it and parses the envelope.
// params is owned by the call and receives the sign field.
func dispatch(ctx context.Context, httpClient HTTPClient, call signedCall) (*affiliate.Result, error) {
	call.params[SignParam] = call.signer.Sign(call.secret, call.params)

	resp, err := httpClient.Do(ctx, &HTTPRequest{
		Method:    http.MethodPost,
		URL:       call.gateway,
		Form:      call.signer.Encode(call.params),
		Platform:  call.platform,
		APIMethod: call.method,
	})
	if err != nil {
		if errors.Is(err, affiliate.ErrPlatformUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", affiliate.ErrPlatformUnavailable, err)
	}

	return call.parse(call.method, resp.Body)
}

// requireMethod rejects an empty API method name
func requireMethod(platform affiliate.PlatformCode, method string) error {
	if strings.TrimSpace(method) == "" {
		return fmt.Errorf("%w: %s api method is required", affiliate.ErrInvalidParams, strings.ToLower(platform.String()))
	}
	return nil
}

// invalidParams builds a validation error for a missing operation input
func invalidParams(platform affiliate.PlatformCode, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", affiliate.ErrInvalidParams, strings.ToLower(platform.String()), fmt.Sprintf(format, args...))
}

// clock returns now, or time.Now when now is nil
func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
