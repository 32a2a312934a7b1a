package affiliate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Affiliate Platform Errors
// ---------------------------------------------------------------------------

var (
	// ErrPlatformNotConfigured indicates required credentials are missing
	ErrPlatformNotConfigured = errors.New("affiliate: platform not configured")
	// ErrInvalidParams indicates a required operation parameter is missing or empty
	ErrInvalidParams = errors.New("affiliate: invalid parameters")
	// ErrPlatformUnavailable indicates the transport failed (network, DNS, HTTP status)
	ErrPlatformUnavailable = errors.New("affiliate: platform unavailable")
	// ErrPlatformInvalidResponse indicates the response body is not a JSON object
	ErrPlatformInvalidResponse = errors.New("affiliate: invalid platform response")
	// ErrPlatformRequestFailed indicates the platform reported a business error
	ErrPlatformRequestFailed = errors.New("affiliate: platform request failed")
	// ErrUnknownPlatform indicates an unsupported platform code
	ErrUnknownPlatform = errors.New("affiliate: unknown platform")
)

// ---------------------------------------------------------------------------
// PlatformCode represents the affiliate platform
// ---------------------------------------------------------------------------

// PlatformCode represents the type of affiliate platform
type PlatformCode string

const (
	// PlatformCodeTaobao represents Taobao Union (淘宝联盟)
	PlatformCodeTaobao PlatformCode = "TAOBAO"
	// PlatformCodePinduoduo represents Duoduojinbao (多多进宝)
	PlatformCodePinduoduo PlatformCode = "PINDUODUO"
	// PlatformCodeJD represents JD Union (京东联盟)
	PlatformCodeJD PlatformCode = "JD"
)

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeTaobao, PlatformCodePinduoduo, PlatformCodeJD:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the platform
func (c PlatformCode) DisplayName() string {
	switch c {
	case PlatformCodeTaobao:
		return "淘宝联盟"
	case PlatformCodePinduoduo:
		return "多多进宝"
	case PlatformCodeJD:
		return "京东联盟"
	default:
		return string(c)
	}
}

// ParsePlatformCode parses a case-insensitive platform name.
// Accepts the codes themselves plus the short aliases "tb", "pdd" and "jd".
func ParsePlatformCode(s string) (PlatformCode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TAOBAO", "TB":
		return PlatformCodeTaobao, nil
	case "PINDUODUO", "PDD":
		return PlatformCodePinduoduo, nil
	case "JD", "JINGDONG":
		return PlatformCodeJD, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
}

// ---------------------------------------------------------------------------
// Params
// ---------------------------------------------------------------------------

// Params is a request parameter set keyed by wire name.
// Values are scalars (string, bool, integers, floats), nil (omitted),
// or JSON-encodable compound values (slices, maps, structs).
type Params map[string]any

// SortedKeys returns the parameter names in ascending byte order
func (p Params) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new Params holding p overlaid with other
func (p Params) Merge(other Params) Params {
	merged := make(Params, len(p)+len(other))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// ---------------------------------------------------------------------------
// Platform Port
// ---------------------------------------------------------------------------

// Platform is the operation contract shared by every affiliate platform client
type Platform interface {
	// PlatformCode returns the platform code this client handles
	PlatformCode() PlatformCode

	// MaterialSearch searches the platform's promotable goods catalog
	MaterialSearch(ctx context.Context, req *MaterialSearchRequest) (*Result, error)

	// LinkConvert turns a product reference into a commission-tracked link
	LinkConvert(ctx context.Context, req *LinkConvertRequest) (*Result, error)

	// ShopSearch searches shops (or shop-level material) on the platform
	ShopSearch(ctx context.Context, req *ShopSearchRequest) (*Result, error)

	// ItemDetail retrieves goods detail by platform identifiers
	ItemDetail(ctx context.Context, req *ItemDetailRequest) (*Result, error)

	// Call invokes an arbitrary platform API method with raw business parameters
	Call(ctx context.Context, method string, params Params) (*Result, error)
}

// ---------------------------------------------------------------------------
// PlatformError
// ---------------------------------------------------------------------------

// PlatformError is a business error reported by a platform
type PlatformError struct {
	Platform PlatformCode
	// Message is the platform-supplied human readable message
	Message string
	// Code is the platform's numeric code (0 when not numeric)
	Code int
	// APICode is the platform's machine-readable code (sub_code, error_code...)
	APICode string
	// RawResponse is the full decoded response body
	RawResponse map[string]any
}

// Error implements the error interface
func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %s (code=%d, api_code=%s)", strings.ToLower(string(e.Platform)), e.Message, e.Code, e.APICode)
}

// Unwrap allows errors.Is(err, ErrPlatformRequestFailed)
func (e *PlatformError) Unwrap() error {
	return ErrPlatformRequestFailed
}

// AsPlatformError extracts a *PlatformError from an error chain
func AsPlatformError(err error) (*PlatformError, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
