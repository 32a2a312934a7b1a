package platform

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/shopunion/client/internal/domain/affiliate"
)

const (
	// maxSnippetLength bounds the body excerpt carried by protocol errors
	maxSnippetLength = 200
	// unknownErrorMessage is used when a platform error carries no message
	unknownErrorMessage = "Unknown error"
)

// EnvelopeParser maps a raw response body to the success payload or an error
type EnvelopeParser func(method string, body []byte) (*affiliate.Result, error)

// ResponseKey derives the success payload key from an API method,
// e.g. "jd.union.open.goods.query" -> "jd_union_open_goods_query_response".
func ResponseKey(method string) string {
	return strings.ReplaceAll(method, ".", "_") + "_response"
}

// ParseTaobaoEnvelope parses a Taobao Union response.
// An error_response member yields a *affiliate.PlatformError.
func ParseTaobaoEnvelope(method string, body []byte) (*affiliate.Result, error) {
	root, err := parseObject(affiliate.PlatformCodeTaobao, body)
	if err != nil {
		return nil, err
	}

	if errResp := member(root, "error_response"); present(errResp) {
		return nil, &affiliate.PlatformError{
			Platform:    affiliate.PlatformCodeTaobao,
			Message:     firstString(errResp, "sub_msg", "msg"),
			Code:        int(errResp.Get("code").Int()),
			APICode:     errResp.Get("sub_code").String(),
			RawResponse: decodeRaw(body),
		}
	}

	return successPayload(affiliate.PlatformCodeTaobao, root, method)
}

// ParsePinduoduoEnvelope parses a Duoduojinbao response.
// An error_response member yields a *affiliate.PlatformError.
func ParsePinduoduoEnvelope(method string, body []byte) (*affiliate.Result, error) {
	root, err := parseObject(affiliate.PlatformCodePinduoduo, body)
	if err != nil {
		return nil, err
	}

	if errResp := member(root, "error_response"); present(errResp) {
		code := errResp.Get("error_code")
		return nil, &affiliate.PlatformError{
			Platform:    affiliate.PlatformCodePinduoduo,
			Message:     firstString(errResp, "error_msg"),
			Code:        int(code.Int()),
			APICode:     code.String(),
			RawResponse: decodeRaw(body),
		}
	}

	return successPayload(affiliate.PlatformCodePinduoduo, root, method)
}

// ParseJDEnvelope parses a JD Union response.
// The payload's code (or errorCode when code is absent) must be 0 or "0".
func ParseJDEnvelope(method string, body []byte) (*affiliate.Result, error) {
	root, err := parseObject(affiliate.PlatformCodeJD, body)
	if err != nil {
		return nil, err
	}

	payload := member(root, ResponseKey(method))
	if !present(payload) {
		payload = root
	}
	if !payload.IsObject() {
		return nil, invalidResponse(affiliate.PlatformCodeJD, body)
	}

	code := payload.Get("code")
	if !present(code) {
		code = payload.Get("errorCode")
	}
	if present(code) && !isZeroCode(code) {
		return nil, &affiliate.PlatformError{
			Platform:    affiliate.PlatformCodeJD,
			Message:     firstString(payload, "message", "errorMessage"),
			Code:        cast.ToInt(code.String()),
			APICode:     code.String(),
			RawResponse: decodeRaw(body),
		}
	}

	return affiliate.NewResult([]byte(payload.Raw))
}

// parseObject requires body to be a JSON object
func parseObject(platform affiliate.PlatformCode, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, invalidResponse(platform, body)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, invalidResponse(platform, body)
	}
	return root, nil
}

// successPayload returns root[ResponseKey(method)], falling back to root
func successPayload(platform affiliate.PlatformCode, root gjson.Result, method string) (*affiliate.Result, error) {
	payload := member(root, ResponseKey(method))
	if !present(payload) {
		payload = root
	}
	res, err := affiliate.NewResult([]byte(payload.Raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload of %s is not an object", affiliate.ErrPlatformInvalidResponse, strings.ToLower(platform.String()), method)
	}
	return res, nil
}

// member looks up a top-level key without interpreting path syntax
func member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
			return false
		}
		return true
	})
	return found
}

// present reports whether v exists and is not JSON null
func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

// firstString returns the first non-empty string among keys
func firstString(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := obj.Get(k); present(v) && v.String() != "" {
			return v.String()
		}
	}
	return unknownErrorMessage
}

// isZeroCode reports whether a JD code means success
func isZeroCode(code gjson.Result) bool {
	switch code.Type {
	case gjson.Number:
		return code.Float() == 0
	case gjson.String:
		return code.Str == "0"
	default:
		return false
	}
}

// decodeRaw decodes the full body for PlatformError.RawResponse
func decodeRaw(body []byte) map[string]any {
	res, err := affiliate.NewResult(body)
	if err != nil {
		return nil
	}
	return res.Map()
}

func invalidResponse(platform affiliate.PlatformCode, body []byte) error {
	return fmt.Errorf("%w: %s returned non-JSON: %s", affiliate.ErrPlatformInvalidResponse, strings.ToLower(platform.String()), snippet(body))
}

// snippet returns at most maxSnippetLength characters of body
func snippet(body []byte) string {
	runes := []rune(string(body))
	if len(runes) > maxSnippetLength {
		runes = runes[:maxSnippetLength]
	}
	return string(runes)
}
