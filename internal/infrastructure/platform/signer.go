package platform

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// SignParam is the parameter name that carries the request signature
const SignParam = "sign"

// Signer computes request signatures and the matching form encoding
type Signer interface {
	// Sign returns the signature of params under secret
	Sign(secret string, params affiliate.Params) string
	// Encode converts params into form values using the same
	// stringification the signature was computed over
	Encode(params affiliate.Params) url.Values
}

// md5Signer implements MD5(secret + k1v1k2v2... + secret), uppercase hex.
// All three platforms use this legacy scheme; they differ only in how
// compound values (lists, objects) are rendered.
// NOTE: MD5 is mandated by the platforms' open APIs.
type md5Signer struct {
	// jsonCompound renders slices, maps and structs as compact JSON
	jsonCompound bool
}

// NewTaobaoSigner returns the Taobao Union signer
func NewTaobaoSigner() Signer {
	return &md5Signer{}
}

// NewPinduoduoSigner returns the Duoduojinbao signer.
// List-valued parameters (goods_sign_list, goods_id_list) are signed as JSON.
func NewPinduoduoSigner() Signer {
	return &md5Signer{jsonCompound: true}
}

// NewJDSigner returns the JD Union signer
func NewJDSigner() Signer {
	return &md5Signer{}
}

// Sign generates the signature for params.
// Keys are visited in ascending byte order; the sign key, nil values and
// values that render to "" are skipped.
func (s *md5Signer) Sign(secret string, params affiliate.Params) string {
	var builder strings.Builder
	builder.WriteString(secret)
	for _, k := range params.SortedKeys() {
		if k == SignParam {
			continue
		}
		v, ok := s.stringify(params[k])
		if !ok || v == "" {
			continue
		}
		builder.WriteString(k)
		builder.WriteString(v)
	}
	builder.WriteString(secret)

	hash := md5.Sum([]byte(builder.String()))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

// Encode builds the form body. Nil values are omitted; empty strings are sent.
func (s *md5Signer) Encode(params affiliate.Params) url.Values {
	values := url.Values{}
	for k, raw := range params {
		v, ok := s.stringify(raw)
		if !ok {
			continue
		}
		values.Set(k, v)
	}
	return values
}

// stringify renders a parameter value. ok is false for nil values.
func (s *md5Signer) stringify(value any) (string, bool) {
	if value == nil {
		return "", false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	value = rv.Interface()

	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	case []byte:
		return string(v), true
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		if s.jsonCompound {
			if encoded, err := compactJSON(value); err == nil {
				return encoded, true
			}
		}
		return fmt.Sprint(value), true
	}

	str, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value), true
	}
	return str, true
}

// compactJSON encodes v without HTML escaping or a trailing newline
func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
