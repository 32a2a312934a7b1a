package affiliate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Result is the success payload of a platform call.
// It keeps the payload JSON for path queries and a decoded map for callers
// that want plain Go values. Numbers decode as json.Number so 64-bit ids
// survive unchanged.
type Result struct {
	raw  []byte
	data map[string]any
}

// NewResult builds a Result from a JSON object payload
func NewResult(raw []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil || data == nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrPlatformInvalidResponse)
	}

	return &Result{raw: raw, data: data}, nil
}

// Raw returns the payload JSON
func (r *Result) Raw() []byte {
	return r.raw
}

// Map returns the decoded payload
func (r *Result) Map() map[string]any {
	return r.data
}

// Get queries the payload with a gjson path (e.g. "result_list.map_data.0.title")
func (r *Result) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// String returns the string at path, or "" if absent
func (r *Result) String(path string) string {
	return r.Get(path).String()
}

// Int returns the integer at path, or 0 if absent
func (r *Result) Int(path string) int64 {
	return r.Get(path).Int()
}

// Decimal returns the money amount at path.
// Platforms send prices both as strings ("19.90") and numbers; both parse.
// Missing or malformed values yield zero.
func (r *Result) Decimal(path string) decimal.Decimal {
	v := r.Get(path)
	if !v.Exists() {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MarshalJSON returns the payload JSON unchanged
func (r *Result) MarshalJSON() ([]byte, error) {
	if r == nil || r.raw == nil {
		return []byte("null"), nil
	}
	return r.raw, nil
}
