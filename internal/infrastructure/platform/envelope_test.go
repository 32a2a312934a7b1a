package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopunion/client/internal/domain/affiliate"
)

func TestResponseKey(t *testing.T) {
	assert.Equal(t, "jd_union_open_goods_query_response", ResponseKey("jd.union.open.goods.query"))
	assert.Equal(t, "tbk_dg_material_optional_response", ResponseKey("tbk.dg.material.optional"))
	assert.Equal(t, "pdd_ddk_goods_search_response", ResponseKey("pdd.ddk.goods.search"))
}

func TestParseTaobaoEnvelope(t *testing.T) {
	t.Run("success payload under response key", func(t *testing.T) {
		body := `{"taobao_tbk_dg_material_optional_response":{"total_results":1,"result_list":{"map_data":[{"item_id":"abc"}]}},"request_id":"x"}`

		res, err := ParseTaobaoEnvelope(TaobaoMethodMaterialSearch, []byte(body))
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Int("total_results"))
		assert.Equal(t, "abc", res.String("result_list.map_data.0.item_id"))
		assert.NotContains(t, res.Map(), "request_id")
	})

	t.Run("falls back to whole body", func(t *testing.T) {
		res, err := ParseTaobaoEnvelope(TaobaoMethodMaterialSearch, []byte(`{"data":{"k":"v"}}`))
		require.NoError(t, err)
		assert.Equal(t, "v", res.String("data.k"))
	})

	t.Run("error_response with sub_msg", func(t *testing.T) {
		body := `{"error_response":{"code":15,"msg":"Remote service error","sub_code":"isv.invalid-parameter","sub_msg":"adzone_id invalid"}}`

		_, err := ParseTaobaoEnvelope(TaobaoMethodMaterialSearch, []byte(body))
		require.Error(t, err)
		assert.ErrorIs(t, err, affiliate.ErrPlatformRequestFailed)

		pe, ok := affiliate.AsPlatformError(err)
		require.True(t, ok)
		assert.Equal(t, affiliate.PlatformCodeTaobao, pe.Platform)
		assert.Equal(t, "adzone_id invalid", pe.Message)
		assert.Equal(t, 15, pe.Code)
		assert.Equal(t, "isv.invalid-parameter", pe.APICode)
		assert.Contains(t, pe.RawResponse, "error_response")
	})

	t.Run("error_response message fallbacks", func(t *testing.T) {
		_, err := ParseTaobaoEnvelope("m", []byte(`{"error_response":{"code":7,"msg":"App Call Limited"}}`))
		pe, ok := affiliate.AsPlatformError(err)
		require.True(t, ok)
		assert.Equal(t, "App Call Limited", pe.Message)
		assert.Equal(t, "", pe.APICode)

		_, err = ParseTaobaoEnvelope("m", []byte(`{"error_response":{}}`))
		pe, ok = affiliate.AsPlatformError(err)
		require.True(t, ok)
		assert.Equal(t, "Unknown error", pe.Message)
	})

	t.Run("non-JSON body", func(t *testing.T) {
		body := "<html>" + strings.Repeat("x", 500) + "</html>"

		_, err := ParseTaobaoEnvelope("m", []byte(body))
		require.Error(t, err)
		assert.ErrorIs(t, err, affiliate.ErrPlatformInvalidResponse)
		assert.Contains(t, err.Error(), "<html>")
		assert.NotContains(t, err.Error(), "</html>")
	})

	t.Run("JSON array body", func(t *testing.T) {
		_, err := ParseTaobaoEnvelope("m", []byte(`[1,2]`))
		assert.ErrorIs(t, err, affiliate.ErrPlatformInvalidResponse)
	})
}

func TestParsePinduoduoEnvelope(t *testing.T) {
	t.Run("error_response maps code and message", func(t *testing.T) {
		body := `{"error_response":{"error_code":10001,"error_msg":"invalid sign","request_id":"r1"}}`

		_, err := ParsePinduoduoEnvelope(PinduoduoTypeGoodsSearch, []byte(body))
		require.Error(t, err)

		pe, ok := affiliate.AsPlatformError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid sign", pe.Message)
		assert.Equal(t, "10001", pe.APICode)
		assert.Equal(t, 10001, pe.Code)
		assert.Equal(t, affiliate.PlatformCodePinduoduo, pe.Platform)
	})

	t.Run("success payload", func(t *testing.T) {
		body := `{"goods_search_response":{"goods_list":[{"goods_sign":"s1","min_group_price":1990}],"total_count":1}}`

		res, err := ParsePinduoduoEnvelope("pdd.ddk.goods.search", []byte(body))
		require.NoError(t, err)
		// pdd.ddk.goods.search -> pdd_ddk_goods_search_response is absent, whole body returned
		assert.Equal(t, "s1", res.String("goods_search_response.goods_list.0.goods_sign"))

		body = `{"pdd_ddk_goods_search_response":{"total_count":3}}`
		res, err = ParsePinduoduoEnvelope("pdd.ddk.goods.search", []byte(body))
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.Int("total_count"))
	})
}

func TestParseJDEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantCode string
		wantMsg  string
	}{
		{
			name: "numeric zero code",
			body: `{"jd_union_open_goods_query_response":{"code":0,"result":"{}"}}`,
		},
		{
			name: "string zero code",
			body: `{"jd_union_open_goods_query_response":{"code":"0","result":"{}"}}`,
		},
		{
			name: "no code at all",
			body: `{"jd_union_open_goods_query_response":{"result":"{}"}}`,
		},
		{
			name:     "non-zero code",
			body:     `{"jd_union_open_goods_query_response":{"code":"1001","message":"参数错误"}}`,
			wantErr:  true,
			wantCode: "1001",
			wantMsg:  "参数错误",
		},
		{
			name:     "null code falls back to errorCode",
			body:     `{"jd_union_open_goods_query_response":{"code":null,"errorCode":2003,"errorMessage":"sku not found"}}`,
			wantErr:  true,
			wantCode: "2003",
			wantMsg:  "sku not found",
		},
		{
			name:     "error on whole body when key is absent",
			body:     `{"code":"19","message":"Invalid app_key"}`,
			wantErr:  true,
			wantCode: "19",
			wantMsg:  "Invalid app_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseJDEnvelope(JDMethodGoodsQuery, []byte(tt.body))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "{}", res.String("result"))
				return
			}

			pe, ok := affiliate.AsPlatformError(err)
			require.True(t, ok, "expected PlatformError, got %v", err)
			assert.Equal(t, tt.wantCode, pe.APICode)
			assert.Equal(t, tt.wantMsg, pe.Message)
			assert.Equal(t, affiliate.PlatformCodeJD, pe.Platform)
			assert.NotNil(t, pe.RawResponse)
		})
	}
}

func TestParseJDEnvelope_FallbackToWholeBody(t *testing.T) {
	res, err := ParseJDEnvelope(JDMethodGoodsQuery, []byte(`{"queryResult":{"totalCount":5}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Int("queryResult.totalCount"))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet([]byte("short")))
	assert.Len(t, []rune(snippet([]byte(strings.Repeat("界", 300)))), 200)
}

func TestParseEnvelope_NullMembers(t *testing.T) {
	parsers := map[string]EnvelopeParser{
		"taobao":    ParseTaobaoEnvelope,
		"pinduoduo": ParsePinduoduoEnvelope,
	}

	for name, parse := range parsers {
		t.Run(name+" null error_response is not an error", func(t *testing.T) {
			res, err := parse("m", []byte(`{"error_response":null,"m_response":{"ok":1}}`))
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Int("ok"))
		})

		t.Run(name+" null response key falls back to whole body", func(t *testing.T) {
			res, err := parse("m", []byte(`{"m_response":null,"request_id":"r1"}`))
			require.NoError(t, err)
			assert.Equal(t, "r1", res.String("request_id"))
		})
	}

	t.Run("jd null response key falls back to whole body", func(t *testing.T) {
		res, err := ParseJDEnvelope("m", []byte(`{"m_response":null,"code":"0","data":{"k":"v"}}`))
		require.NoError(t, err)
		assert.Equal(t, "v", res.String("data.k"))
	})
}
