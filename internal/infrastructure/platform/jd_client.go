package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// JD Union API methods
const (
	JDMethodGoodsQuery      = "jd.union.open.goods.query"
	JDMethodPromotionCommon = "jd.union.open.promotion.common.get"
)

const jdAPIVersion = "1.0"

// jdGoodsReq is the goodsReqDTO payload of jd.union.open.goods.query
type jdGoodsReq struct {
	Keyword   string `json:"keyword"`
	PageIndex int    `json:"pageIndex"`
	PageSize  int    `json:"pageSize"`
	SortName  string `json:"sortName,omitempty"`
	Sort      string `json:"sort,omitempty"`
	HasCoupon *bool  `json:"hasCoupon,omitempty"`
	Cid1      int64  `json:"cid1,omitempty"`
	Cid2      int64  `json:"cid2,omitempty"`
	Cid3      int64  `json:"cid3,omitempty"`
}

// jdSkuReq is the goodsReqDTO payload used for item detail
type jdSkuReq struct {
	SkuIDs string `json:"skuIds"`
}

// jdPromotionReq is the promotionCodeReq payload
type jdPromotionReq struct {
	MaterialID string `json:"materialId"`
	UnionID    string `json:"unionId,omitempty"`
	PositionID string `json:"positionId,omitempty"`
	AutoSearch bool   `json:"autoSearch"`
}

// JDClient calls the JD Union open API
type JDClient struct {
	config JDConfig
	http   HTTPClient
	signer Signer
	now    func() time.Time
}

// Ensure JDClient implements affiliate.Platform
var _ affiliate.Platform = (*JDClient)(nil)

// NewJDClient creates a JD Union client
func NewJDClient(config JDConfig, httpClient HTTPClient) *JDClient {
	return &JDClient{
		config: config,
		http:   httpClient,
		signer: NewJDSigner(),
		now:    time.Now,
	}
}

// PlatformCode returns the platform code for JD
func (c *JDClient) PlatformCode() affiliate.PlatformCode {
	return affiliate.PlatformCodeJD
}

// MaterialSearch queries goods (jd.union.open.goods.query)
func (c *JDClient) MaterialSearch(ctx context.Context, req *affiliate.MaterialSearchRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.MaterialSearchRequest{}
	}

	return c.Call(ctx, JDMethodGoodsQuery, affiliate.Params{
		"goodsReqDTO": jdGoodsReq{
			Keyword:   req.Keyword,
			PageIndex: affiliate.NormalizePage(req.Page),
			PageSize:  affiliate.NormalizePageSize(req.PageSize),
			SortName:  req.SortName,
			Sort:      req.Sort,
			HasCoupon: req.HasCoupon,
			Cid1:      req.Cid1,
			Cid2:      req.Cid2,
			Cid3:      req.Cid3,
		},
	})
}

// LinkConvert gets a promotion link (jd.union.open.promotion.common.get)
func (c *JDClient) LinkConvert(ctx context.Context, req *affiliate.LinkConvertRequest) (*affiliate.Result, error) {
	if req == nil || req.MaterialID == "" {
		return nil, invalidParams(affiliate.PlatformCodeJD, "link convert requires material_id")
	}

	unionID := req.UnionID
	if unionID == "" {
		unionID = c.config.UnionID
	}
	positionID := req.PositionID
	if positionID == "" {
		positionID = c.config.PositionID
	}
	autoSearch := true
	if req.AutoSearch != nil {
		autoSearch = *req.AutoSearch
	}

	return c.Call(ctx, JDMethodPromotionCommon, affiliate.Params{
		"promotionCodeReq": jdPromotionReq{
			MaterialID: req.MaterialID,
			UnionID:    unionID,
			PositionID: positionID,
			AutoSearch: autoSearch,
		},
	})
}

// ShopSearch has no dedicated JD Union endpoint; it runs a goods query
// with the same keyword and paging.
func (c *JDClient) ShopSearch(ctx context.Context, req *affiliate.ShopSearchRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.ShopSearchRequest{}
	}
	return c.MaterialSearch(ctx, &affiliate.MaterialSearchRequest{
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// ItemDetail queries goods by sku ids
func (c *JDClient) ItemDetail(ctx context.Context, req *affiliate.ItemDetailRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.ItemDetailRequest{}
	}

	skuIDs := req.JoinedItemIDs()
	if skuIDs == "" {
		return nil, invalidParams(affiliate.PlatformCodeJD, "item detail requires sku_ids")
	}

	return c.Call(ctx, JDMethodGoodsQuery, affiliate.Params{
		"goodsReqDTO": jdSkuReq{SkuIDs: skuIDs},
	})
}

// Call invokes any JD Union API method.
// Business params travel as one JSON string in param_json, which is
// signed as that string.
func (c *JDClient) Call(ctx context.Context, method string, params affiliate.Params) (*affiliate.Result, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if err := requireMethod(affiliate.PlatformCodeJD, method); err != nil {
		return nil, err
	}

	if params == nil {
		params = affiliate.Params{}
	}
	paramJSON, err := compactJSON(params)
	if err != nil {
		return nil, fmt.Errorf("%w: jd param_json: %v", affiliate.ErrInvalidParams, err)
	}

	return dispatch(ctx, c.http, signedCall{
		platform: affiliate.PlatformCodeJD,
		gateway:  c.config.GatewayURL(),
		method:   method,
		secret:   c.config.AppSecret,
		params: affiliate.Params{
			"method":     method,
			"app_key":    c.config.AppKey,
			"timestamp":  clock(c.now).Format(timestampLayout),
			"format":     "json",
			"v":          jdAPIVersion,
			"param_json": paramJSON,
		},
		signer: c.signer,
		parse:  ParseJDEnvelope,
	})
}
