package platform

import (
	"context"
	"strconv"
	"time"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// Duoduojinbao API types
const (
	PinduoduoTypeGoodsSearch     = "pdd.ddk.goods.search"
	PinduoduoTypePromotionURLGen = "pdd.ddk.goods.promotion.url.generate"
	PinduoduoTypeMallList        = "pdd.ddk.mall.list"
	PinduoduoTypeGoodsDetail     = "pdd.ddk.goods.detail"
)

const pinduoduoDataType = "JSON"

// PinduoduoClient calls the Duoduojinbao open API
type PinduoduoClient struct {
	config PinduoduoConfig
	http   HTTPClient
	signer Signer
	now    func() time.Time
}

// Ensure PinduoduoClient implements affiliate.Platform
var _ affiliate.Platform = (*PinduoduoClient)(nil)

// NewPinduoduoClient creates a Duoduojinbao client
func NewPinduoduoClient(config PinduoduoConfig, httpClient HTTPClient) *PinduoduoClient {
	return &PinduoduoClient{
		config: config,
		http:   httpClient,
		signer: NewPinduoduoSigner(),
		now:    time.Now,
	}
}

// PlatformCode returns the platform code for Pinduoduo
func (c *PinduoduoClient) PlatformCode() affiliate.PlatformCode {
	return affiliate.PlatformCodePinduoduo
}

// MaterialSearch searches goods (pdd.ddk.goods.search)
func (c *PinduoduoClient) MaterialSearch(ctx context.Context, req *affiliate.MaterialSearchRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.MaterialSearchRequest{}
	}

	params := affiliate.Params{
		"keyword":   req.Keyword,
		"page":      affiliate.NormalizePage(req.Page),
		"page_size": affiliate.NormalizePageSize(req.PageSize),
	}
	if req.SortType != nil {
		params["sort_type"] = *req.SortType
	}
	if req.HasCoupon != nil {
		params["with_coupon"] = *req.HasCoupon
	}
	if req.CatID != 0 {
		params["cat_id"] = req.CatID
	}

	return c.Call(ctx, PinduoduoTypeGoodsSearch, params)
}

// LinkConvert generates promotion URLs (pdd.ddk.goods.promotion.url.generate).
// A pid is required; goods_sign_list takes priority over goods_id_list.
func (c *PinduoduoClient) LinkConvert(ctx context.Context, req *affiliate.LinkConvertRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.LinkConvertRequest{}
	}

	pid := req.PID
	if pid == "" {
		pid = c.config.PID
	}
	if pid == "" {
		return nil, invalidParams(affiliate.PlatformCodePinduoduo, "link convert requires a configured or explicit pid")
	}

	params := affiliate.Params{
		"p_id":            pid,
		"generate_we_app": req.GenerateWeApp,
	}
	if err := setGoodsList(params, req.GoodsSignList, req.GoodsIDList, "link convert"); err != nil {
		return nil, err
	}

	return c.Call(ctx, PinduoduoTypePromotionURLGen, params)
}

// ShopSearch lists malls (pdd.ddk.mall.list)
func (c *PinduoduoClient) ShopSearch(ctx context.Context, req *affiliate.ShopSearchRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.ShopSearchRequest{}
	}

	params := affiliate.Params{
		"page":      affiliate.NormalizePage(req.Page),
		"page_size": affiliate.NormalizePageSize(req.PageSize),
	}
	if req.Keyword != "" {
		params["keyword"] = req.Keyword
	}

	return c.Call(ctx, PinduoduoTypeMallList, params)
}

// ItemDetail fetches goods detail (pdd.ddk.goods.detail)
func (c *PinduoduoClient) ItemDetail(ctx context.Context, req *affiliate.ItemDetailRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.ItemDetailRequest{}
	}

	params := affiliate.Params{}
	if err := setGoodsList(params, req.GoodsSignList, req.GoodsIDList, "item detail"); err != nil {
		return nil, err
	}

	return c.Call(ctx, PinduoduoTypeGoodsDetail, params)
}

// Call invokes any Duoduojinbao API type.
// The envelope is merged with params; the merged set is signed and sent.
// Params win on collisions, so a per-user access_token can be passed here.
func (c *PinduoduoClient) Call(ctx context.Context, apiType string, params affiliate.Params) (*affiliate.Result, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if err := requireMethod(affiliate.PlatformCodePinduoduo, apiType); err != nil {
		return nil, err
	}

	envelope := affiliate.Params{
		"type":      apiType,
		"client_id": c.config.ClientID,
		"timestamp": strconv.FormatInt(clock(c.now).Unix(), 10),
		"data_type": pinduoduoDataType,
	}
	if c.config.AccessToken != "" {
		envelope["access_token"] = c.config.AccessToken
	}

	return dispatch(ctx, c.http, signedCall{
		platform: affiliate.PlatformCodePinduoduo,
		gateway:  c.config.GatewayURL(),
		method:   apiType,
		secret:   c.config.ClientSecret,
		params:   envelope.Merge(params),
		signer:   c.signer,
		parse:    ParsePinduoduoEnvelope,
	})
}

// setGoodsList sets goods_sign_list, or goods_id_list when no sign is given
func setGoodsList(params affiliate.Params, signs, ids []string, op string) error {
	if signs = affiliate.CompactStrings(signs); len(signs) > 0 {
		params["goods_sign_list"] = signs
		return nil
	}
	if ids = affiliate.CompactStrings(ids); len(ids) > 0 {
		params["goods_id_list"] = ids
		return nil
	}
	return invalidParams(affiliate.PlatformCodePinduoduo, "%s requires goods_sign_list or goods_id_list", op)
}
