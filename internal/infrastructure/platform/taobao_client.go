package platform

import (
	"context"
	"time"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// Taobao Union API methods
const (
	TaobaoMethodMaterialSearch  = "taobao.tbk.dg.material.optional"
	TaobaoMethodTpwdConvert     = "taobao.tbk.sc.tpwd.convert"
	TaobaoMethodItemCouponGet   = "taobao.tbk.dg.item.coupon.get"
	TaobaoMethodOptimusMaterial = "taobao.tbk.dg.optimus.material"
	TaobaoMethodItemInfoGet     = "taobao.tbk.item.info.get"
)

const (
	taobaoAPIVersion = "2.0"
	taobaoSignMethod = "md5"
	// taobaoShopMaterialID is the optimus material used for shop search
	taobaoShopMaterialID = "4093"
	// taobaoWirelessPlatform is the item.info.get platform flag for mobile links
	taobaoWirelessPlatform = 2
)

// TaobaoClient calls the Taobao Union open API
type TaobaoClient struct {
	config TaobaoConfig
	http   HTTPClient
	signer Signer
	now    func() time.Time
}

// Ensure TaobaoClient implements affiliate.Platform
var _ affiliate.Platform = (*TaobaoClient)(nil)

// NewTaobaoClient creates a Taobao Union client.
// Credentials are checked when an operation runs, not here.
func NewTaobaoClient(config TaobaoConfig, httpClient HTTPClient) *TaobaoClient {
	return &TaobaoClient{
		config: config,
		http:   httpClient,
		signer: NewTaobaoSigner(),
		now:    time.Now,
	}
}

// PlatformCode returns the platform code for Taobao
func (c *TaobaoClient) PlatformCode() affiliate.PlatformCode {
	return affiliate.PlatformCodeTaobao
}

// MaterialSearch searches promotable goods (taobao.tbk.dg.material.optional)
func (c *TaobaoClient) MaterialSearch(ctx context.Context, req *affiliate.MaterialSearchRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.MaterialSearchRequest{}
	}

	params := affiliate.Params{
		"page_no":   affiliate.NormalizePage(req.Page),
		"page_size": affiliate.NormalizePageSize(req.PageSize),
	}
	c.setAdzone(params, req.AdzoneID)
	if req.Keyword != "" {
		params["q"] = req.Keyword
	}
	if req.MaterialID != "" {
		params["material_id"] = req.MaterialID
	}
	if req.Cat != "" {
		params["cat"] = req.Cat
	}
	if req.Sort != "" {
		params["sort"] = req.Sort
	}
	if req.HasCoupon != nil {
		params["has_coupon"] = *req.HasCoupon
	}

	return c.Call(ctx, TaobaoMethodMaterialSearch, params)
}

// LinkConvert converts a tao password, item id or URL into a promotion link.
// Content wins over ItemID, which wins over URL.
func (c *TaobaoClient) LinkConvert(ctx context.Context, req *affiliate.LinkConvertRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.LinkConvertRequest{}
	}

	params := affiliate.Params{}
	c.setAdzone(params, req.AdzoneID)
	if c.config.Session != "" {
		params["session"] = c.config.Session
	}

	switch {
	case req.Content != "":
		params["content"] = req.Content
		return c.Call(ctx, TaobaoMethodTpwdConvert, params)
	case req.ItemID != "":
		params["item_id"] = req.ItemID
		return c.Call(ctx, TaobaoMethodItemCouponGet, params)
	case req.URL != "":
		params["content"] = req.URL
		return c.Call(ctx, TaobaoMethodTpwdConvert, params)
	default:
		return nil, invalidParams(affiliate.PlatformCodeTaobao, "link convert requires content, item_id or url")
	}
}

// ShopSearch searches shop material (taobao.tbk.dg.optimus.material)
func (c *TaobaoClient) ShopSearch(ctx context.Context, req *affiliate.ShopSearchRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.ShopSearchRequest{}
	}

	materialID := req.MaterialID
	if materialID == "" {
		materialID = taobaoShopMaterialID
	}

	params := affiliate.Params{
		"page_no":     affiliate.NormalizePage(req.Page),
		"page_size":   affiliate.NormalizePageSize(req.PageSize),
		"material_id": materialID,
	}
	c.setAdzone(params, req.AdzoneID)
	if req.Keyword != "" {
		params["keyword"] = req.Keyword
	}

	return c.Call(ctx, TaobaoMethodOptimusMaterial, params)
}

// ItemDetail fetches item info by num_iids (taobao.tbk.item.info.get)
func (c *TaobaoClient) ItemDetail(ctx context.Context, req *affiliate.ItemDetailRequest) (*affiliate.Result, error) {
	if req == nil {
		req = &affiliate.ItemDetailRequest{}
	}

	numIids := req.JoinedItemIDs()
	if numIids == "" {
		return nil, invalidParams(affiliate.PlatformCodeTaobao, "item detail requires num_iids or item_id")
	}

	platform := req.Platform
	if platform == 0 {
		platform = taobaoWirelessPlatform
	}

	return c.Call(ctx, TaobaoMethodItemInfoGet, affiliate.Params{
		"num_iids": numIids,
		"platform": platform,
	})
}

// Call invokes any Taobao API method.
// The envelope and params are signed together and sent as one form body.
// A business param with the same name as an envelope field (e.g. a per-user
// session) replaces the configured value.
func (c *TaobaoClient) Call(ctx context.Context, method string, params affiliate.Params) (*affiliate.Result, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if err := requireMethod(affiliate.PlatformCodeTaobao, method); err != nil {
		return nil, err
	}

	envelope := affiliate.Params{
		"method":      method,
		"app_key":     c.config.AppKey,
		"timestamp":   clock(c.now).Format(timestampLayout),
		"v":           taobaoAPIVersion,
		"sign_method": taobaoSignMethod,
		"format":      "json",
	}
	if c.config.Session != "" {
		envelope["session"] = c.config.Session
	}

	return dispatch(ctx, c.http, signedCall{
		platform: affiliate.PlatformCodeTaobao,
		gateway:  c.config.GatewayURL(),
		method:   method,
		secret:   c.config.AppSecret,
		params:   envelope.Merge(params),
		signer:   c.signer,
		parse:    ParseTaobaoEnvelope,
	})
}

// setAdzone applies override -> configured adzone_id -> pid adzone.
// No adzone_id is sent when none is known.
func (c *TaobaoClient) setAdzone(params affiliate.Params, override string) {
	adzone := override
	if adzone == "" {
		adzone = c.config.DefaultAdzoneID()
	}
	if adzone != "" {
		params["adzone_id"] = adzone
	}
}
