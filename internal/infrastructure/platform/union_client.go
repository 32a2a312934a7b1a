package platform

import (
	"fmt"
	"sync"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// UnionClient is the entry point to all affiliate platforms.
// Each platform client is built on first access and reused afterwards.
// Missing credentials surface only when an operation runs.
type UnionClient struct {
	config Config
	http   HTTPClient

	taobaoOnce    sync.Once
	taobao        *TaobaoClient
	pinduoduoOnce sync.Once
	pinduoduo     *PinduoduoClient
	jdOnce        sync.Once
	jd            *JDClient
}

// NewUnionClient creates the facade. A nil httpClient selects the
// default resty transport.
func NewUnionClient(config Config, httpClient HTTPClient) *UnionClient {
	if httpClient == nil {
		httpClient = NewRestyHTTPClient(DefaultTransportConfig())
	}
	return &UnionClient{
		config: config,
		http:   httpClient,
	}
}

// Config returns the shared configuration
func (u *UnionClient) Config() Config {
	return u.config
}

// Taobao returns the Taobao Union client
func (u *UnionClient) Taobao() *TaobaoClient {
	u.taobaoOnce.Do(func() {
		u.taobao = NewTaobaoClient(u.config.Taobao, u.http)
	})
	return u.taobao
}

// Pinduoduo returns the Duoduojinbao client
func (u *UnionClient) Pinduoduo() *PinduoduoClient {
	u.pinduoduoOnce.Do(func() {
		u.pinduoduo = NewPinduoduoClient(u.config.Pinduoduo, u.http)
	})
	return u.pinduoduo
}

// JD returns the JD Union client
func (u *UnionClient) JD() *JDClient {
	u.jdOnce.Do(func() {
		u.jd = NewJDClient(u.config.JD, u.http)
	})
	return u.jd
}

// Platform returns the client for code behind the shared operation contract
func (u *UnionClient) Platform(code affiliate.PlatformCode) (affiliate.Platform, error) {
	switch code {
	case affiliate.PlatformCodeTaobao:
		return u.Taobao(), nil
	case affiliate.PlatformCodePinduoduo:
		return u.Pinduoduo(), nil
	case affiliate.PlatformCodeJD:
		return u.JD(), nil
	default:
		return nil, fmt.Errorf("%w: %q", affiliate.ErrUnknownPlatform, code)
	}
}
