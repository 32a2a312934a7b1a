package platform

import "github.com/shopunion/client/internal/domain/affiliate"

// JDGateway is the JD Union production gateway
const JDGateway = "https://api.jd.com/routerjson"

// JDConfig holds the JD Union credentials
type JDConfig struct {
	AppKey    string `mapstructure:"app_key" validate:"required"`
	AppSecret string `mapstructure:"app_secret" validate:"required"`
	// UnionID and PositionID attribute converted links
	UnionID    string `mapstructure:"union_id"`
	PositionID string `mapstructure:"position_id"`
	// Gateway overrides JDGateway
	Gateway string `mapstructure:"gateway" validate:"omitempty,url"`
}

// Configured reports whether both credentials are present
func (c JDConfig) Configured() bool {
	return c.AppKey != "" && c.AppSecret != ""
}

// Validate checks credentials and the gateway URL
func (c JDConfig) Validate() error {
	return validateConfig(affiliate.PlatformCodeJD, c)
}

// GatewayURL returns the configured gateway or the default one
func (c JDConfig) GatewayURL() string {
	if c.Gateway != "" {
		return c.Gateway
	}
	return JDGateway
}
