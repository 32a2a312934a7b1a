package platform

import "github.com/shopunion/client/internal/domain/affiliate"

// PinduoduoGateway is the Duoduojinbao production gateway
const PinduoduoGateway = "https://gw-api.pinduoduo.com/router"

// PinduoduoConfig holds the Duoduojinbao credentials
type PinduoduoConfig struct {
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" validate:"required"`
	// PID is the default promotion position for link conversion
	PID string `mapstructure:"pid"`
	// AccessToken is the authorized user token, sent when present
	AccessToken string `mapstructure:"access_token"`
	// Gateway overrides PinduoduoGateway
	Gateway string `mapstructure:"gateway" validate:"omitempty,url"`
}

// Configured reports whether both credentials are present
func (c PinduoduoConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Validate checks credentials and the gateway URL
func (c PinduoduoConfig) Validate() error {
	return validateConfig(affiliate.PlatformCodePinduoduo, c)
}

// GatewayURL returns the configured gateway or the default one
func (c PinduoduoConfig) GatewayURL() string {
	if c.Gateway != "" {
		return c.Gateway
	}
	return PinduoduoGateway
}
