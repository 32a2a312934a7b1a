package platform

import (
	"strings"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// TaobaoGateway is the Taobao Union production gateway
const TaobaoGateway = "https://eco.taobao.com/router/rest"

// TaobaoConfig holds the Taobao Union credentials
type TaobaoConfig struct {
	// AppKey is the application key from the Taobao open platform
	AppKey string `mapstructure:"app_key" validate:"required"`
	// AppSecret is the application secret from the Taobao open platform
	AppSecret string `mapstructure:"app_secret" validate:"required"`
	// PID is the promotion position, mm_<member>_<site>_<adzone>
	PID string `mapstructure:"pid"`
	// AdzoneID overrides the adzone derived from PID
	AdzoneID string `mapstructure:"adzone_id"`
	// Session is the authorized user session key
	Session string `mapstructure:"session"`
	// Gateway overrides TaobaoGateway
	Gateway string `mapstructure:"gateway" validate:"omitempty,url"`
}

// Configured reports whether both credentials are present
func (c TaobaoConfig) Configured() bool {
	return c.AppKey != "" && c.AppSecret != ""
}

// Validate checks credentials and the gateway URL
func (c TaobaoConfig) Validate() error {
	return validateConfig(affiliate.PlatformCodeTaobao, c)
}

// GatewayURL returns the configured gateway or the default one
func (c TaobaoConfig) GatewayURL() string {
	if c.Gateway != "" {
		return c.Gateway
	}
	return TaobaoGateway
}

// DefaultAdzoneID returns AdzoneID, or the adzone parsed from PID
func (c TaobaoConfig) DefaultAdzoneID() string {
	if c.AdzoneID != "" {
		return c.AdzoneID
	}
	return ParseAdzoneIDFromPID(c.PID)
}

// ParseAdzoneIDFromPID returns the last underscore-delimited segment of pid.
// "mm_111_222_333" yields "333"; an empty pid yields "".
func ParseAdzoneIDFromPID(pid string) string {
	if pid == "" {
		return ""
	}
	parts := strings.Split(pid, "_")
	return parts[len(parts)-1]
}
