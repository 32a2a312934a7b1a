package platform

// Config is the credential set shared by the UnionClient
type Config struct {
	Taobao    TaobaoConfig    `mapstructure:"taobao"`
	Pinduoduo PinduoduoConfig `mapstructure:"pinduoduo"`
	JD        JDConfig        `mapstructure:"jd"`
}

// HasTaobao reports whether Taobao credentials are present
func (c Config) HasTaobao() bool {
	return c.Taobao.Configured()
}

// HasPinduoduo reports whether Pinduoduo credentials are present
func (c Config) HasPinduoduo() bool {
	return c.Pinduoduo.Configured()
}

// HasJD reports whether JD credentials are present
func (c Config) HasJD() bool {
	return c.JD.Configured()
}
