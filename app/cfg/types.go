package cfg

type Cfg struct {
	// Server configuration
	Port    string
	BaseUrl string

	// Upstream configuration
	SourceURL string
	UserAgent string

	// Rendering configuration
	ChannelsFile string
	Timezone     string

	Debug   bool
	Version string
}
