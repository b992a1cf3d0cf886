package domain

// ResponseType selects how inbound messages on a channel are handled.
type ResponseType string

const (
	ResponseWelcome       ResponseType = "welcome"
	ResponseAnalyticsOnly ResponseType = "analytics-only"
)

// ChannelConfig maps a platform channel id to its logical name and handling
// mode. Loaded from the channel map file; read-only to the core.
type ChannelConfig struct {
	Name         string       `yaml:"name"`
	ChannelID    string       `yaml:"channelId"`
	ResponseType ResponseType `yaml:"responseType"`
	Enabled      bool         `yaml:"enabled"`
}
