package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pulsebot/internal/domain"
)

// channelsFile is the on-disk shape of the channel map.
type channelsFile struct {
	Channels []domain.ChannelConfig `yaml:"channels"`
}

// LoadChannels reads the YAML channel map and returns enabled entries keyed
// by platform channel id. Disabled entries are dropped here so the core never
// sees them.
func LoadChannels(path string) (map[string]domain.ChannelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channels file: %w", err)
	}

	var f channelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse channels file: %w", err)
	}

	out := make(map[string]domain.ChannelConfig, len(f.Channels))
	for _, ch := range f.Channels {
		if ch.ChannelID == "" || ch.Name == "" {
			return nil, fmt.Errorf("channel entry missing name or channelId: %+v", ch)
		}
		if !ch.Enabled {
			continue
		}
		switch ch.ResponseType {
		case domain.ResponseWelcome, domain.ResponseAnalyticsOnly:
		default:
			return nil, fmt.Errorf("channel %s: unknown responseType %q", ch.Name, ch.ResponseType)
		}
		out[ch.ChannelID] = ch
	}
	return out, nil
}

// DefaultChannelsYAML is the template written by `pulsebot init`.
const DefaultChannelsYAML = `# Channel map: platform channel id -> logical name + handling mode.
# responseType: welcome | analytics-only
channels:
  - name: welcome
    channelId: "000000000000000000"
    responseType: welcome
    enabled: false
  - name: general
    channelId: "000000000000000000"
    responseType: analytics-only
    enabled: false
  - name: help
    channelId: "000000000000000000"
    responseType: analytics-only
    enabled: false
`
