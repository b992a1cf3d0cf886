package config

import (
	"os"
	"path/filepath"
	"testing"

	"pulsebot/internal/domain"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_BadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.General.MaxConcurrentMessages = 0 },
		func(c *Config) { c.General.LogLevel = "verbose" },
		func(c *Config) { c.Persistence.MessageDebounceSeconds = 0 },
		func(c *Config) { c.Memory.RetentionHours = 0 },
		func(c *Config) { c.Discord.BackfillLimit = -1 },
	}
	for i, mutate := range cases {
		cfg := Defaults()
		mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Defaults()
	cfg.OpenAI.Model = "gpt-4o"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.OpenAI.Model != "gpt-4o" {
		t.Errorf("model lost in round trip: %q", loaded.OpenAI.Model)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("PULSEBOT_TEST_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Defaults()
	cfg.OpenAI.APIKey = "${PULSEBOT_TEST_KEY}"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.OpenAI.APIKey != "sk-test" {
		t.Errorf("env not expanded: %q", loaded.OpenAI.APIKey)
	}
}

func TestLoadChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yaml")
	content := `channels:
  - name: welcome
    channelId: "111"
    responseType: welcome
    enabled: true
  - name: general
    channelId: "222"
    responseType: analytics-only
    enabled: true
  - name: off-topic
    channelId: "333"
    responseType: analytics-only
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	chans, err := LoadChannels(path)
	if err != nil {
		t.Fatalf("load channels: %v", err)
	}
	if len(chans) != 2 {
		t.Fatalf("disabled channels must be dropped, got %d entries", len(chans))
	}
	if chans["111"].ResponseType != domain.ResponseWelcome {
		t.Errorf("welcome channel mode wrong: %+v", chans["111"])
	}
	if _, ok := chans["333"]; ok {
		t.Error("disabled channel leaked into the map")
	}
}

func TestLoadChannels_RejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yaml")
	content := `channels:
  - name: welcome
    channelId: "111"
    responseType: auto-reply
    enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChannels(path); err == nil {
		t.Error("expected error for unknown responseType")
	}
}

func TestLoadChannels_DefaultTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte(DefaultChannelsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	chans, err := LoadChannels(path)
	if err != nil {
		t.Fatalf("template must parse: %v", err)
	}
	if len(chans) != 0 {
		t.Errorf("template entries are disabled, expected empty map, got %d", len(chans))
	}
}
