package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/voicekit/focusd/internal/focus"
)

// Config is the resolved configuration for the focus daemon.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Activity ActivityConfig `mapstructure:"activity" yaml:"activity"`
	Channels ChannelsConfig `mapstructure:"channels" yaml:"channels"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" yaml:"port"`
}

type ActivityConfig struct {
	// History is how many focus transitions the activity tracker retains.
	History int `mapstructure:"history" yaml:"history"`
}

// ChannelsConfig holds the channel tables, one per modality. Each table
// feeds its own focus manager.
type ChannelsConfig struct {
	Audio  []focus.ChannelConfig `mapstructure:"audio" yaml:"audio"`
	Visual []focus.ChannelConfig `mapstructure:"visual" yaml:"visual"`
}

func defaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8085"},
		Activity: ActivityConfig{History: 100},
		Channels: ChannelsConfig{
			Audio:  focus.DefaultAudioChannels(),
			Visual: focus.DefaultVisualChannels(),
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	return os.ExpandEnv("$HOME/.config/focusd.yaml")
}

// Load reads the config file at path and fills anything left unset from
// the defaults. A missing file is not an error: you get the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	merged := mergeConfigs(cfg, loaded)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return merged, nil
}

// mergeConfigs overlays the values present in overlay onto base. A channel
// table in the overlay replaces the base table wholesale: partial channel
// lists would silently change arbitration priorities.
func mergeConfigs(base, overlay *Config) *Config {
	result := *base
	if overlay.Server.Port != "" {
		result.Server.Port = overlay.Server.Port
	}
	if overlay.Activity.History > 0 {
		result.Activity.History = overlay.Activity.History
	}
	if len(overlay.Channels.Audio) > 0 {
		result.Channels.Audio = overlay.Channels.Audio
	}
	if len(overlay.Channels.Visual) > 0 {
		result.Channels.Visual = overlay.Channels.Visual
	}
	return &result
}

// Validate rejects configs the arbitration engine could not construct
// sensibly. Duplicate names or priorities inside a table are reported
// here rather than silently dropped later.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, validateTable("channels.audio", c.Channels.Audio)...)
	problems = append(problems, validateTable("channels.visual", c.Channels.Visual)...)
	if len(c.Channels.Audio) == 0 && len(c.Channels.Visual) == 0 {
		problems = append(problems, "no channels configured")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func validateTable(table string, configs []focus.ChannelConfig) []string {
	var problems []string
	names := make(map[string]bool)
	priorities := make(map[uint]string)
	for i, cc := range configs {
		if cc.Name == "" {
			problems = append(problems, fmt.Sprintf("%s[%d]: empty channel name", table, i))
			continue
		}
		if names[cc.Name] {
			problems = append(problems, fmt.Sprintf("%s: duplicate channel name %q", table, cc.Name))
		}
		names[cc.Name] = true
		if other, ok := priorities[cc.Priority]; ok {
			problems = append(problems, fmt.Sprintf("%s: channels %q and %q share priority %d", table, other, cc.Name, cc.Priority))
		}
		priorities[cc.Priority] = cc.Name
	}
	return problems
}

// WriteDefault writes the default configuration to path in YAML,
// creating parent directories as needed. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	if path == "" {
		return fmt.Errorf("no config file path specified")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	header := "# focusd configuration\n# Lower priority value = more important channel.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Dump renders the config as YAML for display.
func (c *Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}
