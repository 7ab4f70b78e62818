package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all srt settings.
type Config struct {
	Tun       TunConfig       `yaml:"tun"`
	Accessory AccessoryConfig `yaml:"accessory"`
	Relay     RelayConfig     `yaml:"relay"`
	Server    ServerConfig    `yaml:"server"`
}

// TunConfig describes the virtual network interface side of the relay.
type TunConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"` // CIDR, empty leaves the link unconfigured
	MTU     int    `yaml:"mtu"`
	FD      int    `yaml:"fd"` // inherited descriptor, -1 opens a device
}

// AccessoryConfig describes the transport side of the relay.
type AccessoryConfig struct {
	// Path is a character device, "unix:/path/to.sock" or "tcp:host:port".
	Path string `yaml:"path"`
	FD   int    `yaml:"fd"`
}

// RelayConfig tunes the forwarding session.
type RelayConfig struct {
	StopTimeout time.Duration `yaml:"stop_timeout"`
	Autostart   bool          `yaml:"autostart"`
}

// ServerConfig holds settings only used by `srt serve`.
type ServerConfig struct {
	APIPort       int `yaml:"api_port"`
	DashboardPort int `yaml:"dashboard_port"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Tun: TunConfig{
			Name:    "srt%d",
			Address: "10.1.1.1/24",
			MTU:     1500,
			FD:      -1,
		},
		Accessory: AccessoryConfig{
			Path: "/dev/usb_accessory",
			FD:   -1,
		},
		Relay: RelayConfig{
			StopTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			APIPort:       50061,
			DashboardPort: 8090,
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Tun.FD < 0 {
		if c.Tun.Name == "" {
			return errors.New("tun.name is required when tun.fd is not set")
		}
		if c.Tun.MTU <= 0 {
			return fmt.Errorf("tun.mtu must be positive, got %d", c.Tun.MTU)
		}
		if c.Tun.Address != "" {
			if _, err := netip.ParsePrefix(c.Tun.Address); err != nil {
				return fmt.Errorf("tun.address: %w", err)
			}
		}
	}
	if c.Accessory.FD < 0 && c.Accessory.Path == "" {
		return errors.New("accessory.path is required when accessory.fd is not set")
	}
	if c.Relay.StopTimeout < 0 {
		return fmt.Errorf("relay.stop_timeout must not be negative, got %s", c.Relay.StopTimeout)
	}
	return nil
}

// Dir returns the platform-specific config directory.
//
//	Linux:   /etc/srt
//	Windows: C:\ProgramData\srt
//
// Override with SRT_CONFIG_DIR environment variable.
func Dir() string {
	if d := os.Getenv("SRT_CONFIG_DIR"); d != "" {
		return d
	}
	if runtime.GOOS == "windows" {
		return `C:\ProgramData\srt`
	}
	return "/etc/srt"
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the YAML config file from the platform-specific path.
// If the file does not exist, it returns the default configuration.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(FilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", FilePath(), err)
	}

	return cfg, nil
}

// Save writes the configuration to the platform-specific YAML file.
func Save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(FilePath(), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
