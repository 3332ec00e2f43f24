// Package config defines the al1905d configuration (spec.md section 6)
// and its YAML loader, in the style of tmux-ssh-manager's
// pkg/manager/config.go: a plain struct with yaml tags, a Load
// that reads and validates in one step, and an environment-variable
// overlay applied after parsing — the pattern jra3-system-agent's
// NewManager uses for HOST_PROC/HOST_SYS (SPEC_FULL.md section 11).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/prplmesh/go1905/internal/datamodel"
	goerrors "github.com/prplmesh/go1905/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the recognized option set from spec.md section 6.
type Config struct {
	ALMacAddress string   `yaml:"al_mac_address"`
	Interfaces   []string `yaml:"interfaces_list"`
	MapWholeNetwork bool  `yaml:"map_whole_network,omitempty"`

	Registrar      bool     `yaml:"registrar,omitempty"`
	RegistrarBands []string `yaml:"registrar_bands,omitempty"`
	RegistrarSSID  string   `yaml:"registrar_ssid,omitempty"`
	RegistrarKey   string   `yaml:"registrar_key,omitempty"`
	RegistrarAuthMode string `yaml:"registrar_auth_mode,omitempty"`

	BackhaulSSID string `yaml:"backhaul_ssid,omitempty"`
	BackhaulKey  string `yaml:"backhaul_key,omitempty"`

	Verbosity int `yaml:"verbosity,omitempty"`
}

// Load reads and parses the YAML file at path, applies the environment
// overlay, and validates the result. A missing or malformed file, or a
// validation failure, returns a goerrors.ConfigError (spec.md section
// 7: "fail-fast at startup with exit code 1").
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.ConfigError("read "+path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, goerrors.ConfigError("parse "+path, err)
	}
	c.applyEnvOverlay()
	if err := c.Validate(); err != nil {
		return nil, goerrors.ConfigError("validate "+path, err)
	}
	return &c, nil
}

// applyEnvOverlay lets AL1905D_* environment variables override fields
// already loaded from YAML, the same pattern jra3-system-agent's
// NewManager uses to overlay HOST_PROC/HOST_SYS onto its defaults.
func (c *Config) applyEnvOverlay() {
	if v := os.Getenv("AL1905D_AL_MAC_ADDRESS"); v != "" {
		c.ALMacAddress = v
	}
	if v := os.Getenv("AL1905D_INTERFACES_LIST"); v != "" {
		c.Interfaces = strings.Split(v, ",")
	}
	if v := os.Getenv("AL1905D_VERBOSITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Verbosity = n
		}
	}
	if v := os.Getenv("AL1905D_REGISTRAR"); v != "" {
		c.Registrar = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate checks the contradictory-option cases spec.md section 7
// names as fail-fast config errors: a missing AL MAC, an empty
// interface list, an out-of-range verbosity, or registrar credentials
// inconsistent with the registrar flag.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ALMacAddress) == "" {
		return fmt.Errorf("al_mac_address is required")
	}
	if _, err := ParseMAC(c.ALMacAddress); err != nil {
		return fmt.Errorf("al_mac_address: %w", err)
	}
	if len(c.Interfaces) == 0 {
		return fmt.Errorf("interfaces_list must name at least one interface")
	}
	if c.Verbosity < 0 || c.Verbosity > 3 {
		return fmt.Errorf("verbosity must be 0..3, got %d", c.Verbosity)
	}
	if c.Registrar {
		if len(c.RegistrarBands) == 0 {
			return fmt.Errorf("registrar=true requires at least one registrar_bands entry")
		}
		for _, b := range c.RegistrarBands {
			if _, err := ParseBand(b); err != nil {
				return fmt.Errorf("registrar_bands: %w", err)
			}
		}
		if _, err := ParseAuthMode(c.RegistrarAuthMode); err != nil {
			return fmt.Errorf("registrar_auth_mode: %w", err)
		}
		if ParseAuthModeMust(c.RegistrarAuthMode) == datamodel.AuthWPA2PSK && c.RegistrarKey == "" {
			return fmt.Errorf("registrar_auth_mode=wpa2psk requires registrar_key")
		}
	}
	return nil
}

// ParseMAC parses a colon-separated MAC address string into 6 bytes.
func ParseMAC(s string) ([6]byte, error) {
	var out [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return out, fmt.Errorf("malformed mac address %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return out, fmt.Errorf("malformed mac address %q: %w", s, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// ParseBand maps a config string to a datamodel.Band.
func ParseBand(s string) (datamodel.Band, error) {
	switch strings.TrimSpace(s) {
	case "2.4", "2.4GHz", "2.4ghz":
		return datamodel.Band(0), nil
	case "5", "5GHz", "5ghz":
		return datamodel.Band(1), nil
	case "60", "60GHz", "60ghz":
		return datamodel.Band(2), nil
	default:
		return 0, fmt.Errorf("unrecognized band %q", s)
	}
}

// ParseAuthMode maps a config string to a datamodel.AuthMode.
func ParseAuthMode(s string) (datamodel.AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "open":
		return datamodel.AuthOpen, nil
	case "wpa2":
		return datamodel.AuthWPA2, nil
	case "wpa2psk":
		return datamodel.AuthWPA2PSK, nil
	default:
		return 0, fmt.Errorf("unrecognized auth mode %q", s)
	}
}

// ParseAuthModeMust is ParseAuthMode without the error, for call sites
// that already validated s.
func ParseAuthModeMust(s string) datamodel.AuthMode {
	m, _ := ParseAuthMode(s)
	return m
}
