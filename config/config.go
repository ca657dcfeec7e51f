package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/c360/semreason/pkg/security"
	"github.com/c360/semreason/types"
)

// ComponentConfigs maps component instance names (e.g. "reason-main") to
// their configurations. An instance runs only when its factory is
// registered AND its entry here is enabled.
type ComponentConfigs map[string]types.ComponentConfig

// Config is the complete application configuration: platform identity,
// platform-wide security, the NATS connection, and the service and
// component rosters. Version is a semver string that gates KV sync.
type Config struct {
	Version    string               `json:"version"`
	Platform   PlatformConfig       `json:"platform"`
	Security   security.Config      `json:"security,omitempty"`
	NATS       NATSConfig           `json:"nats"`
	Services   types.ServiceConfigs `json:"services"`
	Components ComponentConfigs     `json:"components"`
}

// SafeConfig guards a Config for concurrent readers and the KV watcher
// that replaces it.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig wraps a config for thread-safe access. A nil config is
// replaced with an empty one.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validating it.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

// Clone deep-copies the configuration through a JSON round trip, which
// covers the nested maps and raw messages a field-wise copy would share.
// Marshal failures fall back to a shallow copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// PlatformConfig identifies one reasoning platform deployment and what it
// can do. Org and ID name the deployment; InstanceID distinguishes
// federated instances of the same platform.
type PlatformConfig struct {
	Org          string   `json:"org"`                    // organization namespace (e.g. "c360", "eurlex")
	ID           string   `json:"id"`                     // platform identifier
	Type         string   `json:"type"`                   // edge, regional, central
	Region       string   `json:"region,omitempty"`       // us_east, eu_west, apac
	Capabilities []string `json:"capabilities,omitempty"` // reasoning, ingest, storage, ...

	InstanceID  string `json:"instance_id,omitempty"` // e.g. "reasoner-alpha", "dev-local"
	Environment string `json:"environment,omitempty"` // prod, dev, test
}

// NATSConfig defines NATS connection settings.
type NATSConfig struct {
	URLs          []string        `json:"urls,omitempty"`
	MaxReconnects int             `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration   `json:"reconnect_wait,omitempty"`
	Username      string          `json:"username,omitempty"`
	Password      string          `json:"password,omitempty"`
	Token         string          `json:"token,omitempty"`
	TLS           NATSTLSConfig   `json:"tls,omitempty"`
	JetStream     JetStreamConfig `json:"jetstream,omitempty"`
}

// UnmarshalJSON accepts reconnect_wait as a Go duration string ("2s") or
// as nanoseconds, so hand-written files stay readable while KV-stored
// configs round-trip numerically.
func (n *NATSConfig) UnmarshalJSON(data []byte) error {
	type alias NATSConfig
	aux := struct {
		ReconnectWait any `json:"reconnect_wait"`
		*alias
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch v := aux.ReconnectWait.(type) {
	case nil:
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("nats.reconnect_wait: %w", err)
		}
		n.ReconnectWait = d
	case float64:
		n.ReconnectWait = time.Duration(v)
	default:
		return fmt.Errorf("nats.reconnect_wait: unsupported type %T", v)
	}
	return nil
}

// NATSTLSConfig for secure NATS connections.
type NATSTLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
	CAFile   string `json:"ca_file,omitempty"`
}

// JetStreamConfig for JetStream settings.
type JetStreamConfig struct {
	Enabled           bool   `json:"enabled"`
	Domain            string `json:"domain,omitempty"`
	MaxMemory         int64  `json:"max_memory,omitempty"`
	MaxFileStore      int64  `json:"max_file_store,omitempty"`
	RetentionPolicy   string `json:"retention_policy,omitempty"`
	ReplicationFactor int    `json:"replication_factor,omitempty"`
}

// Validate checks platform identity, security settings, and every
// component entry. Org is normalized to lowercase as a side effect since
// it becomes a NATS subject token.
func (c *Config) Validate() error {
	if c.Platform.Org == "" {
		return errors.New("platform.org is required")
	}
	c.Platform.Org = strings.ToLower(c.Platform.Org)

	if !isValidNATSSubjectPart(c.Platform.Org) {
		return fmt.Errorf(
			"platform.org '%s' is not valid for NATS subjects (must be alphanumeric with dots, dashes, underscores)",
			c.Platform.Org,
		)
	}

	if c.Platform.ID == "" {
		return errors.New("platform.id is required")
	}

	if err := c.validateSecurity(); err != nil {
		return fmt.Errorf("security configuration: %w", err)
	}

	for instanceName, config := range c.Components {
		if instanceName == "" {
			return errors.New("component instance name cannot be empty")
		}
		if err := config.Validate(); err != nil {
			return fmt.Errorf("component %s: %w", instanceName, err)
		}
	}

	return nil
}

// isValidNATSSubjectPart reports whether s can appear as one token of a
// NATS subject: alphanumerics, dots, dashes, and underscores only.
func isValidNATSSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			r != '-' && r != '_' && r != '.' {
			return false
		}
	}
	return true
}

// validateSecurity checks the TLS halves of the security block: enabled
// server TLS must name existing cert and key files, client CA files must
// exist, and any pinned minimum versions must be known.
func (c *Config) validateSecurity() error {
	server := c.Security.TLS.Server
	if server.Enabled {
		if server.CertFile == "" {
			return errors.New("tls.server.cert_file is required when TLS is enabled")
		}
		if server.KeyFile == "" {
			return errors.New("tls.server.key_file is required when TLS is enabled")
		}
		if _, err := os.Stat(server.CertFile); err != nil {
			return fmt.Errorf("tls.server.cert_file: %w", err)
		}
		if _, err := os.Stat(server.KeyFile); err != nil {
			return fmt.Errorf("tls.server.key_file: %w", err)
		}
		if server.MinVersion != "" {
			if err := validateTLSVersion(server.MinVersion); err != nil {
				return fmt.Errorf("tls.server.min_version: %w", err)
			}
		}
	}

	client := c.Security.TLS.Client
	for i, caFile := range client.CAFiles {
		if _, err := os.Stat(caFile); err != nil {
			return fmt.Errorf("tls.client.ca_files[%d]: %w", i, err)
		}
	}

	if client.InsecureSkipVerify {
		_, _ = fmt.Fprintf(
			os.Stderr,
			"WARNING: TLS certificate verification is disabled (insecure_skip_verify=true). This should only be used in development/testing!\n",
		)
	}

	if client.MinVersion != "" {
		if err := validateTLSVersion(client.MinVersion); err != nil {
			return fmt.Errorf("tls.client.min_version: %w", err)
		}
	}

	return nil
}

func validateTLSVersion(version string) error {
	switch version {
	case "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS version %q (must be \"1.2\" or \"1.3\")", version)
	}
}

// SaveToFile writes the configuration as indented JSON through the same
// path screening reads use. Nil maps are written as empty objects so the
// saved file validates against the file schema on reload.
func (c *Config) SaveToFile(path string) error {
	out := *c
	if out.Services == nil {
		out.Services = types.ServiceConfigs{}
	}
	if out.Components == nil {
		out.Components = ComponentConfigs{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return safeWriteFile(path, data)
}

// GetOrg returns the organization from platform config.
func (c *Config) GetOrg() string {
	return c.Platform.Org
}

// GetPlatform returns the platform identifier, preferring instance_id
// over id so federated instances report distinct origins.
func (c *Config) GetPlatform() string {
	if c.Platform.InstanceID != "" {
		return c.Platform.InstanceID
	}
	return c.Platform.ID
}

// String returns an indented JSON representation.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// CompareVersions compares two semver strings, returning -1, 0, or 1 as
// v1 sorts before, equal to, or after v2.
func CompareVersions(v1, v2 string) (int, error) {
	a, err := parseSemVer(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version '%s': %w", v1, err)
	}
	b, err := parseSemVer(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version '%s': %w", v2, err)
	}

	for i := range a {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1, nil
			}
			return -1, nil
		}
	}
	return 0, nil
}

// parseSemVer parses "major.minor.patch" (an optional leading "v" is
// dropped) into its three numeric parts.
func parseSemVer(version string) ([3]int, error) {
	var parsed [3]int

	if version == "" {
		return parsed, errors.New("version cannot be empty")
	}

	parts := strings.Split(strings.TrimPrefix(version, "v"), ".")
	if len(parts) != 3 {
		return parsed, fmt.Errorf("version must be in format 'major.minor.patch', got '%s'", version)
	}

	for i, label := range [3]string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return parsed, fmt.Errorf("invalid %s version '%s': %w", label, parts[i], err)
		}
		parsed[i] = n
	}
	return parsed, nil
}
