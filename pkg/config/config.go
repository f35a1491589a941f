package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/modelgrid"
	ConfigFileName    = "modelgrid.yml"
)

// Config holds all modelgrid configuration settings
type Config struct {
	// BindAddress is the address the HTTP server listens on
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the HTTP server port
	Port string `yaml:"port" json:"port"`

	// SuperuserRole is the role that bypasses RBAC and ownership checks
	SuperuserRole string `yaml:"superuser_role" json:"superuser_role"`

	// TokenSecret is the HS256 key for verifying bearer tokens. Environment
	// only; it never appears in a config file.
	TokenSecret string `yaml:"-" json:"-"`

	// RecordListLimitMax caps the number of rows a list request returns.
	// Zero means unlimited.
	RecordListLimitMax int `yaml:"record_list_limit_max" json:"record_list_limit_max"`

	// AuditEnabled enables the audit event store
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		BindAddress:        "0.0.0.0",
		Port:               "8080",
		SuperuserRole:      "Admin",
		RecordListLimitMax: 1000,
		AuditEnabled:       true,
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("MODELGRID_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig fileValues
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"bind_address", "port", "superuser_role", "token_secret",
		"record_list_limit_max", "audit_enabled",
	}
}

// fileValues mirrors the config file attributes. AuditEnabled is a pointer
// so an explicit `audit_enabled: false` is distinguishable from the key being
// absent.
type fileValues struct {
	BindAddress        string `yaml:"bind_address"`
	Port               string `yaml:"port"`
	SuperuserRole      string `yaml:"superuser_role"`
	RecordListLimitMax int    `yaml:"record_list_limit_max"`
	AuditEnabled       *bool  `yaml:"audit_enabled"`
}

func (c *Config) applyFileConfig(file *fileValues) {
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != "" {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.SuperuserRole != "" {
		c.SuperuserRole = file.SuperuserRole
		c.sources["superuser_role"] = "file"
	}
	if file.RecordListLimitMax != 0 {
		c.RecordListLimitMax = file.RecordListLimitMax
		c.sources["record_list_limit_max"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("MODELGRID_BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("MODELGRID_PORT"); val != "" {
		c.Port = val
		c.sources["port"] = "environment"
	}
	if val := os.Getenv("MODELGRID_SUPERUSER_ROLE"); val != "" {
		c.SuperuserRole = val
		c.sources["superuser_role"] = "environment"
	}
	if val := os.Getenv("MODELGRID_TOKEN_SECRET"); val != "" {
		c.TokenSecret = val
		c.sources["token_secret"] = "environment"
	}
	if val := os.Getenv("MODELGRID_RECORD_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.RecordListLimitMax = i
			c.sources["record_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("MODELGRID_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port != "" {
		if _, err := strconv.Atoi(c.Port); err != nil {
			return fmt.Errorf("invalid port: %s", c.Port)
		}
	}
	if c.RecordListLimitMax < 0 {
		return fmt.Errorf("record_list_limit_max must not be negative")
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. The token secret value is redacted.
func (c *Config) Attributes() []Attribute {
	tokenSecret := ""
	if c.TokenSecret != "" {
		tokenSecret = "(set)"
	}
	return []Attribute{
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: c.Port, Source: c.Source("port")},
		{Name: "superuser_role", Value: c.SuperuserRole, Source: c.Source("superuser_role")},
		{Name: "token_secret", Value: tokenSecret, Source: c.Source("token_secret")},
		{Name: "record_list_limit_max", Value: strconv.Itoa(c.RecordListLimitMax), Source: c.Source("record_list_limit_max")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
