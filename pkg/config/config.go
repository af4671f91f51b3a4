package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/decomp/ngsec/pkg/naming"
)

const (
	DefaultConfigPath = "/etc/ngsec"
	ConfigFileName    = "ngsec.yml"

	sourceDefault = "default"
	sourceFile    = "file"
	sourceEnv     = "environment"
)

// Config holds every ngsecctl setting.
type Config struct {
	// Endpoint is the graph database server URL.
	Endpoint string `yaml:"endpoint" json:"endpoint" validate:"required,url"`
	Username string `yaml:"username" json:"username" validate:"required_without=Token"`
	Password string `yaml:"password" json:"-"`
	// Token is a bearer token; when set it replaces basic auth.
	Token string `yaml:"token" json:"-"`

	Database      string         `yaml:"database" json:"database" validate:"required"`
	Domain        string         `yaml:"domain" json:"domain" validate:"required,url"`
	NamingProfile naming.Profile `yaml:"naming_profile" json:"naming_profile"`

	// ServiceGraph defaults to the domain followed by iasAsmtGraph.
	ServiceGraph       string   `yaml:"service_graph" json:"service_graph"`
	DefaultGraphWriter string   `yaml:"default_graph_writer" json:"default_graph_writer"`
	ServiceGraphWriter string   `yaml:"service_graph_writer" json:"service_graph_writer"`
	PrivilegedUsers    []string `yaml:"privileged_users" json:"privileged_users" validate:"dive,required"`

	Alias    string `yaml:"alias" json:"alias"`
	OldGraph string `yaml:"old_graph" json:"old_graph"`
	NewGraph string `yaml:"new_graph" json:"new_graph"`

	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" validate:"gt=0"`
	LogLevel       string        `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	LedgerDatabaseURL string `yaml:"ledger_database_url" json:"-"`
	AuditDatabaseURL  string `yaml:"audit_database_url" json:"-"`

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

// fileConfig mirrors Config with pointers so keys absent from the file are
// told apart from zero values.
type fileConfig struct {
	Endpoint           *string         `yaml:"endpoint"`
	Username           *string         `yaml:"username"`
	Password           *string         `yaml:"password"`
	Token              *string         `yaml:"token"`
	Database           *string         `yaml:"database"`
	Domain             *string         `yaml:"domain"`
	NamingProfile      *naming.Profile `yaml:"naming_profile"`
	ServiceGraph       *string         `yaml:"service_graph"`
	DefaultGraphWriter *string         `yaml:"default_graph_writer"`
	ServiceGraphWriter *string         `yaml:"service_graph_writer"`
	PrivilegedUsers    *[]string       `yaml:"privileged_users"`
	Alias              *string         `yaml:"alias"`
	OldGraph           *string         `yaml:"old_graph"`
	NewGraph           *string         `yaml:"new_graph"`
	RequestTimeout     *time.Duration  `yaml:"request_timeout"`
	LogLevel           *string         `yaml:"log_level"`
	LedgerDatabaseURL  *string         `yaml:"ledger_database_url"`
	AuditDatabaseURL   *string         `yaml:"audit_database_url"`
}

// envConfig lists the environment variables. Unset variables leave their
// field nil.
type envConfig struct {
	Endpoint           *string        `envconfig:"DATABASE_URL"`
	Username           *string        `envconfig:"DATABASE_USERNAME"`
	Password           *string        `envconfig:"DATABASE_PASSWORD"`
	Token              *string        `envconfig:"DATABASE_TOKEN"`
	Database           *string        `envconfig:"NG_DBNAME"`
	Domain             *string        `envconfig:"NG_DOMAIN"`
	NamingProfile      *string        `envconfig:"NG_NAMING_PROFILE"`
	ServiceGraph       *string        `envconfig:"NG_SERVICE_GRAPH"`
	DefaultGraphWriter *string        `envconfig:"NGSEC_DEFAULT_GRAPH_WRITER"`
	ServiceGraphWriter *string        `envconfig:"NGSEC_SERVICE_GRAPH_WRITER"`
	PrivilegedUsers    *[]string      `envconfig:"NGSEC_PRIVILEGED_USERS"`
	Alias              *string        `envconfig:"NG_ALIAS"`
	OldGraph           *string        `envconfig:"NG_OLD"`
	NewGraph           *string        `envconfig:"NG_NEW"`
	RequestTimeout     *time.Duration `envconfig:"NGSEC_REQUEST_TIMEOUT"`
	LogLevel           *string        `envconfig:"NGSEC_LOG_LEVEL"`
	LedgerDatabaseURL  *string        `envconfig:"LEDGER_DATABASE_URL"`
	AuditDatabaseURL   *string        `envconfig:"AUDIT_DATABASE_URL"`
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		Endpoint:           "http://localhost:5820",
		Username:           "admin",
		Domain:             "https://nasa.gov/",
		NamingProfile:      naming.ProfilePerDatabase,
		DefaultGraphWriter: "pelorus",
		ServiceGraphWriter: "concourse",
		PrivilegedUsers:    []string{"admin", "anonymous"},
		RequestTimeout:     30 * time.Second,
		LogLevel:           "info",
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()
	for _, name := range attributeNames() {
		config.sources[name] = sourceDefault
	}

	configPath := os.Getenv("NGSEC_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	data, err := os.ReadFile(config.configFilePath)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file %s: %w", config.configFilePath, err)
	}

	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := config.applyEnvConfig(&env); err != nil {
		return nil, err
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"endpoint", "username", "password", "token", "database", "domain",
		"naming_profile", "service_graph", "default_graph_writer",
		"service_graph_writer", "privileged_users", "alias", "old_graph",
		"new_graph", "request_timeout", "log_level", "ledger_database_url",
		"audit_database_url",
	}
}

// override sets *dst from src when src is present and records source.
func override[T any](c *Config, name, source string, dst *T, src *T) {
	if src == nil {
		return
	}
	*dst = *src
	c.sources[name] = source
}

func (c *Config) applyFileConfig(f *fileConfig) {
	override(c, "endpoint", sourceFile, &c.Endpoint, f.Endpoint)
	override(c, "username", sourceFile, &c.Username, f.Username)
	override(c, "password", sourceFile, &c.Password, f.Password)
	override(c, "token", sourceFile, &c.Token, f.Token)
	override(c, "database", sourceFile, &c.Database, f.Database)
	override(c, "domain", sourceFile, &c.Domain, f.Domain)
	override(c, "naming_profile", sourceFile, &c.NamingProfile, f.NamingProfile)
	override(c, "service_graph", sourceFile, &c.ServiceGraph, f.ServiceGraph)
	override(c, "default_graph_writer", sourceFile, &c.DefaultGraphWriter, f.DefaultGraphWriter)
	override(c, "service_graph_writer", sourceFile, &c.ServiceGraphWriter, f.ServiceGraphWriter)
	override(c, "privileged_users", sourceFile, &c.PrivilegedUsers, f.PrivilegedUsers)
	override(c, "alias", sourceFile, &c.Alias, f.Alias)
	override(c, "old_graph", sourceFile, &c.OldGraph, f.OldGraph)
	override(c, "new_graph", sourceFile, &c.NewGraph, f.NewGraph)
	override(c, "request_timeout", sourceFile, &c.RequestTimeout, f.RequestTimeout)
	override(c, "log_level", sourceFile, &c.LogLevel, f.LogLevel)
	override(c, "ledger_database_url", sourceFile, &c.LedgerDatabaseURL, f.LedgerDatabaseURL)
	override(c, "audit_database_url", sourceFile, &c.AuditDatabaseURL, f.AuditDatabaseURL)
}

func (c *Config) applyEnvConfig(e *envConfig) error {
	if e.NamingProfile != nil {
		p, err := naming.ProfileString(*e.NamingProfile)
		if err != nil {
			return fmt.Errorf("invalid NG_NAMING_PROFILE: %w", err)
		}
		override(c, "naming_profile", sourceEnv, &c.NamingProfile, &p)
	}
	override(c, "endpoint", sourceEnv, &c.Endpoint, e.Endpoint)
	override(c, "username", sourceEnv, &c.Username, e.Username)
	override(c, "password", sourceEnv, &c.Password, e.Password)
	override(c, "token", sourceEnv, &c.Token, e.Token)
	override(c, "database", sourceEnv, &c.Database, e.Database)
	override(c, "domain", sourceEnv, &c.Domain, e.Domain)
	override(c, "service_graph", sourceEnv, &c.ServiceGraph, e.ServiceGraph)
	override(c, "default_graph_writer", sourceEnv, &c.DefaultGraphWriter, e.DefaultGraphWriter)
	override(c, "service_graph_writer", sourceEnv, &c.ServiceGraphWriter, e.ServiceGraphWriter)
	override(c, "privileged_users", sourceEnv, &c.PrivilegedUsers, e.PrivilegedUsers)
	override(c, "alias", sourceEnv, &c.Alias, e.Alias)
	override(c, "old_graph", sourceEnv, &c.OldGraph, e.OldGraph)
	override(c, "new_graph", sourceEnv, &c.NewGraph, e.NewGraph)
	override(c, "request_timeout", sourceEnv, &c.RequestTimeout, e.RequestTimeout)
	override(c, "log_level", sourceEnv, &c.LogLevel, e.LogLevel)
	override(c, "ledger_database_url", sourceEnv, &c.LedgerDatabaseURL, e.LedgerDatabaseURL)
	override(c, "audit_database_url", sourceEnv, &c.AuditDatabaseURL, e.AuditDatabaseURL)
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return sourceDefault
}

// Policy returns the role naming policy for the configured database.
func (c *Config) Policy() naming.Policy {
	return naming.Policy{DB: c.Database, Domain: c.Domain, Profile: c.NamingProfile}
}

// Level returns the parsed log level.
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.NamingProfile.IsAProfile() {
		return fmt.Errorf("invalid naming_profile: %d", c.NamingProfile)
	}
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s: failed %q", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	attr := func(name, value string) Attribute {
		return Attribute{Name: name, Value: value, Source: c.Source(name)}
	}
	return []Attribute{
		attr("endpoint", c.Endpoint),
		attr("username", c.Username),
		attr("password", mask(c.Password)),
		attr("token", mask(c.Token)),
		attr("database", c.Database),
		attr("domain", c.Domain),
		attr("naming_profile", c.NamingProfile.String()),
		attr("service_graph", c.ServiceGraph),
		attr("default_graph_writer", c.DefaultGraphWriter),
		attr("service_graph_writer", c.ServiceGraphWriter),
		attr("privileged_users", strings.Join(c.PrivilegedUsers, ",")),
		attr("alias", c.Alias),
		attr("old_graph", c.OldGraph),
		attr("new_graph", c.NewGraph),
		attr("request_timeout", c.RequestTimeout.String()),
		attr("log_level", c.LogLevel),
		attr("ledger_database_url", mask(c.LedgerDatabaseURL)),
		attr("audit_database_url", mask(c.AuditDatabaseURL)),
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
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
