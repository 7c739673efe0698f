package pgwire

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/polarwire/pgwire/internal/protocol"
)

// TLSMode selects whether and how a connection attempts TLS, mirroring
// protocol.TLSMode at the public boundary.
type TLSMode string

const (
	TLSDisable TLSMode = "disable"
	TLSPrefer  TLSMode = "prefer"
	TLSRequire TLSMode = "require"
)

// PoolConfig sizes a Pool's connection reservoir.
type PoolConfig struct {
	MinConnections int           `yaml:"min_connections"`
	MaxConnections int           `yaml:"max_connections"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

// Config is pgwire's immutable connection configuration: one Postgres
// endpoint, its credentials, TLS policy, and pool sizing. Build one with a
// struct literal or Load a YAML file; Validate before use.
type Config struct {
	Host        string        `yaml:"host"`
	Port        uint16        `yaml:"port"`
	User        string        `yaml:"user"`
	Database    string        `yaml:"database"`
	Password    string        `yaml:"password"`
	TLSMode     TLSMode       `yaml:"tls_mode"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable
// values, leaving unmatched references untouched.
func substituteEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		if val, ok := os.LookupEnv(string(varName)); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads a YAML configuration file, substituting ${VAR} environment
// references, and applies defaults to a zero port, TLS mode, dial timeout,
// pool max connections and acquire timeout.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pgwire: reading config %s: %w", path, err)
	}
	data = substituteEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pgwire: parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pgwire: invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.TLSMode == "" {
		c.TLSMode = TLSPrefer
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.Pool.MaxConnections == 0 {
		c.Pool.MaxConnections = 10
	}
	if c.Pool.AcquireTimeout == 0 {
		c.Pool.AcquireTimeout = 30 * time.Second
	}
}

// Validate reports whether c is complete enough to dial with.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("pgwire: host is required")
	}
	if c.User == "" {
		return fmt.Errorf("pgwire: user is required")
	}
	switch c.TLSMode {
	case TLSDisable, TLSPrefer, TLSRequire:
	default:
		return fmt.Errorf("pgwire: invalid tls_mode %q", c.TLSMode)
	}
	if c.Pool.MinConnections < 0 || c.Pool.MaxConnections < 0 {
		return fmt.Errorf("pgwire: pool connection counts must not be negative")
	}
	if c.Pool.MinConnections > c.Pool.MaxConnections && c.Pool.MaxConnections > 0 {
		return fmt.Errorf("pgwire: pool.min_connections (%d) exceeds pool.max_connections (%d)", c.Pool.MinConnections, c.Pool.MaxConnections)
	}
	return nil
}

// Redacted returns a copy of c with the password masked, safe for logging.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "***REDACTED***"
	}
	return c
}

func (c Config) toProtocolConfig() protocol.Config {
	return protocol.Config{
		Host:        c.Host,
		Port:        c.Port,
		User:        c.User,
		Database:    c.Database,
		Password:    c.Password,
		TLSMode:     protocol.TLSMode(c.TLSMode),
		DialTimeout: c.DialTimeout,
	}
}
