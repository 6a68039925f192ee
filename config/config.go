package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvRPCURL     = "REVOKER_RPC_URL"
	EnvKeypair    = "REVOKER_KEYPAIR"
	EnvDBPassword = "REVOKER_DB_PASSWORD"
)

// Config contains all top-level configuration settings for the application, accessible for reading.
type Config struct {
	Server *ServerConfig
	Log    *LogConfig
	RPC    *RPCConfig
	Wallet *WalletConfig
	Store  *StoreConfig
}

// ServerConfig contains configuration details for the control API server.
type ServerConfig struct {
	host        string
	port        int
	metricsPort int
	rateLimit   float64
	rateBurst   int
}

// LogConfig contains configuration settings for logging.
type LogConfig struct {
	level string
	file  string
}

// RPCConfig contains configuration details for interacting with the Solana JSON-RPC endpoint.
type RPCConfig struct {
	url                 string
	timeout             int
	discoveryCommitment string
	submitCommitment    string
	confirmTimeout      int
	confirmPollInterval int
}

// WalletConfig contains the wallet provider settings.
type WalletConfig struct {
	keypairPath    string
	kind           string
	confirmSigning bool
}

// StoreConfig contains the receipt store settings.
type StoreConfig struct {
	driver string
	path   string
	db     *DBConfig
}

// DBConfig contains database connection settings with sensitive details unexported.
type DBConfig struct {
	user     string
	dbname   string
	password string
	host     string
	port     int
}

var validate = validator.New()

// LoadConfig reads configuration from the given file. Values found in a
// .env file next to the working directory or in the process environment
// override the RPC url, the keypair path and the database password.
func LoadConfig(configFile string) (*Config, error) {
	absPath, err := filepath.Abs(configFile)
	if err != nil {
		return nil, fmt.Errorf("Error finding absolute path for the configuration file: %v", err)
	}

	yamlFile, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("Error reading YAML file: %v", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Error reading .env file: %v", err)
	}

	return Parse(yamlFile)
}

// Parse builds a Config from raw YAML, applying defaults, environment overrides and validation.
func Parse(data []byte) (*Config, error) {
	configYAML := configYAML{}
	if err := yaml.Unmarshal(data, &configYAML); err != nil {
		return nil, fmt.Errorf("Error parsing YAML file: %v", err)
	}

	applyDefaults(&configYAML)
	applyEnv(&configYAML)

	if err := validate.Struct(configYAML); err != nil {
		return nil, fmt.Errorf("validation error: %v", err)
	}

	return &Config{
		Server: &ServerConfig{
			host:        configYAML.Server.Host,
			port:        configYAML.Server.Port,
			metricsPort: configYAML.Server.MetricsPort,
			rateLimit:   configYAML.Server.RateLimit,
			rateBurst:   configYAML.Server.RateBurst,
		},
		Log: &LogConfig{
			level: configYAML.Log.Level,
			file:  configYAML.Log.File,
		},
		RPC: &RPCConfig{
			url:                 configYAML.RPC.URL,
			timeout:             configYAML.RPC.Timeout,
			discoveryCommitment: configYAML.RPC.DiscoveryCommitment,
			submitCommitment:    configYAML.RPC.SubmitCommitment,
			confirmTimeout:      configYAML.RPC.ConfirmTimeout,
			confirmPollInterval: configYAML.RPC.ConfirmPollInterval,
		},
		Wallet: &WalletConfig{
			keypairPath:    expandHome(configYAML.Wallet.KeypairPath),
			kind:           configYAML.Wallet.Kind,
			confirmSigning: configYAML.Wallet.ConfirmSigning,
		},
		Store: &StoreConfig{
			driver: configYAML.Store.Driver,
			path:   configYAML.Store.Path,
			db: &DBConfig{
				user:     configYAML.Store.DB.User,
				dbname:   configYAML.Store.DB.DBName,
				password: configYAML.Store.DB.Password,
				host:     configYAML.Store.DB.Host,
				port:     configYAML.Store.DB.Port,
			},
		},
	}, nil
}

func applyDefaults(c *configYAML) {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9090
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.RPC.Timeout == 0 {
		c.RPC.Timeout = 30
	}
	if c.RPC.DiscoveryCommitment == "" {
		c.RPC.DiscoveryCommitment = "processed"
	}
	if c.RPC.SubmitCommitment == "" {
		c.RPC.SubmitCommitment = "confirmed"
	}
	if c.RPC.ConfirmTimeout == 0 {
		c.RPC.ConfirmTimeout = 60
	}
	if c.RPC.ConfirmPollInterval == 0 {
		c.RPC.ConfirmPollInterval = 1000
	}
	if c.Wallet.KeypairPath == "" {
		c.Wallet.KeypairPath = "~/.config/solana/id.json"
	}
	if c.Wallet.Kind == "" {
		c.Wallet.Kind = "keypair"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "none"
	}
}

func applyEnv(c *configYAML) {
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.RPC.URL = v
	}
	if v := os.Getenv(EnvKeypair); v != "" {
		c.Wallet.KeypairPath = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Store.DB.Password = v
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// GetHost returns the host configuration from the ServerConfig.
func (s *ServerConfig) GetHost() string {
	return s.host
}

// GetPort returns the port configuration from the ServerConfig.
func (s *ServerConfig) GetPort() int {
	return s.port
}

// GetMetricsPort returns the metrics port configuration from the ServerConfig.
func (s *ServerConfig) GetMetricsPort() int {
	return s.metricsPort
}

// GetRateLimit returns the allowed requests per second per client. Zero disables limiting.
func (s *ServerConfig) GetRateLimit() float64 {
	return s.rateLimit
}

// GetRateBurst returns the burst size of the per-client rate limiter.
func (s *ServerConfig) GetRateBurst() int {
	if s.rateBurst < 1 {
		return 1
	}
	return s.rateBurst
}

// GetListenAddress constructs the listenning address from the ServerConfig.
func (s *ServerConfig) GetListenAddress() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// GetLevel returns the level configuration from LogConfig.
func (l *LogConfig) GetLevel() string {
	return l.level
}

// GetFile returns the log file used while the terminal UI owns the screen.
func (l *LogConfig) GetFile() string {
	return l.file
}

// GetURL returns the url configuration from the RPCConfig.
func (r *RPCConfig) GetURL() string {
	return r.url
}

// GetTimeout returns the HTTP timeout of a single RPC call.
func (r *RPCConfig) GetTimeout() time.Duration {
	return time.Duration(r.timeout) * time.Second
}

// GetDiscoveryCommitment returns the commitment used when reading token accounts.
func (r *RPCConfig) GetDiscoveryCommitment() string {
	return r.discoveryCommitment
}

// GetSubmitCommitment returns the commitment used for submission and confirmation.
func (r *RPCConfig) GetSubmitCommitment() string {
	return r.submitCommitment
}

// GetConfirmTimeout returns how long a submitted transaction may take to reach the submit commitment.
func (r *RPCConfig) GetConfirmTimeout() time.Duration {
	return time.Duration(r.confirmTimeout) * time.Second
}

// GetConfirmPollInterval returns the delay between two signature status checks.
func (r *RPCConfig) GetConfirmPollInterval() time.Duration {
	return time.Duration(r.confirmPollInterval) * time.Millisecond
}

// GetKeypairPath returns the Solana CLI keypair file used by the keypair provider.
func (w *WalletConfig) GetKeypairPath() string {
	return w.keypairPath
}

// GetKind returns the provider kind the application expects.
func (w *WalletConfig) GetKind() string {
	return w.kind
}

// GetConfirmSigning reports whether each signature must be confirmed interactively.
func (w *WalletConfig) GetConfirmSigning() bool {
	return w.confirmSigning
}

// GetDriver returns the receipt store driver: none, bolt or postgres.
func (s *StoreConfig) GetDriver() string {
	return s.driver
}

// GetPath returns the bolt database file.
func (s *StoreConfig) GetPath() string {
	return s.path
}

// GetDB returns the postgres settings.
func (s *StoreConfig) GetDB() *DBConfig {
	return s.db
}

// GetPostgresqlDSN constructs a PostgreSQL DSN from the DBConfig.
func (d *DBConfig) GetPostgresqlDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", d.user, d.password, d.host, d.port, d.dbname)
}
