package config

// configYAML is a transitional struct that contains all the configuration settings, mirroring the structure of the Config struct.
type configYAML struct {
	Server serverConfigYAML `yaml:"server"`
	Log    logConfigYAML    `yaml:"log"`
	RPC    rpcConfigYAML    `yaml:"rpc"`
	Wallet walletConfigYAML `yaml:"wallet"`
	Store  storeConfigYAML  `yaml:"store"`
}

// serverConfigYAML is a transitional struct used for unmarshaling the server configuration from YAML.
type serverConfigYAML struct {
	Host        string  `yaml:"host" validate:"required"`
	Port        int     `yaml:"port" validate:"required,min=1,max=65535"`
	MetricsPort int     `yaml:"metricsPort" validate:"required,min=1,max=65535,nefield=Port"`
	RateLimit   float64 `yaml:"rateLimit" validate:"gte=0"`
	RateBurst   int     `yaml:"rateBurst" validate:"gte=0"`
}

// logConfigYAML is a transitional struct used for unmarshaling the log configuration from YAML.
type logConfigYAML struct {
	Level string `yaml:"level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	File  string `yaml:"file"`
}

// rpcConfigYAML is a transitional struct used for unmarshaling the Solana RPC configuration from YAML.
type rpcConfigYAML struct {
	URL                 string `yaml:"url" validate:"required,url"`
	Timeout             int    `yaml:"timeout" validate:"gte=1"`
	DiscoveryCommitment string `yaml:"discoveryCommitment" validate:"oneof=processed confirmed finalized"`
	SubmitCommitment    string `yaml:"submitCommitment" validate:"oneof=processed confirmed finalized"`
	ConfirmTimeout      int    `yaml:"confirmTimeout" validate:"gte=1"`
	ConfirmPollInterval int    `yaml:"confirmPollInterval" validate:"gte=50"`
}

// walletConfigYAML is a transitional struct used for unmarshaling the wallet configuration from YAML.
type walletConfigYAML struct {
	KeypairPath    string `yaml:"keypairPath"`
	Kind           string `yaml:"kind" validate:"required"`
	ConfirmSigning bool   `yaml:"confirmSigning"`
}

// storeConfigYAML is a transitional struct used for unmarshaling the receipt store configuration from YAML.
type storeConfigYAML struct {
	Driver string       `yaml:"driver" validate:"oneof=none bolt postgres"`
	Path   string       `yaml:"path" validate:"required_if=Driver bolt"`
	DB     dbConfigYAML `yaml:"db"`
}

// dbConfigYAML is a transitional struct used for unmarshaling the database configuration from YAML.
type dbConfigYAML struct {
	User     string `yaml:"user"`
	DBName   string `yaml:"dbname"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
}
