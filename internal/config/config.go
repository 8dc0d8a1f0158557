package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nexuscloud/nexus/internal/logger"
	"github.com/nexuscloud/nexus/internal/tls"
)

// AdminConfig is the bootstrap operator account, created only when the
// account set is empty at startup. The account named here can never be
// deleted through the API.
type AdminConfig struct {
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`
}

// Config is the top-level TOML structure.
type Config struct {
	Listen     string        `toml:"listen" mapstructure:"listen"`
	DataDir    string        `toml:"data_dir" mapstructure:"data_dir"`
	BotsDir    string        `toml:"bots_dir" mapstructure:"bots_dir"`
	Runtime    string        `toml:"runtime" mapstructure:"runtime"`
	LogBuffer  int           `toml:"log_buffer" mapstructure:"log_buffer"`
	HistoryDSN string        `toml:"history_dsn" mapstructure:"history_dsn"`
	Admin      AdminConfig   `toml:"admin" mapstructure:"admin"`
	Log        logger.Config `toml:"log" mapstructure:"log"`
	TLS        tls.Config    `toml:"tls" mapstructure:"tls"`
}

// Default returns the configuration matching the original panel's behavior:
// port 3000, bots under ./bots, node runtime, 300-entry console buffer.
func Default() Config {
	return Config{
		Listen:    ":3000",
		DataDir:   ".",
		Runtime:   "node",
		LogBuffer: 300,
		Admin:     AdminConfig{Username: "Mira", Password: "Nika"},
	}
}

// Load reads a TOML file into the defaults. An empty path keeps defaults
// plus NEXUS_* environment overrides.
func Load(path string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", def.Listen)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("runtime", def.Runtime)
	v.SetDefault("log_buffer", def.LogBuffer)
	v.SetDefault("admin.username", def.Admin.Username)
	v.SetDefault("admin.password", def.Admin.Password)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.BotsDir == "" {
		cfg.BotsDir = filepath.Join(cfg.DataDir, "bots")
	}
	return cfg, nil
}
