package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port              string
	ApiPrefix         string
	StoreDriver       string
	MongoURI          string
	MongoDBName       string
	SQLitePath        string
	CassandraHosts    []string
	CassandraKeyspace string
	SecretKey         string
	TokenTTL          time.Duration
	BcryptCost        int
	JaegerAddress     string
	CORSOrigins       []string
	LogLevel          string
	LogFormat         string
}

// GetConfig reads the service settings from the environment, optionally
// layered over the YAML file named by CONFIG_FILE.
func GetConfig() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetDefault("port", "5000")
	v.SetDefault("api_prefix", "/api")
	v.SetDefault("store_driver", DriverMongo)
	v.SetDefault("mongo_db_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db_name", "tasks")
	v.SetDefault("sqlite_path", "tasks.db")
	v.SetDefault("cassandra_keyspace", "task_activity")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	cfg := Config{
		Port:              v.GetString("port"),
		ApiPrefix:         v.GetString("api_prefix"),
		StoreDriver:       strings.ToLower(v.GetString("store_driver")),
		MongoURI:          v.GetString("mongo_db_uri"),
		MongoDBName:       v.GetString("mongo_db_name"),
		SQLitePath:        v.GetString("sqlite_path"),
		CassandraHosts:    splitList(v.GetString("cassandra_hosts")),
		CassandraKeyspace: v.GetString("cassandra_keyspace"),
		SecretKey:         v.GetString("secret_key_auth"),
		TokenTTL:          v.GetDuration("token_ttl"),
		BcryptCost:        v.GetInt("bcrypt_cost"),
		JaegerAddress:     v.GetString("jaeger_address"),
		CORSOrigins:       splitList(v.GetString("cors_origins")),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverMongo, DriverSQLite)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY_AUTH is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return ":" + c.Port
}

// CLIConfig drives taskctl. Every key is read from TASKCTL_<KEY>. The
// command output already reports failures, so the log stays quiet unless
// TASKCTL_LOG_LEVEL asks for more.
type CLIConfig struct {
	APIURL      string
	SessionPath string
	Timeout     time.Duration
	LogLevel    string
}

func GetCLIConfig() (CLIConfig, error) {
	return loadCLI(viper.New())
}

func loadCLI(v *viper.Viper) (CLIConfig, error) {
	v.SetEnvPrefix("taskctl")
	v.SetDefault("api_url", "http://localhost:5000/api")
	v.SetDefault("session", defaultSessionPath())
	v.SetDefault("timeout", "10s")
	v.SetDefault("log_level", "fatal")
	v.AutomaticEnv()

	cfg := CLIConfig{
		APIURL:      strings.TrimRight(v.GetString("api_url"), "/"),
		SessionPath: v.GetString("session"),
		Timeout:     v.GetDuration("timeout"),
		LogLevel:    v.GetString("log_level"),
	}
	if cfg.APIURL == "" {
		return CLIConfig{}, fmt.Errorf("TASKCTL_API_URL is empty")
	}
	return cfg, nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "taskctl-session.json")
	}
	return filepath.Join(home, ".config", "taskctl", "session.json")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
