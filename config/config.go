package config

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Email       EmailConfig       `mapstructure:"email"`
	Institution InstitutionConfig `mapstructure:"institution"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig holds the MySQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// EmailConfig holds the SMTP settings for receipt notifications.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// InstitutionConfig identifies the institution on receipts and emails.
type InstitutionConfig struct {
	Name string `mapstructure:"name"`
}

var (
	// GlobalConfig is the loaded configuration instance.
	GlobalConfig *Config
)

// LoadConfig loads configuration with precedence:
// environment variables > external config file > embedded defaults.
// configPath optionally points at an external config file.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// embedded defaults first
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("warning: cannot read config file %s: %v", configPath, err)
		} else {
			log.Printf("merged external config file: %s", configPath)
		}
	} else {
		// look for an external config file in the usual places
		external := viper.New()
		external.SetConfigName("config")
		external.SetConfigType("yaml")
		external.AddConfigPath(".")
		external.AddConfigPath("./config")
		external.AddConfigPath("/etc/feeledger")
		external.AddConfigPath("$HOME/.feeledger")

		if err := external.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(external.AllSettings()); err != nil {
				log.Printf("warning: merging external config failed: %v", err)
			} else {
				log.Printf("merged external config file: %s", external.ConfigFileUsed())
			}
		}
	}

	// environment overrides, e.g. FEELEDGER_DATABASE_PASSWORD
	v.SetEnvPrefix("FEELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour

	GlobalConfig = &cfg

	return &cfg, nil
}

// MustLoadConfig loads configuration and panics on failure.
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}

// GetConfig returns the global configuration.
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("config not initialized, call LoadConfig first")
	}
	return GlobalConfig
}

// PrintConfig logs the current configuration, hiding secrets.
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("configuration:")
	log.Printf("  server: %s (mode: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	log.Printf("  database: %s@%s:%s/%s",
		GlobalConfig.Database.Username,
		GlobalConfig.Database.Host,
		GlobalConfig.Database.Port,
		GlobalConfig.Database.DBName)
	log.Printf("  email notifications: %v", GlobalConfig.Email.Enabled)
	log.Printf("  institution: %s", GlobalConfig.Institution.Name)
}

// SafeErrorMessage returns err.Error() in debug mode and the fallback in
// release mode, so internals never leak to clients in production.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig == nil || GlobalConfig.Server.Mode != "release" {
		return err.Error()
	}
	return fallback
}
