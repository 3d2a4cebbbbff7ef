package cmd

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "program-matcher"
)

type Config struct {
	Catalog  *CatalogConfig  `mapstructure:"catalog"`
	Database *DatabaseConfig `mapstructure:"database"`
	Match    *MatchConfig    `mapstructure:"match"`
	AI       *AIConfig       `mapstructure:"ai"`
	Cache    *CacheConfig    `mapstructure:"cache"`
	Server   *ServerConfig   `mapstructure:"server"`
}

type CatalogConfig struct {
	// Source is either "file" or "postgres".
	Source string `mapstructure:"source"`
	File   string `mapstructure:"file"`
}

type DatabaseConfig struct {
	DSN     string `mapstructure:"dsn" json:"-"`
	DSNFile string `mapstructure:"dsn-file"`
}

type MatchConfig struct {
	Workers         int           `mapstructure:"workers"`
	UpcomingHorizon time.Duration `mapstructure:"upcoming-horizon"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Delay    time.Duration `mapstructure:"delay"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string        `mapstructure:"api-key" json:"-"`
	APIKeyFile      string        `mapstructure:"api-key-file"`
	Model           string        `mapstructure:"model"`
	Temperature     float32       `mapstructure:"temperature"`
	MaxOutputTokens int32         `mapstructure:"max-output-tokens"`
	MaxLogLength    int           `mapstructure:"max-log-length"`
	BreakerFailures uint32        `mapstructure:"breaker-failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker-timeout"`
}

type CacheConfig struct {
	// Backend is one of "memory", "redis", "postgres" or "none".
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   *RedisConfig  `mapstructure:"redis"`
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password" json:"-"`
	PasswordFile string `mapstructure:"password-file"`
	DB           int    `mapstructure:"db"`
	Prefix       string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "program-matcher scores government support programs against company profiles",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.gemini.api-key-file":    "PM_GEMINI_API_KEY_FILE",
		"database.dsn-file":         "PM_DATABASE_DSN_FILE",
		"cache.redis.password-file": "PM_REDIS_PASSWORD_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("catalog.source", "file")
	viper.SetDefault("catalog.file", "programs.json")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("server.address", ":8080")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is program-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without any config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicitly given config must exist; the default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// renderConfig pretty prints the config for debug logs. Inline secrets are
// tagged json:"-" and never rendered.
func renderConfig(config *Config) string {
	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	return string(pretty)
}
