package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Research   ResearchConfig   `mapstructure:"research"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
}

type MetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	EnableLatency bool `mapstructure:"enable_latency"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

// ModerationConfig carries the pipeline policy knobs. Thresholds are
// acceptance thresholds for surfacing a category as detected.
type ModerationConfig struct {
	MaxBatchSize      int     `mapstructure:"max_batch_size"`
	MaxConcurrency    int     `mapstructure:"max_concurrency"`
	MaxImageBytes     int64   `mapstructure:"max_image_bytes"`
	DetectThreshold   float64 `mapstructure:"detect_threshold"`
	StrictThreshold   float64 `mapstructure:"strict_threshold"`
	FetchTimeoutSecs  int     `mapstructure:"fetch_timeout_seconds"`
	CacheTTLSeconds   int     `mapstructure:"cache_ttl_seconds"`
	CacheEnabled      bool    `mapstructure:"cache_enabled"`
	ClassifierTimeout int     `mapstructure:"classifier_timeout_seconds"`
}

type ProvidersConfig struct {
	Vision VisionProviderConfig `mapstructure:"vision"`
	Text   TextProviderConfig   `mapstructure:"text"`
}

type VisionProviderConfig struct {
	Provider string                 `mapstructure:"provider"`
	Model    string                 `mapstructure:"model"`
	APIKey   string                 `mapstructure:"api_key"`
	Options  map[string]interface{} `mapstructure:"options"`
}

type TextProviderConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

type ResearchConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Model             string `mapstructure:"model"`
	APIKey            string `mapstructure:"api_key"`
	MaxReasoningSteps int    `mapstructure:"max_reasoning_steps"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return err
	}

	setDefaultValues()

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Moderation.MaxBatchSize == 0 {
		globalConfig.Moderation.MaxBatchSize = 20
	}
	if globalConfig.Moderation.MaxConcurrency == 0 {
		globalConfig.Moderation.MaxConcurrency = 5
	}
	if globalConfig.Moderation.MaxImageBytes == 0 {
		globalConfig.Moderation.MaxImageBytes = 50 * 1024 * 1024
	}
	if globalConfig.Moderation.DetectThreshold == 0 {
		globalConfig.Moderation.DetectThreshold = 0.5
	}
	if globalConfig.Moderation.StrictThreshold == 0 {
		globalConfig.Moderation.StrictThreshold = 0.25
	}
	if globalConfig.Moderation.FetchTimeoutSecs == 0 {
		globalConfig.Moderation.FetchTimeoutSecs = 15
	}
	if globalConfig.Moderation.ClassifierTimeout == 0 {
		globalConfig.Moderation.ClassifierTimeout = 60
	}
	if globalConfig.Moderation.CacheTTLSeconds == 0 {
		globalConfig.Moderation.CacheTTLSeconds = 300
	}
	if globalConfig.Providers.Vision.Provider == "" {
		globalConfig.Providers.Vision.Provider = "openai"
	}
	if globalConfig.Providers.Vision.Model == "" {
		globalConfig.Providers.Vision.Model = "gpt-4o-mini"
	}
	if globalConfig.Providers.Text.Provider == "" {
		globalConfig.Providers.Text.Provider = "openai"
	}
	if globalConfig.Providers.Text.Model == "" {
		globalConfig.Providers.Text.Model = "omni-moderation-latest"
	}
	if globalConfig.Research.Model == "" {
		globalConfig.Research.Model = "gpt-4o-mini"
	}
	if globalConfig.Research.MaxReasoningSteps == 0 {
		globalConfig.Research.MaxReasoningSteps = 5
	}
}

func GetConfig() *Config {
	return &globalConfig
}
