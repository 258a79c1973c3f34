package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries every tunable the service reads at startup. All values come
// from MUSHROOM_* environment variables with the defaults below; nothing is
// re-read after Load returns.
type Config struct {
	HTTPAddr       string
	ModelPath      string
	ClassNamesPath string
	OnnxRuntimeLib string

	ImageSize      int
	DefaultTopN    int
	MaxTopN        int
	PoolSize       int
	MaxUploadBytes int64

	DatabaseDSN string
	RedisAddr   string
	CacheTTL    time.Duration

	JWTSecret   string
	JWTAudience string
}

const envPrefix = "MUSHROOM"

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("model_path", "mushroom_model.onnx")
	v.SetDefault("class_names_path", "mushroom_names.json")
	v.SetDefault("onnxruntime_lib", "")
	v.SetDefault("image_size", 128)
	v.SetDefault("default_top_n", 3)
	v.SetDefault("max_top_n", 10)
	v.SetDefault("pool_size", 0)
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("database_dsn", "host=postgres user=postgres password=postgres dbname=mushroomid port=5432 sslmode=disable")
	v.SetDefault("redis_addr", "redis:6379")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_audience", "")

	cfg := &Config{
		HTTPAddr:       v.GetString("http_addr"),
		ModelPath:      v.GetString("model_path"),
		ClassNamesPath: v.GetString("class_names_path"),
		OnnxRuntimeLib: v.GetString("onnxruntime_lib"),
		ImageSize:      v.GetInt("image_size"),
		DefaultTopN:    v.GetInt("default_top_n"),
		MaxTopN:        v.GetInt("max_top_n"),
		PoolSize:       v.GetInt("pool_size"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		DatabaseDSN:    v.GetString("database_dsn"),
		RedisAddr:      v.GetString("redis_addr"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		JWTSecret:      v.GetString("jwt_secret"),
		JWTAudience:    v.GetString("jwt_audience"),
	}

	if cfg.PoolSize <= 0 {
		cfg.PoolSize = runtime.NumCPU()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ModelPath == "" {
		return NewConfigurationError("model_path", fmt.Errorf("must not be empty"))
	}
	if c.ClassNamesPath == "" {
		return NewConfigurationError("class_names_path", fmt.Errorf("must not be empty"))
	}
	if c.ImageSize <= 0 {
		return NewConfigurationError("image_size", fmt.Errorf("must be positive, got %d", c.ImageSize))
	}
	if c.DefaultTopN < 1 {
		return NewConfigurationError("default_top_n", fmt.Errorf("must be at least 1, got %d", c.DefaultTopN))
	}
	if c.MaxTopN < c.DefaultTopN {
		return NewConfigurationError("max_top_n", fmt.Errorf("must be at least default_top_n (%d), got %d", c.DefaultTopN, c.MaxTopN))
	}
	if c.MaxUploadBytes <= 0 {
		return NewConfigurationError("max_upload_bytes", fmt.Errorf("must be positive, got %d", c.MaxUploadBytes))
	}
	return nil
}
