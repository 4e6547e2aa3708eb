// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App            AppConfig            `yaml:"app" mapstructure:"app"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Cache          CacheConfig          `yaml:"cache" mapstructure:"cache"`
	TextGeneration TextGenerationConfig `yaml:"text_generation" mapstructure:"text_generation"`
	Search         SearchConfig         `yaml:"search" mapstructure:"search"`
	Observability  ObservabilityConfig  `yaml:"observability" mapstructure:"observability"`
	Security       SecurityConfig       `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxUploadSize 上传参考图片的总大小上限（字节）
	MaxUploadSize int64 `yaml:"max_upload_size" mapstructure:"max_upload_size"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	// SearchTTL 搜索结果缓存时长，0 表示不缓存
	SearchTTL time.Duration `yaml:"search_ttl" mapstructure:"search_ttl"`
}

// TextGenerationConfig 文本生成配置
type TextGenerationConfig struct {
	ActiveProvider string                        `yaml:"active_provider" mapstructure:"active_provider"`
	Providers      map[string]TextProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// TextProviderConfig 文本生成服务商配置
type TextProviderConfig struct {
	// Type 服务商类型：google_gemini / openai / openai_compatible
	Type            string        `yaml:"type" mapstructure:"type"`
	APIKey          string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL         string        `yaml:"base_url" mapstructure:"base_url"`
	Model           string        `yaml:"model" mapstructure:"model"`
	Temperature     *float64      `yaml:"temperature" mapstructure:"temperature"`
	MaxOutputTokens int           `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TemperatureOr 未配置 temperature 时返回 def，显式的 0 保留
func (c TextProviderConfig) TemperatureOr(def float64) float64 {
	if c.Temperature == nil {
		return def
	}
	return *c.Temperature
}

// SearchConfig 联网搜索配置
type SearchConfig struct {
	ActiveProvider  string                          `yaml:"active_provider" mapstructure:"active_provider"`
	Providers       map[string]SearchProviderConfig `yaml:"providers" mapstructure:"providers"`
	ContentMaxChars int                             `yaml:"content_max_chars" mapstructure:"content_max_chars"`
}

// SearchProviderConfig 搜索服务商配置
type SearchProviderConfig struct {
	// Type 服务商类型：duckduckgo / tavily / exa / google_custom
	Type           string            `yaml:"type" mapstructure:"type"`
	APIKey         string            `yaml:"api_key" mapstructure:"api_key"`
	SearchEngineID string            `yaml:"search_engine_id" mapstructure:"search_engine_id"`
	Enabled        *bool             `yaml:"enabled" mapstructure:"enabled"`
	MaxResults     int               `yaml:"max_results" mapstructure:"max_results"`
	Timeout        time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	Params         map[string]string `yaml:"params" mapstructure:"params"`
}

// IsEnabled 未显式配置时视为启用
func (c SearchProviderConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Active 返回当前激活的搜索服务商配置
func (c SearchConfig) Active() (SearchProviderConfig, bool) {
	if c.ActiveProvider == "" {
		return SearchProviderConfig{}, false
	}
	p, ok := c.Providers[c.ActiveProvider]
	if ok && p.Type == "" {
		p.Type = c.ActiveProvider
	}
	return p, ok
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// RateLimitConfig 限流配置，依赖 Redis
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
