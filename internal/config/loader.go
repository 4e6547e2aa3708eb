// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultDir 默认配置目录
const DefaultDir = "configs"

var (
	envPattern   = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)
	durationType = reflect.TypeOf(time.Duration(0))
)

// Load 从默认目录加载配置
func Load() (*Config, error) {
	return LoadFrom(DefaultDir)
}

// LoadFrom 从指定目录加载配置
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置（缺失时完全依赖默认值与环境变量）
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), true); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&cfg)
	return &cfg, nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	reader := strings.NewReader(expandEnv(string(content)))
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envPattern.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		return match
	})
}

// secondsToDurationHook 时长字段写成不带单位的数字时按秒解析，如 timeout: 30
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		v := reflect.ValueOf(data)
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(v.Int()) * time.Second, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(v.Uint()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(v.Float() * float64(time.Second)), nil
		case reflect.String:
			if n, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64); err == nil {
				return time.Duration(n * float64(time.Second)), nil
			}
		}
		return data, nil
	}
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// normalize 为服务商条目补齐类型与默认参数
func normalize(cfg *Config) {
	for name, p := range cfg.TextGeneration.Providers {
		if p.Type == "" {
			p.Type = name
		}
		if p.Model == "" && p.Type == "google_gemini" {
			p.Model = "gemini-2.0-flash-exp"
		}
		if p.Temperature == nil {
			t := 1.0
			p.Temperature = &t
		}
		if p.MaxOutputTokens == 0 {
			p.MaxOutputTokens = 8000
		}
		cfg.TextGeneration.Providers[name] = p
	}

	for name, p := range cfg.Search.Providers {
		if p.Type == "" {
			p.Type = name
		}
		if p.MaxResults <= 0 {
			p.MaxResults = 5
		}
		cfg.Search.Providers[name] = p
	}
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "xhs-content-ai-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值（流式生成耗时较长，写超时放宽）
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "300s")
	v.SetDefault("server.http.idle_timeout", "120s")
	v.SetDefault("server.http.max_upload_size", 20<<20)

	// Redis 默认值
	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 20)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")
	v.SetDefault("cache.redis.search_ttl", "10m")

	// 文本生成默认值
	v.SetDefault("text_generation.active_provider", "google_gemini")

	// 搜索默认值
	v.SetDefault("search.active_provider", "duckduckgo")
	v.SetDefault("search.providers.duckduckgo.type", "duckduckgo")
	v.SetDefault("search.providers.duckduckgo.max_results", 5)
	v.SetDefault("search.providers.duckduckgo.timeout", "30s")
	v.SetDefault("search.content_max_chars", 2000)

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// 安全默认值
	v.SetDefault("security.rate_limit.enabled", false)
	v.SetDefault("security.rate_limit.requests_per_minute", 30)
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
}
