package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mallfront/internal/logger"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// Addr 返回监听地址
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为日志初始化参数
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	DialMS     int    `mapstructure:"dial_timeout_ms"`
	ReadMS     int    `mapstructure:"read_timeout_ms"`
	WriteMS    int    `mapstructure:"write_timeout_ms"`
	PoolSize   int    `mapstructure:"pool_size"`
	MinIdle    int    `mapstructure:"min_idle_conns"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// QueueConfig 异步任务队列配置
type QueueConfig struct {
	Concurrency       int `mapstructure:"concurrency"`
	DefaultMaxRetry   int `mapstructure:"default_max_retry"`
	ShutdownTimeoutMS int `mapstructure:"shutdown_timeout_ms"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// UserJWTConfig 用户态 JWT 配置
type UserJWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	LoginURL string `mapstructure:"login_url"`
}

// UpstreamEndpointConfig 上游服务端点配置
type UpstreamEndpointConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AuthToken string `mapstructure:"auth_token"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// Timeout 返回端点请求超时
func (c UpstreamEndpointConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// UpstreamConfig 上游依赖服务配置
type UpstreamConfig struct {
	Order     UpstreamEndpointConfig `mapstructure:"order"`
	Assistant UpstreamEndpointConfig `mapstructure:"assistant"`
	Profile   UpstreamEndpointConfig `mapstructure:"profile"`
}

// CartConfig 购物车配置
type CartConfig struct {
	Currency string `mapstructure:"currency"`
}

// ChatConfig 会话助手配置
type ChatConfig struct {
	RevealIntervalMS int `mapstructure:"reveal_interval_ms"`
	HistoryLimit     int `mapstructure:"history_limit"`
}

// RevealInterval 返回逐字输出间隔
func (c ChatConfig) RevealInterval() time.Duration {
	if c.RevealIntervalMS <= 0 {
		return 18 * time.Millisecond
	}
	return time.Duration(c.RevealIntervalMS) * time.Millisecond
}

// SecurityConfig 访问控制配置
type SecurityConfig struct {
	ChatSendPerMinute int `mapstructure:"chat_send_per_minute"`
}

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	UserJWT  UserJWTConfig  `mapstructure:"user_jwt"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cart     CartConfig     `mapstructure:"cart"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Security SecurityConfig `mapstructure:"security"`
}

// Load 读取配置文件与环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("MALLFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "mallfront.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/mallfront.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 60)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "mf")
	v.SetDefault("redis.dial_timeout_ms", 3000)
	v.SetDefault("redis.read_timeout_ms", 2000)
	v.SetDefault("redis.write_timeout_ms", 2000)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.max_retries", 2)

	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.default_max_retry", 3)
	v.SetDefault("queue.shutdown_timeout_ms", 8000)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("user_jwt.secret", "")
	v.SetDefault("user_jwt.issuer", "mallfront")
	v.SetDefault("user_jwt.login_url", "/login")

	v.SetDefault("upstream.order.base_url", "")
	v.SetDefault("upstream.order.auth_token", "")
	v.SetDefault("upstream.order.timeout_ms", 15000)
	v.SetDefault("upstream.assistant.base_url", "")
	v.SetDefault("upstream.assistant.auth_token", "")
	v.SetDefault("upstream.assistant.timeout_ms", 20000)
	v.SetDefault("upstream.profile.base_url", "")
	v.SetDefault("upstream.profile.auth_token", "")
	v.SetDefault("upstream.profile.timeout_ms", 10000)

	v.SetDefault("cart.currency", "CNY")

	v.SetDefault("chat.reveal_interval_ms", 18)
	v.SetDefault("chat.history_limit", 10)

	v.SetDefault("security.chat_send_per_minute", 30)
}
