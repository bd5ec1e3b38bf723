package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`     // 服务器配置
	Postgres   PostgresConfig   `mapstructure:"postgres"`   // PostgreSQL配置
	Sweep      SweepConfig      `mapstructure:"sweep"`      // 结算同步调度配置
	Slip       SlipConfig       `mapstructure:"slip"`       // 选腿单（slip）配置
	Polymarket PolymarketConfig `mapstructure:"polymarket"` // Polymarket 平台配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SweepConfig 结算同步调度配置
// 外部调度器保证不并发触发两轮同步（本服务不做分布式锁）
type SweepConfig struct {
	Cron             string `mapstructure:"cron"`              // 同步Cron表达式
	BatchLimit       int    `mapstructure:"batch_limit"`       // 单轮最多处理的未结算记录数
	ChunkSize        int    `mapstructure:"chunk_size"`        // 结算查询分片大小
	ChunkConcurrency int    `mapstructure:"chunk_concurrency"` // 分片内并发查询数
}

// SlipConfig 选腿单配置
type SlipConfig struct {
	DefaultStake float64 `mapstructure:"default_stake"` // 新建 slip 的默认下注金额
}

// PolymarketConfig Polymarket 平台配置
type PolymarketConfig struct {
	GammaBaseURL    string `mapstructure:"gamma_base_url"`    // Gamma API 地址
	ClobBaseURL     string `mapstructure:"clob_base_url"`     // CLOB API 地址
	Timeout         int    `mapstructure:"timeout"`           // 请求超时（秒）
	Proxy           string `mapstructure:"proxy"`             // 代理地址
	AuthPrivateKey  string `mapstructure:"auth_private_key"`  // 下单签名私钥
	MarketCacheTTL  int    `mapstructure:"market_cache_ttl"`  // 市场元数据缓存TTL（秒）
	MarketCacheSize int    `mapstructure:"market_cache_size"` // 市场元数据缓存容量
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("POLYMARKET_PRIVATE_KEY"); v != "" {
		cfg.Polymarket.AuthPrivateKey = v
	}
	if v := os.Getenv("POLYMARKET_PROXY"); v != "" {
		cfg.Polymarket.Proxy = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
}

// applyDefaults 兜底默认值（yaml 缺省字段）
func applyDefaults(cfg *Config) {
	if cfg.Polymarket.GammaBaseURL == "" {
		cfg.Polymarket.GammaBaseURL = "https://gamma-api.polymarket.com"
	}
	if cfg.Polymarket.ClobBaseURL == "" {
		cfg.Polymarket.ClobBaseURL = "https://clob.polymarket.com"
	}
	if cfg.Polymarket.Timeout <= 0 {
		cfg.Polymarket.Timeout = 15
	}
	if cfg.Polymarket.MarketCacheTTL <= 0 {
		cfg.Polymarket.MarketCacheTTL = 30
	}
	if cfg.Polymarket.MarketCacheSize <= 0 {
		cfg.Polymarket.MarketCacheSize = 512
	}
	if cfg.Sweep.BatchLimit <= 0 {
		cfg.Sweep.BatchLimit = 500
	}
	if cfg.Sweep.ChunkSize <= 0 {
		cfg.Sweep.ChunkSize = 20
	}
	if cfg.Sweep.ChunkConcurrency <= 0 {
		cfg.Sweep.ChunkConcurrency = 5
	}
	if cfg.Slip.DefaultStake <= 0 {
		cfg.Slip.DefaultStake = 10
	}
}
