package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPort 是未配置端口时的监听端口
const DefaultPort = 8000

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Health HealthConfig `mapstructure:"health"`
	Log    LogConfig    `mapstructure:"log"`
	Site   SiteConfig   `mapstructure:"site"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode string     `mapstructure:"mode"`
	Port int        `mapstructure:"port"`
	Cors CorsConfig `mapstructure:"cors"`
}

// Address 返回 http.Server 使用的监听地址
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// StoreConfig 选择留言板使用的键值存储后端
type StoreConfig struct {
	// Driver: redis | sqlite | postgres | memory | none
	Driver   string         `mapstructure:"driver"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Sqlite   SqliteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

// BackupConfig 定义了把留言镜像到本地SQLite的备份
type BackupConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Path            string `mapstructure:"path"`
	IntervalSeconds int    `mapstructure:"intervalSeconds"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite文件的位置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig 定义了Postgres的连接串
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// HealthConfig 定义了存储健康检查的节奏
type HealthConfig struct {
	IntervalSeconds int `mapstructure:"intervalSeconds"`
	TimeoutSeconds  int `mapstructure:"timeoutSeconds"`
}

// LogConfig 定义了日志输出
type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// SiteConfig 定义了页面渲染器要输出的页面
type SiteConfig struct {
	Pages []PageConfig `mapstructure:"pages"`
}

// PageConfig 对应一个 Hero 页面
type PageConfig struct {
	Path        string      `mapstructure:"path"`
	Title       string      `mapstructure:"title"`
	PageTitle   string      `mapstructure:"pageTitle"` // 为空时取标题的纯文本
	Description string      `mapstructure:"description"`
	Image       string      `mapstructure:"image"`
	Placement   string      `mapstructure:"placement"`
	CTA         []CTAConfig `mapstructure:"cta"`
}

// CTAConfig 是 Hero 区块中的一个按钮
type CTAConfig struct {
	ID      string `mapstructure:"id"`
	Href    string `mapstructure:"href"`
	Text    string `mapstructure:"text"`
	Outline bool   `mapstructure:"outline"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.cors.allowedOrigins", []string{"*"})
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.redis.address", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.backup.enabled", false)
	v.SetDefault("store.backup.path", "board-backup.db")
	v.SetDefault("store.backup.intervalSeconds", 600)
	v.SetDefault("store.sqlite.path", "board.db")
	v.SetDefault("health.intervalSeconds", 5)
	v.SetDefault("health.timeoutSeconds", 2)
	v.SetDefault("log.debug", false)
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件，找不到时只使用默认值和环境变量
func LoadConfig(paths ...string) (*Config, error) {
	// .env 是可选的
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("加载 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// 允许通过环境变量覆盖配置，例如 STORE_DRIVER=redis
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT 是托管平台约定的端口变量
	if err := v.BindEnv("server.port", "PORT", "SERVER_PORT"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = DefaultPort
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	return &cfg, nil
}
