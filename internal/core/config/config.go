package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
	// 文件切割，File 为空则只写控制台
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FailureLog 失败请求的文本日志，按 UTC 日期/小时分目录
type FailureLog struct {
	Dir       string
	MaxSizeMB int
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Store 选择资源的存储实现
type Store struct {
	Driver      string // memory | gorm
	Cache       bool   // gorm 之上叠加 redis 读缓存
	CacheTTLSec int
}

func (s Store) CacheTTL() time.Duration { return time.Duration(s.CacheTTLSec) * time.Second }

type Limits struct {
	RPS           float64
	Burst         int
	PerIPRPS      float64
	PerIPBurst    int
	MaxConcurrent int64
	MaxBodyBytes  int64
	TimeoutSec    int
	MaxPageLimit  int
}

func (l Limits) Timeout() time.Duration { return time.Duration(l.TimeoutSec) * time.Second }

// Seed 启动时确保存在的管理员账号；Email 为空则跳过
type Seed struct {
	AdminEmail    string
	AdminPassword string
}

type Config struct {
	App        App
	Log        Log
	FailureLog FailureLog
	JWT        JWT
	DB         DB
	Redis      Redis `mapstructure:"redis"`
	Store      Store
	Limits     Limits
	Seed       Seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "go-gin-resource-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxSizeMB", 100)
	v.SetDefault("log.maxBackups", 7)
	v.SetDefault("log.maxAgeDays", 14)

	v.SetDefault("failureLog.dir", "logs/failures")
	v.SetDefault("failureLog.maxSizeMB", 50)

	v.SetDefault("jwt.issuer", "go-gin-resource-api")
	v.SetDefault("jwt.accessTokenTTLMin", 120)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.maxOpenConns", 50)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.prefix", "res")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.cacheTTLSec", 60)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 20)
	v.SetDefault("limits.perIPBurst", 40)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 16<<20)
	v.SetDefault("limits.timeoutSec", 10)
	v.SetDefault("limits.maxPageLimit", 100)
}

// Read loads path (YAML) with APP_ environment overrides, e.g.
// APP_STORE_DRIVER=gorm overrides store.driver.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "gorm":
	default:
		return fmt.Errorf("config: store.driver %q must be memory or gorm", c.Store.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	return nil
}

// Load 同 Read，失败直接退出（启动期使用）
func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
