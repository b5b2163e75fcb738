package database

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	// Log 接收 gorm 日志与 dsn 提示；为空则用标准库默认 logger
	Log *log.Logger
}

// NewGorm opens a pooled connection for o.Driver ("mysql" or "postgres").
func NewGorm(o Opts) (*gorm.DB, error) {
	out := o.Log
	if out == nil {
		out = log.Default()
	}
	var dial gorm.Dialector
	switch o.Driver {
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dsn := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		masked := dsn
		if at := strings.Index(masked, "@"); at > 0 {
			if colon := strings.Index(masked[:at], ":"); colon > 0 {
				masked = masked[:colon+1] + "****" + masked[at:]
			}
		}
		out.Println("[db] final mysql dsn =", masked)

		dial = mysql.Open(dsn)
	default:
		return nil, ErrUnsupportedDriver
	}
	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.New(out, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true, // 404 走业务分支，不算慢/错日志
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	db = db.
		Session(&gorm.Session{
			PrepareStmt:            true, // 预编译缓存，提高 QPS
			CreateBatchSize:        200,  // 批量写
			SkipDefaultTransaction: true, // 只在需要时手动开 Tx
		})
	return db, nil
}

// normalizeMySQLDSN accepts either a go-sql-driver DSN (returned as is) or a
// mysql:// / jdbc:mysql:// URL, which is rebuilt through mysql.Config.
// userOverride and passOverride win over credentials in the URL.
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return in
	}
	u, err := url.Parse(in)
	if err != nil {
		return in // 交给驱动报错
	}

	cfg := gomysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	q := u.Query()
	take := func(k string) string {
		v := q.Get(k)
		q.Del(k)
		return v
	}
	if v := take("user"); v != "" {
		cfg.User = v
	}
	if v := take("password"); v != "" {
		cfg.Passwd = v
	}
	if userOverride != "" {
		cfg.User = userOverride
	}
	if passOverride != "" {
		cfg.Passwd = passOverride
	}

	// JDBC 参数映射
	charset := take("charset")
	if enc := take("characterEncoding"); charset == "" {
		charset = enc
	}
	if charset == "" {
		charset = "utf8mb4"
	}
	take("useUnicode")
	take("zeroDateTimeBehavior")
	switch v := strings.ToLower(take("useSSL")); v {
	case "":
	case "true", "1":
		cfg.TLSConfig = "true"
	case "skip-verify", "preferred":
		cfg.TLSConfig = v
	default:
		cfg.TLSConfig = "false"
	}
	if tz := take("serverTimezone"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Loc = loc
		}
	}
	if v := take("parseTime"); v != "" {
		cfg.ParseTime = v == "true" || v == "1"
	}

	cfg.Params = map[string]string{"charset": charset}
	for k := range q {
		cfg.Params[k] = q.Get(k)
	}
	return cfg.FormatDSN()
}

var ErrUnsupportedDriver = errors.New("database: unsupported driver")

// Migrate creates or alters the tables of models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
