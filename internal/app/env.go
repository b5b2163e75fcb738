// Package app wires configuration into stores, services and HTTP modules.
// Both binaries build their dependencies through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-gin-resource-api/internal/core/auth"
	"go-gin-resource-api/internal/core/cache"
	"go-gin-resource-api/internal/core/config"
	"go-gin-resource-api/internal/core/database"
	"go-gin-resource-api/internal/core/logger"
	"go-gin-resource-api/internal/domain"
)

// Env holds the process-wide collaborators. DB and Cache are nil unless the
// store configuration asks for them.
type Env struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache
	JWT   *auth.JWTer
	Sink  *logger.HourlySink

	closers []func() error
}

func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Env, error) {
	e := &Env{
		Cfg:  cfg,
		Log:  log,
		Sink: logger.NewHourlySink(cfg.FailureLog.Dir, cfg.FailureLog.MaxSizeMB),
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
	}
	e.closers = append(e.closers, e.Sink.Close)

	if cfg.Store.Driver == "gorm" {
		if err := e.openDB(); err != nil {
			_ = e.Close()
			return nil, err
		}
		if cfg.Store.Cache {
			if err := e.openCache(ctx); err != nil {
				_ = e.Close()
				return nil, err
			}
		}
	}
	return e, nil
}

func (e *Env) openDB() error {
	stdLog, err := logger.ToStdLogger(e.Log.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return err
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             e.Cfg.DB.Driver,
		DSN:                e.Cfg.DB.DSN,
		Username:           e.Cfg.DB.Username,
		Password:           e.Cfg.DB.Password,
		MaxOpenConns:       e.Cfg.DB.MaxOpenConns,
		MaxIdleConns:       e.Cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: e.Cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           e.Cfg.DB.LogLevel,
		Log:                stdLog,
	})
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	e.DB = db
	e.closers = append(e.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	e.Log.Info("database connected", zap.String("driver", e.Cfg.DB.Driver))

	if e.Cfg.DB.AutoMigrate {
		if err := database.Migrate(db, &domain.User{}, &domain.Contact{}, &domain.NewsItem{}, &domain.ChatRequest{}); err != nil {
			return err
		}
		e.Log.Info("automigrate done")
	}
	return nil
}

func (e *Env) openCache(ctx context.Context) error {
	c := cache.New(e.Cfg.Redis.Addr, e.Cfg.Redis.Password, e.Cfg.Redis.DB)
	c.Prefix = e.Cfg.Redis.Prefix
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis ping: %w", err)
	}
	e.Cache = c
	e.closers = append(e.closers, c.Close)
	e.Log.Info("redis connected", zap.String("addr", e.Cfg.Redis.Addr))
	return nil
}

// Health pings the configured backends.
func (e *Env) Health(ctx context.Context) error {
	if e.DB != nil {
		sqlDB, err := e.DB.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
	}
	if e.Cache != nil {
		if err := e.Cache.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
