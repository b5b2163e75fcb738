package database

import (
	"testing"
	_ "time/tzdata"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSNPassesNativeDSN(t *testing.T) {
	dsn := "u:p@tcp(db:3306)/app?parseTime=true"
	assert.Equal(t, dsn, normalizeMySQLDSN("  "+dsn+" ", "x", "y"))
	assert.Equal(t, "", normalizeMySQLDSN("", "", ""))
}

func TestNormalizeMySQLDSNFromURL(t *testing.T) {
	got := normalizeMySQLDSN(
		"jdbc:mysql://db.local:3306/app?user=root&password=pw&useUnicode=true&characterEncoding=utf8&useSSL=false&serverTimezone=Asia/Shanghai&zeroDateTimeBehavior=convertToNull",
		"", "")

	cfg, err := mysql.ParseDSN(got)
	require.NoError(t, err, got)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db.local:3306", cfg.Addr)
	assert.Equal(t, "app", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "false", cfg.TLSConfig)
	assert.Equal(t, "Asia/Shanghai", cfg.Loc.String())
	assert.Contains(t, got, "charset=utf8")
	assert.NotContains(t, got, "useUnicode")
	assert.NotContains(t, got, "zeroDateTimeBehavior")
}

func TestNormalizeMySQLDSNOverrides(t *testing.T) {
	got := normalizeMySQLDSN("mysql://a:b@db:3306/app", "admin", "s3cret")
	cfg, err := mysql.ParseDSN(got)
	require.NoError(t, err, got)
	assert.Equal(t, "admin", cfg.User)
	assert.Equal(t, "s3cret", cfg.Passwd)
	assert.Contains(t, got, "charset=utf8mb4")
}

func TestNewGormRejectsUnknownDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
