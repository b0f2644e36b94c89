package app

import (
	"strings"

	"github.com/wollyshare/wollyshare/internal/auth"
	"github.com/wollyshare/wollyshare/internal/cache"
	"github.com/wollyshare/wollyshare/internal/database"
)

// JWTServiceConfig converts the auth section into the auth package config.
func (a AuthConfig) JWTServiceConfig() auth.JWTConfig {
	return auth.JWTConfig{
		Secret:         strings.TrimSpace(a.JWT.Secret),
		Issuer:         strings.TrimSpace(a.JWT.Issuer),
		AccessTokenTTL: a.JWT.TTL,
	}
}

// RedisClientConfig converts the cache section into the cache package config.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: c.Redis.Username,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// DatabaseConnConfig converts the database section into the database package config.
func (d DatabaseConfig) DatabaseConnConfig() database.Config {
	cfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(d.Driver)),
		Path:   strings.TrimSpace(d.Path),
		DSN:    strings.TrimSpace(d.DSN),
	}

	switch cfg.Driver {
	case "", "sqlite":
		cfg.Driver = "sqlite"
	case "postgres", "postgresql":
		cfg.Driver = "postgres"
		cfg.Host = strings.TrimSpace(d.Postgres.Host)
		cfg.Port = d.Postgres.Port
		cfg.Name = strings.TrimSpace(d.Postgres.Database)
		cfg.User = strings.TrimSpace(d.Postgres.Username)
		cfg.Password = strings.TrimSpace(d.Postgres.Password)
	case "mysql":
		cfg.Host = strings.TrimSpace(d.MySQL.Host)
		cfg.Port = d.MySQL.Port
		cfg.Name = strings.TrimSpace(d.MySQL.Database)
		cfg.User = strings.TrimSpace(d.MySQL.Username)
		cfg.Password = strings.TrimSpace(d.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return cfg
}
