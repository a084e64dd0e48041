// Package config loads depcollect settings from an optional YAML file and
// DEPCOLLECT_* environment variables.
//
// A minimal depcollect.yaml:
//
//	repositories:
//	  - https://repo1.maven.org/maven2
//	  - https://nexus.example.com/repository/public
//	local: ~/.m2/repository
//	cache:
//	  backend: redis
//	  ttl: 12h
//	  redis:
//	    addr: localhost:6379
//	max_depth: 20
//	excluded_scopes: [test, provided]
//
// Nested keys map to environment variables with underscores, for example
// DEPCOLLECT_CACHE_BACKEND or DEPCOLLECT_CACHE_REDIS_ADDR. Lists are comma
// separated.
package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/integrations/maven"
	"github.com/matzehuels/depcollect/pkg/repository/local"

	derrors "github.com/matzehuels/depcollect/pkg/errors"
)

const (
	// FileName is the config file name without extension.
	FileName = "depcollect"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "DEPCOLLECT"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// LocalDisabled turns off the local repository when used as Config.Local.
const LocalDisabled = "none"

// Config is the complete depcollect configuration.
type Config struct {
	Repositories   []string    `mapstructure:"repositories"`
	Local          string      `mapstructure:"local"`
	Cache          CacheConfig `mapstructure:"cache"`
	Concurrency    int         `mapstructure:"concurrency"`
	MaxDepth       int         `mapstructure:"max_depth"`
	ExcludedScopes []string    `mapstructure:"excluded_scopes"`
	Serve          ServeConfig `mapstructure:"serve"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	Namespace string        `mapstructure:"namespace"`
	TTL       time.Duration `mapstructure:"ttl"`
	Dir       string        `mapstructure:"dir"`
	Redis     RedisConfig   `mapstructure:"redis"`
	Mongo     MongoConfig   `mapstructure:"mongo"`
}

// RedisConfig mirrors cache.RedisConfig.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// MongoConfig mirrors cache.MongoConfig.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// ServeConfig configures the HTTP service.
type ServeConfig struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("repositories", []string{maven.CentralURL})
	v.SetDefault("local", "")
	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.namespace", "")
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "depcollect:")
	v.SetDefault("cache.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("cache.mongo.database", "depcollect")
	v.SetDefault("cache.mongo.collection", "cache")
	v.SetDefault("concurrency", collect.DefaultConcurrency)
	v.SetDefault("max_depth", collect.DefaultMaxDepth)
	v.SetDefault("excluded_scopes", []string{})
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.timeout", 2*time.Minute)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or depcollect.yaml from the working directory and
// $XDG_CONFIG_HOME/depcollect when path is empty. A missing default file is
// not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "decode config")
	}
	cfg.Repositories = splitList(cfg.Repositories)
	cfg.ExcludedScopes = splitList(cfg.ExcludedScopes)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks repository URLs, the cache backend and scope names.
func (c *Config) Validate() error {
	if len(c.Repositories) == 0 && c.Local == LocalDisabled {
		return derrors.New(derrors.ErrCodeInvalidConfig, "no repositories configured")
	}
	for _, r := range c.Repositories {
		if err := derrors.ValidateURL(r); err != nil {
			return err
		}
	}
	backends := []string{BackendFile, BackendRedis, BackendMongo, BackendNone}
	if !slices.Contains(backends, c.Cache.Backend) {
		return derrors.New(derrors.ErrCodeInvalidConfig, "unknown cache backend %q (want one of %s)",
			c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.TTL < 0 {
		return derrors.New(derrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	for _, s := range c.ExcludedScopes {
		if _, err := derrors.ValidateScope(s); err != nil {
			return err
		}
	}
	return nil
}

// CollectOptions converts the walk settings. logger may be nil.
func (c *Config) CollectOptions(logger func(string, ...any)) collect.Options {
	scopes := make([]artifact.Scope, len(c.ExcludedScopes))
	for i, s := range c.ExcludedScopes {
		scopes[i] = artifact.Scope(s)
	}
	return collect.Options{
		MaxDepth:       c.MaxDepth,
		Concurrency:    c.Concurrency,
		ExcludedScopes: scopes,
		Logger:         logger,
	}
}

// LocalDir resolves the local repository directory. It returns "" when the
// local repository is disabled and expands a leading "~/".
func (c *Config) LocalDir() (string, error) {
	switch {
	case c.Local == LocalDisabled:
		return "", nil
	case c.Local == "":
		return local.DefaultDir()
	case strings.HasPrefix(c.Local, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, c.Local[2:]), nil
	}
	return c.Local, nil
}

// Keyer returns the key builder for the cache, prefixed with the namespace
// when one is configured.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Namespace+":")
}

// Open connects the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        c.Mongo.URI,
			Database:   c.Mongo.Database,
			Collection: c.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	}
	dir := c.Dir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", FileName), nil
}

// splitList flattens comma separated entries, which is how lists arrive
// from environment variables and flags.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
