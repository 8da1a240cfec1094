// Package config loads cache client settings for applications and the CLI.
// Sources: a YAML file (with ${VAR} expansion), environment variables under
// the NSCACHE_ prefix, and an optional .env file pre-loaded into the environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/unkn0wn-root/nscache"
	"github.com/unkn0wn-root/nscache/codec"
	pr "github.com/unkn0wn-root/nscache/provider"
	"github.com/unkn0wn-root/nscache/provider/bigcache"
	"github.com/unkn0wn-root/nscache/provider/redis"
	"github.com/unkn0wn-root/nscache/provider/ristretto"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "NSCACHE_"

// Backend names accepted by File.Backend.
const (
	BackendRedis     = "redis"
	BackendBigCache  = "bigcache"
	BackendRistretto = "ristretto"
)

// File is everything needed to build and connect a cache client.
type File struct {
	Backend        string          `yaml:"backend" env:"BACKEND" envDefault:"redis"`
	Endpoint       nscache.Config  `yaml:"endpoint"`
	Prefix         string          `yaml:"prefix" env:"PREFIX" envDefault:"cache"`
	DefaultTTL     time.Duration   `yaml:"default_ttl" env:"DEFAULT_TTL"`
	FlushBatchSize int             `yaml:"flush_batch_size" env:"FLUSH_BATCH_SIZE" envDefault:"500"`
	Codec          string          `yaml:"codec" env:"CODEC" envDefault:"raw"`
	MaxValueBytes  int             `yaml:"max_value_bytes" env:"MAX_VALUE_BYTES"` // 0 => unlimited
	Redis          RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Ristretto      RistrettoConfig `yaml:"ristretto" envPrefix:"RISTRETTO_"`
}

// RedisConfig carries the Redis settings that are not part of the endpoint.
type RedisConfig struct {
	Username   string   `yaml:"username" env:"USERNAME"`
	Password   string   `yaml:"password" env:"PASSWORD"`
	DB         int      `yaml:"db" env:"DB"`
	ClientName string   `yaml:"client_name" env:"CLIENT_NAME"`
	Seeds      []string `yaml:"seeds" env:"SEEDS"`
	MasterName string   `yaml:"master_name" env:"MASTER_NAME"`
	Cluster    bool     `yaml:"cluster" env:"CLUSTER"`
}

type RistrettoConfig struct {
	NumCounters int64 `yaml:"num_counters" env:"NUM_COUNTERS" envDefault:"100000"`
	MaxCost     int64 `yaml:"max_cost" env:"MAX_COST" envDefault:"10000"`
	BufferItems int64 `yaml:"buffer_items" env:"BUFFER_ITEMS" envDefault:"64"`
}

// Defaults mirrors the envDefault tags for the YAML path.
func Defaults() File {
	return File{
		Backend:        BackendRedis,
		Prefix:         nscache.DefaultPrefix,
		FlushBatchSize: 500,
		Codec:          codec.NameRaw,
		Ristretto: RistrettoConfig{
			NumCounters: 100_000,
			MaxCost:     10_000,
			BufferItems: 64,
		},
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads a YAML file over Defaults and validates the endpoint.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (File, error) {
	f := Defaults()
	if err := yaml.Unmarshal(expandEnv(data), &f); err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	return f.normalize()
}

// FromEnv reads NSCACHE_* variables from the process environment.
func FromEnv() (File, error) { return fromEnv(nil) }

// fromEnv parses environ instead of the process environment when non-nil.
func fromEnv(environ map[string]string) (File, error) {
	f, err := env.ParseAsWithOptions[File](env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	})
	if err != nil {
		return File{}, fmt.Errorf("parse env: %w", err)
	}
	return f.normalize()
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// that are already set win. Missing files are an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

func (f File) normalize() (File, error) {
	ep, err := f.Endpoint.Normalize()
	if err != nil {
		return File{}, err
	}
	f.Endpoint = ep
	switch f.Backend {
	case BackendRedis, BackendBigCache, BackendRistretto:
	default:
		return File{}, &nscache.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", f.Backend)}
	}
	if f.FlushBatchSize < 0 {
		return File{}, &nscache.ConfigError{Field: "flush_batch_size", Reason: "must be >= 0"}
	}
	if _, err := codec.ForString(f.Codec); err != nil {
		return File{}, &nscache.ConfigError{Field: "codec", Reason: err.Error()}
	}
	if f.MaxValueBytes < 0 {
		return File{}, &nscache.ConfigError{Field: "max_value_bytes", Reason: "must be >= 0"}
	}
	return f, nil
}

// ValueCodec returns the configured string codec, size-limited when
// MaxValueBytes is set.
func (f File) ValueCodec() (codec.Codec[string], error) {
	c, err := codec.ForString(f.Codec)
	if err != nil {
		return nil, &nscache.ConfigError{Field: "codec", Reason: err.Error()}
	}
	return codec.Limit(c, f.MaxValueBytes), nil
}

// Dialer builds the provider.Dialer for the selected backend.
func (f File) Dialer() (pr.Dialer, error) {
	switch f.Backend {
	case BackendRedis:
		return redis.NewDialer(redis.DialConfig{
			Username:   f.Redis.Username,
			Password:   f.Redis.Password,
			DB:         f.Redis.DB,
			ClientName: f.Redis.ClientName,
			Seeds:      f.Redis.Seeds,
			MasterName: f.Redis.MasterName,
			Cluster:    f.Redis.Cluster,
		}), nil
	case BackendBigCache:
		return bigcache.Dialer(bigcache.Config{LifeWindow: f.DefaultTTL}), nil
	case BackendRistretto:
		return ristretto.Dialer(ristretto.Config{
			NumCounters: f.Ristretto.NumCounters,
			MaxCost:     f.Ristretto.MaxCost,
			BufferItems: f.Ristretto.BufferItems,
		}), nil
	default:
		return nil, &nscache.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", f.Backend)}
	}
}

// Options builds client options; logger and hooks may be nil.
func (f File) Options(l nscache.Logger, h nscache.Hooks) (nscache.Options, error) {
	d, err := f.Dialer()
	if err != nil {
		return nscache.Options{}, err
	}
	return nscache.Options{
		Dialer:         d,
		DefaultPrefix:  f.Prefix,
		DefaultTTL:     f.DefaultTTL,
		FlushBatchSize: f.FlushBatchSize,
		Logger:         l,
		Hooks:          h,
	}, nil
}
