// Package config loads svglayers settings from a TOML file.
//
// Every field has a default, so a missing file is not an error. The CLI
// layers its flags on top of the loaded values:
//
//	cfg, err := config.Load("")   // default path
//	cfg.Ungroup.MaxDepth = 3      // --max-depth 3
//	if err := cfg.Validate(); err != nil { ... }
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/transform"
)

// AppName names the config and cache directories.
const AppName = "svglayers"

// Cache backends.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Defaults for values not covered by transform.
const (
	DefaultTTL           = 24 * time.Hour
	DefaultRedisAddr     = "localhost:6379"
	DefaultMongoURI      = "mongodb://localhost:27017"
	DefaultMongoDatabase = AppName
	DefaultServerAddr    = ":8080"
)

// Config is the root of config.toml.
type Config struct {
	Ungroup Ungroup `toml:"ungroup"`
	Steps   Steps   `toml:"steps"`
	Remove  Remove  `toml:"remove"`
	Regroup Regroup `toml:"regroup"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
}

// Ungroup holds the flattening thresholds.
type Ungroup struct {
	StartDepth  int  `toml:"start_depth"`
	MaxDepth    int  `toml:"max_depth"`
	KeepDepth   int  `toml:"keep_depth"`
	BakeViewBox bool `toml:"bake_viewbox"`
}

// Steps toggles the pipeline stages.
type Steps struct {
	Prune   bool `toml:"prune"`
	Ungroup bool `toml:"ungroup"`
	Remove  bool `toml:"remove"`
	Regroup bool `toml:"regroup"`
}

// Remove lists the element kinds deleted by the remove stage.
type Remove struct {
	Kinds []string `toml:"kinds"`
}

// Regroup configures subgroup labels.
type Regroup struct {
	Prefix string `toml:"prefix"`
}

// Cache selects and configures the result cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`

	// Namespace prefixes every key so deployments can share one Redis or
	// Mongo backend.
	Namespace string `toml:"namespace"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration that decodes from strings such as "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Ungroup: Ungroup{
			StartDepth:  transform.DefaultStartDepth,
			MaxDepth:    transform.DefaultMaxDepth,
			KeepDepth:   transform.DefaultKeepDepth,
			BakeViewBox: true,
		},
		Steps:   Steps{Prune: true, Ungroup: true, Remove: true, Regroup: true},
		Remove:  Remove{Kinds: append([]string(nil), transform.DefaultRemoveKinds...)},
		Regroup: Regroup{Prefix: transform.DefaultGroupPrefix},
		Cache: Cache{
			Backend:       BackendFile,
			TTL:           Duration{DefaultTTL},
			RedisAddr:     DefaultRedisAddr,
			MongoURI:      DefaultMongoURI,
			MongoDatabase: DefaultMongoDatabase,
		},
		Server: Server{Addr: DefaultServerAddr},
	}
}

// Load reads path over the defaults. An empty path means DefaultPath; a
// missing default file yields the defaults, while a missing explicit path is
// FILE_NOT_FOUND.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Decode(data, cfg)
}

// Decode parses TOML data on top of base. Unknown keys are rejected.
func Decode(data []byte, base Config) (Config, error) {
	cfg := base
	cfg.Remove.Kinds = append([]string(nil), base.Remove.Kinds...)
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Validate checks thresholds, kinds, prefix and backend.
func (c Config) Validate() error {
	if err := errors.ValidateDepths(c.Ungroup.StartDepth, c.Ungroup.MaxDepth, c.Ungroup.KeepDepth); err != nil {
		return err
	}
	if err := errors.ValidateKinds(c.Remove.Kinds); err != nil {
		return err
	}
	if err := errors.ValidateIDPrefix(c.Regroup.Prefix); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone, BackendRedis, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, none, redis or mongo)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/svglayers/config.toml, falling back
// to ~/.config/svglayers/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory or the XDG default
// (~/.cache/svglayers/).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Encode writes cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
