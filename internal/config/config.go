// Package config loads the enrollment server configuration from defaults, an
// optional YAML file, an optional .env file and ENROLL_* environment
// variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ENROLL_"

// Session store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	GraphQL   GraphQLConfig   `yaml:"graphql"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       LogConfig       `yaml:"log"`
	URLs      URLConfig       `yaml:"urls"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"basePath"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	CookieSecure    *bool         `yaml:"cookieSecure"`
}

type GraphQLConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	Driver        string        `yaml:"driver"`
	TTL           time.Duration `yaml:"ttl"`
	CookieName    string        `yaml:"cookieName"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisDB       int           `yaml:"redisDB"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisPrefix   string        `yaml:"redisPrefix"`
}

type RateLimitConfig struct {
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
	IdleTTL time.Duration `yaml:"idleTTL"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type URLConfig struct {
	Login     string `yaml:"login"`
	Booking   string `yaml:"booking"`
	Marketing string `yaml:"marketing"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	secure := true
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/enroll",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CookieSecure:    &secure,
		},
		GraphQL: GraphQLConfig{
			Endpoint: "http://localhost:4000/graphql",
			Timeout:  10 * time.Second,
		},
		Session: SessionConfig{
			Driver:      DriverMemory,
			TTL:         2 * time.Hour,
			CookieName:  "enroll_sid",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "enroll:session:",
		},
		RateLimit: RateLimitConfig{
			RPS:     2,
			Burst:   10,
			IdleTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		URLs: URLConfig{
			Login:     "/login",
			Booking:   "http://localhost:3000",
			Marketing: "http://localhost:3001",
		},
	}
}

// SecureCookies reports whether the session cookie carries the Secure flag.
func (c Config) SecureCookies() bool {
	return c.Server.CookieSecure == nil || *c.Server.CookieSecure
}

// DefaultCandidates lists the config files tried when no path is given.
var DefaultCandidates = []string{"configs/enrollment.yaml", "enrollment.yaml"}

// Loader reads configuration layers.
type Loader struct {
	Path      string
	EnvFile   string
	LookupEnv func(string) (string, bool)
	ReadFile  func(string) ([]byte, error)
}

// Load is a shortcut for a Loader reading path and .env from the process
// environment.
func Load(path string) (Config, error) {
	return Loader{Path: path, EnvFile: ".env"}.Load()
}

// Load applies every layer over Default. An explicit Path must exist;
// candidate files and the env file are optional.
func (l Loader) Load() (Config, error) {
	cfg := Default()

	readFile := l.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	data, source, err := l.read(readFile)
	if err != nil {
		return Config{}, err
	}
	if data != nil {
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", source, err)
		}
		Merge(&cfg, parsed)
	}

	lookup := l.LookupEnv
	if lookup == nil {
		if l.EnvFile != "" {
			if err := godotenv.Load(l.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: env file %s: %w", l.EnvFile, err)
			}
		}
		lookup = os.LookupEnv
	}
	if err := ApplyEnvOverrides(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (l Loader) read(readFile func(string) ([]byte, error)) ([]byte, string, error) {
	if l.Path != "" {
		data, err := readFile(l.Path)
		if err != nil {
			return nil, "", fmt.Errorf("config: read %s: %w", l.Path, err)
		}
		return data, l.Path, nil
	}
	for _, path := range DefaultCandidates {
		data, err := readFile(path)
		if err != nil {
			continue
		}
		return data, path, nil
	}
	return nil, "", nil
}

// Merge copies the non-zero values of src onto dst.
func Merge(dst *Config, src Config) {
	mergeString(&dst.Server.Addr, src.Server.Addr)
	mergeString(&dst.Server.BasePath, src.Server.BasePath)
	mergeDuration(&dst.Server.ReadTimeout, src.Server.ReadTimeout)
	mergeDuration(&dst.Server.WriteTimeout, src.Server.WriteTimeout)
	mergeDuration(&dst.Server.ShutdownTimeout, src.Server.ShutdownTimeout)
	if src.Server.CookieSecure != nil {
		v := *src.Server.CookieSecure
		dst.Server.CookieSecure = &v
	}

	mergeString(&dst.GraphQL.Endpoint, src.GraphQL.Endpoint)
	mergeDuration(&dst.GraphQL.Timeout, src.GraphQL.Timeout)

	mergeString(&dst.Session.Driver, src.Session.Driver)
	mergeDuration(&dst.Session.TTL, src.Session.TTL)
	mergeString(&dst.Session.CookieName, src.Session.CookieName)
	mergeString(&dst.Session.RedisAddr, src.Session.RedisAddr)
	mergeString(&dst.Session.RedisPassword, src.Session.RedisPassword)
	mergeString(&dst.Session.RedisPrefix, src.Session.RedisPrefix)
	if src.Session.RedisDB != 0 {
		dst.Session.RedisDB = src.Session.RedisDB
	}

	if src.RateLimit.RPS != 0 {
		dst.RateLimit.RPS = src.RateLimit.RPS
	}
	if src.RateLimit.Burst != 0 {
		dst.RateLimit.Burst = src.RateLimit.Burst
	}
	mergeDuration(&dst.RateLimit.IdleTTL, src.RateLimit.IdleTTL)

	mergeString(&dst.Log.Level, src.Log.Level)
	mergeString(&dst.Log.Format, src.Log.Format)

	mergeString(&dst.URLs.Login, src.URLs.Login)
	mergeString(&dst.URLs.Booking, src.URLs.Booking)
	mergeString(&dst.URLs.Marketing, src.URLs.Marketing)
}

// ApplyEnvOverrides reads ENROLL_<SECTION>_<KEY> variables through lookup.
func ApplyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SERVER_ADDR":            &cfg.Server.Addr,
		"SERVER_BASE_PATH":       &cfg.Server.BasePath,
		"GRAPHQL_ENDPOINT":       &cfg.GraphQL.Endpoint,
		"SESSION_DRIVER":         &cfg.Session.Driver,
		"SESSION_COOKIE_NAME":    &cfg.Session.CookieName,
		"SESSION_REDIS_ADDR":     &cfg.Session.RedisAddr,
		"SESSION_REDIS_PASSWORD": &cfg.Session.RedisPassword,
		"SESSION_REDIS_PREFIX":   &cfg.Session.RedisPrefix,
		"LOG_LEVEL":              &cfg.Log.Level,
		"LOG_FORMAT":             &cfg.Log.Format,
		"URLS_LOGIN":             &cfg.URLs.Login,
		"URLS_BOOKING":           &cfg.URLs.Booking,
		"URLS_MARKETING":         &cfg.URLs.Marketing,
	}
	for key, dst := range strs {
		if v, ok := env(lookup, key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":     &cfg.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    &cfg.Server.WriteTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.Server.ShutdownTimeout,
		"GRAPHQL_TIMEOUT":         &cfg.GraphQL.Timeout,
		"SESSION_TTL":             &cfg.Session.TTL,
		"RATELIMIT_IDLE_TTL":      &cfg.RateLimit.IdleTTL,
	}
	for key, dst := range durations {
		v, ok := env(lookup, key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
		}
		*dst = d
	}

	if v, ok := env(lookup, "SERVER_COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sSERVER_COOKIE_SECURE: %w", envPrefix, err)
		}
		cfg.Server.CookieSecure = &b
	}
	if v, ok := env(lookup, "SESSION_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sSESSION_REDIS_DB: %w", envPrefix, err)
		}
		cfg.Session.RedisDB = n
	}
	if v, ok := env(lookup, "RATELIMIT_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %sRATELIMIT_RPS: %w", envPrefix, err)
		}
		cfg.RateLimit.RPS = f
	}
	if v, ok := env(lookup, "RATELIMIT_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sRATELIMIT_BURST: %w", envPrefix, err)
		}
		cfg.RateLimit.Burst = n
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Session.Driver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("config: unknown session driver %q", c.Session.Driver)
	}
	if strings.TrimSpace(c.GraphQL.Endpoint) == "" {
		return fmt.Errorf("config: graphql.endpoint is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive")
	}
	if c.Session.Driver == DriverRedis && strings.TrimSpace(c.Session.RedisAddr) == "" {
		return fmt.Errorf("config: session.redisAddr is required for the redis driver")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

func env(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeDuration(dst *time.Duration, src time.Duration) {
	if src != 0 {
		*dst = src
	}
}
