package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// DefaultDemoCities is used when dashboard.demo_cities is not configured.
var DefaultDemoCities = []string{"London", "Tokyo", "New York", "Paris", "Sydney", "Cairo", "Rio de Janeiro", "Nairobi"}

// Config is a snapshot of every setting the application needs, built once at
// startup and passed to constructors.
type Config struct {
	APIKey      string
	APIURL      string
	HTTPTimeout time.Duration

	ServerPort        string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	RedisAddr string
	SeqTTL    time.Duration

	Dashboard DashboardConfig
	RateLimit RateLimitConfig

	OtelServiceName  string
	OtelCollectorURL string
}

// DashboardConfig selects the dashboard feature set.
type DashboardConfig struct {
	Geolocation  bool
	Shuffle      bool
	DiscardStale bool
	DemoCities   []string
	// IdleTTL evicts dashboards nobody has touched for this long.
	IdleTTL time.Duration
}

type RateLimitConfig struct {
	GlobalRate     float64
	GlobalBurst    int
	ParamRate      float64
	ParamBurst     int
	CleanupTimeout time.Duration
}

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_header_timeout", "15s")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.idle_timeout", "30s")
	viper.SetDefault("openweathermap.api_url", "https://api.openweathermap.org/data/2.5/weather")
	viper.SetDefault("redis.seq_ttl", "1h")
	viper.SetDefault("dashboard.geolocation", true)
	viper.SetDefault("dashboard.shuffle", true)
	viper.SetDefault("dashboard.discard_stale", true)
	viper.SetDefault("otel.service_name", "weather-dashboard")
}

func initConfig() {
	once.Do(func() {
		setDefaults()
		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func GetOpenWeatherApiUrl() string {
	initConfig()
	return viper.GetString("openweathermap.api_url")
}

// GetOpenWeatherMapAPIKey reads the key from the environment, loading .env first.
func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPENWEATHERMAP_API_KEY")
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	return viper.GetString("server.port")
}

// GetDuration parses the duration stored under key, returning def when the
// value is missing or malformed.
func GetDuration(key string, def time.Duration) time.Duration {
	initConfig()
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		GetLogger().Warnw("Invalid duration in config, using default", "key", key, "value", durStr, "default", def)
		return def
	}
	return dur
}

// GetDashboardConfig returns the dashboard feature flags and demo city list.
func GetDashboardConfig() DashboardConfig {
	initConfig()
	cities := viper.GetStringSlice("dashboard.demo_cities")
	if len(cities) == 0 {
		cities = append([]string(nil), DefaultDemoCities...)
	}
	return DashboardConfig{
		Geolocation:  viper.GetBool("dashboard.geolocation"),
		Shuffle:      viper.GetBool("dashboard.shuffle"),
		DiscardStale: viper.GetBool("dashboard.discard_stale"),
		DemoCities:   cities,
		IdleTTL:      GetDuration("dashboard.idle_ttl", GetDuration("redis.seq_ttl", time.Hour)),
	}
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	return GetDuration("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetGlobalRateLimiterConfig returns the rate and burst for the global rate limiter from config.
// Rate is expressed in requests per minute.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the rate and burst for the param rate limiter from config.
// Rate is expressed in requests per minute.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}

// Load snapshots the configuration. The API key is read once here and nowhere else.
func Load() Config {
	initConfig()
	globalRate, globalBurst := GetGlobalRateLimiterConfig()
	paramRate, paramBurst := GetParamRateLimiterConfig()
	return Config{
		APIKey:            GetOpenWeatherMapAPIKey(),
		APIURL:            GetOpenWeatherApiUrl(),
		HTTPTimeout:       GetDuration("weather.http_timeout", 0),
		ServerPort:        GetServerPort(),
		ReadHeaderTimeout: GetDuration("server.read_header_timeout", 15*time.Second),
		ReadTimeout:       GetDuration("server.read_timeout", 15*time.Second),
		WriteTimeout:      GetDuration("server.write_timeout", 10*time.Second),
		IdleTimeout:       GetDuration("server.idle_timeout", 30*time.Second),
		RedisAddr:         GetRedisAddr(),
		SeqTTL:            GetDuration("redis.seq_ttl", time.Hour),
		Dashboard:         GetDashboardConfig(),
		RateLimit: RateLimitConfig{
			GlobalRate:     globalRate,
			GlobalBurst:    globalBurst,
			ParamRate:      paramRate,
			ParamBurst:     paramBurst,
			CleanupTimeout: GetRateLimiterCleanupTimeout(),
		},
		OtelServiceName:  viper.GetString("otel.service_name"),
		OtelCollectorURL: viper.GetString("otel.collector_url"),
	}
}
