package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestGetOpenWeatherMapAPIKey(t *testing.T) {
	// Test with the environment variable set
	expectedKey := "test_api_key_123"
	os.Setenv("OPENWEATHERMAP_API_KEY", expectedKey)
	defer os.Unsetenv("OPENWEATHERMAP_API_KEY")

	result := GetOpenWeatherMapAPIKey()
	if result != expectedKey {
		t.Errorf("Expected API key %s, got %s", expectedKey, result)
	}

	// Test with environment variable not set
	os.Unsetenv("OPENWEATHERMAP_API_KEY")
	result = GetOpenWeatherMapAPIKey()
	if result != "" {
		t.Errorf("Expected empty string, got %s", result)
	}
}

func TestGetOpenWeatherApiUrl(t *testing.T) {
	want := "https://api.openweathermap.org/data/2.5/weather"
	got := GetOpenWeatherApiUrl()
	if got != want {
		t.Errorf("Expected API URL %s, got %s", want, got)
	}
}

func TestGetServerPort(t *testing.T) {
	want := "8080"
	got := GetServerPort()
	if got != want {
		t.Errorf("Expected server port %s, got %s", want, got)
	}
}

func TestGetDashboardConfig_MergesTestConfig(t *testing.T) {
	cfg := GetDashboardConfig()
	if !cfg.Geolocation || !cfg.Shuffle || !cfg.DiscardStale {
		t.Errorf("Expected all dashboard features enabled, got %+v", cfg)
	}
	want := []string{"London", "Tokyo", "Paris"}
	if len(cfg.DemoCities) != len(want) {
		t.Fatalf("Expected demo cities %v, got %v", want, cfg.DemoCities)
	}
	for i := range want {
		if cfg.DemoCities[i] != want[i] {
			t.Errorf("Expected demo city %s at %d, got %s", want[i], i, cfg.DemoCities[i])
		}
	}
}

func TestGetDashboardConfig_IdleTTL(t *testing.T) {
	if got := GetDashboardConfig().IdleTTL; got != 10*time.Minute {
		t.Errorf("Expected idle TTL 10m, got %v", got)
	}

	prev := viper.Get("dashboard.idle_ttl")
	viper.Set("dashboard.idle_ttl", "")
	defer viper.Set("dashboard.idle_ttl", prev)
	if got := GetDashboardConfig().IdleTTL; got != 5*time.Minute {
		t.Errorf("Expected idle TTL to fall back to redis.seq_ttl 5m, got %v", got)
	}
}

func TestGetDashboardConfig_DefaultCities(t *testing.T) {
	prev := viper.Get("dashboard.demo_cities")
	viper.Set("dashboard.demo_cities", []string{})
	defer viper.Set("dashboard.demo_cities", prev)

	cfg := GetDashboardConfig()
	if len(cfg.DemoCities) != len(DefaultDemoCities) {
		t.Errorf("Expected %d default demo cities, got %d", len(DefaultDemoCities), len(cfg.DemoCities))
	}
}

func TestGetDuration(t *testing.T) {
	if got := GetDuration("rate_limiter.cleanup_timeout", time.Hour); got != time.Minute {
		t.Errorf("Expected test config cleanup timeout 1m, got %s", got)
	}
	if got := GetDuration("does.not.exist", 7*time.Second); got != 7*time.Second {
		t.Errorf("Expected default for missing key, got %s", got)
	}

	viper.Set("weather.bogus_timeout", "soon")
	defer viper.Set("weather.bogus_timeout", "")
	if got := GetDuration("weather.bogus_timeout", 2*time.Second); got != 2*time.Second {
		t.Errorf("Expected default for malformed value, got %s", got)
	}
}

func TestRateLimiterConfig(t *testing.T) {
	rate, burst := GetGlobalRateLimiterConfig()
	if rate != 10 || burst != 10 {
		t.Errorf("Expected global 10/10, got %v/%d", rate, burst)
	}
	rate, burst = GetParamRateLimiterConfig()
	if rate != 2 || burst != 2 {
		t.Errorf("Expected param 2/2, got %v/%d", rate, burst)
	}
}

func TestLoad(t *testing.T) {
	os.Setenv("OPENWEATHERMAP_API_KEY", "load_key")
	defer os.Unsetenv("OPENWEATHERMAP_API_KEY")

	cfg := Load()
	if cfg.APIKey != "load_key" {
		t.Errorf("Expected API key load_key, got %s", cfg.APIKey)
	}
	if cfg.SeqTTL != 5*time.Minute {
		t.Errorf("Expected seq ttl 5m from test config, got %s", cfg.SeqTTL)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("Expected transport default timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.OtelServiceName != "weather-dashboard" {
		t.Errorf("Expected otel service name weather-dashboard, got %s", cfg.OtelServiceName)
	}
}

func TestReloadConfigForTest(t *testing.T) {
	// Should not panic or error
	ReloadConfigForTest()
}

func TestGetProjectRoot(t *testing.T) {
	root, err := getProjectRoot()
	if err != nil {
		t.Fatalf("Expected project root, got error %v", err)
	}
	if _, err := os.Stat(root + "/config.yaml"); err != nil {
		t.Errorf("Expected config.yaml in project root %s: %v", root, err)
	}
}
