package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:    AppConfig{Environment: "development"},
			Logger: LoggerConfig{Level: "info"},
			Data:   DataConfig{BasePath: "/tmp/marqed"},
			Search: SearchConfig{
				Timeout:                 3 * time.Second,
				DefaultMatchingDistance: 0.5,
			},
			Cache: CacheConfig{TTL: 5 * time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty environment", func(c *Config) { c.App.Environment = "" }, true},
		{"bad environment", func(c *Config) { c.App.Environment = "prod" }, true},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }, true},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }, true},
		{"zero search timeout", func(c *Config) { c.Search.Timeout = 0 }, true},
		{"zero cache TTL", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"distance too large", func(c *Config) { c.Search.DefaultMatchingDistance = 2.5 }, true},
		{"distance zero", func(c *Config) { c.Search.DefaultMatchingDistance = 0 }, true},
		{"staging ok", func(c *Config) { c.App.Environment = "staging" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("MARQED_TEST_KEY", "from-env")

	if got := getConfigValue("from-flag", "MARQED_TEST_KEY", "default"); got != "from-flag" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := getConfigValue("", "MARQED_TEST_KEY", "default"); got != "from-env" {
		t.Errorf("env should win over default, got %q", got)
	}
	if got := getConfigValue("", "MARQED_TEST_MISSING", "default"); got != "default" {
		t.Errorf("default should be used, got %q", got)
	}
}

func TestGetFloatConfigValue(t *testing.T) {
	t.Setenv("MARQED_TEST_FLOAT", "0.75")
	if got := getFloatConfigValue("", "MARQED_TEST_FLOAT", 0.5); got != 0.75 {
		t.Errorf("got %v, want 0.75", got)
	}

	t.Setenv("MARQED_TEST_FLOAT_BAD", "nope")
	if got := getFloatConfigValue("", "MARQED_TEST_FLOAT_BAD", 0.5); got != 0.5 {
		t.Errorf("bad value should fall back to default, got %v", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := "# comment\n\nMARQED_ENVFILE_A=hello\nMARQED_ENVFILE_B=\"quoted\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("MARQED_ENVFILE_A", "") // ensure unset semantics
	os.Unsetenv("MARQED_ENVFILE_A")
	os.Unsetenv("MARQED_ENVFILE_B")
	t.Cleanup(func() {
		os.Unsetenv("MARQED_ENVFILE_A")
		os.Unsetenv("MARQED_ENVFILE_B")
	})

	if err := loadEnvFile(envPath); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}

	if got := os.Getenv("MARQED_ENVFILE_A"); got != "hello" {
		t.Errorf("MARQED_ENVFILE_A = %q, want hello", got)
	}
	if got := os.Getenv("MARQED_ENVFILE_B"); got != "quoted" {
		t.Errorf("MARQED_ENVFILE_B = %q, want quoted (quotes stripped)", got)
	}
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("not a pair\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := loadEnvFile(envPath); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got, err := expandPath("~/marqed-data", "")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	want := filepath.Join(home, "marqed-data")
	if got != want {
		t.Errorf("expandPath(~/marqed-data) = %q, want %q", got, want)
	}

	got, err = expandPath("", "/fallback")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != "/fallback" {
		t.Errorf("empty path should use default, got %q", got)
	}
}
