package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.GRPCListenAddr != ":9090" {
		t.Errorf("GRPCListenAddr: got %s", cfg.GRPCListenAddr)
	}
	if cfg.ManagementPort != 8081 {
		t.Errorf("ManagementPort: got %d, want 8081", cfg.ManagementPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %s", cfg.LogLevel)
	}
	if cfg.MaxBodyBytes != 8*1024 {
		t.Errorf("MaxBodyBytes: got %d, want %d", cfg.MaxBodyBytes, 8*1024)
	}
	if cfg.DedupCacheSize != 100_000 {
		t.Errorf("DedupCacheSize: got %d, want 100000", cfg.DedupCacheSize)
	}
	if cfg.EnqueueWorkers != 8 {
		t.Errorf("EnqueueWorkers: got %d, want 8", cfg.EnqueueWorkers)
	}
	if cfg.QueueEndpoint != "localhost:6379" {
		t.Errorf("QueueEndpoint: got %s", cfg.QueueEndpoint)
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("RetryAttempts: got %d, want 5", cfg.RetryAttempts)
	}
	if cfg.RuleLoaderWorkers != 4 {
		t.Errorf("RuleLoaderWorkers: got %d, want 4", cfg.RuleLoaderWorkers)
	}
	if cfg.MockServerTimeout != 5*time.Second {
		t.Errorf("MockServerTimeout: got %v, want 5s", cfg.MockServerTimeout)
	}
}

func TestLoadEnv_GRPCListenAddr(t *testing.T) {
	t.Setenv("GRPC_LISTEN_ADDR", ":7000")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.GRPCListenAddr != ":7000" {
		t.Errorf("GRPCListenAddr: got %s, want :7000", cfg.GRPCListenAddr)
	}
}

func TestLoadEnv_ManagementPort(t *testing.T) {
	t.Setenv("MANAGEMENT_PORT", "9091")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.ManagementPort != 9091 {
		t.Errorf("ManagementPort: got %d, want 9091", cfg.ManagementPort)
	}
}

func TestLoadEnv_LogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %s", cfg.LogLevel)
	}
}

func TestLoadEnv_MaxBodyBytes(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "4096")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.MaxBodyBytes != 4096 {
		t.Errorf("MaxBodyBytes: got %d, want 4096", cfg.MaxBodyBytes)
	}
}

func TestLoadEnv_DedupCacheSizeZeroIgnored(t *testing.T) {
	t.Setenv("DEDUP_CACHE_SIZE", "0")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.DedupCacheSize != 100_000 {
		t.Errorf("DedupCacheSize: got %d, want default 100000 (zero should be ignored)", cfg.DedupCacheSize)
	}
}

func TestLoadEnv_EnqueueTimeoutDuration(t *testing.T) {
	t.Setenv("ENQUEUE_TIMEOUT", "500ms")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.EnqueueTimeout != 500*time.Millisecond {
		t.Errorf("EnqueueTimeout: got %v, want 500ms", cfg.EnqueueTimeout)
	}
}

func TestLoadEnv_QueueEndpoint(t *testing.T) {
	t.Setenv("QUEUE_ENDPOINT", "redis.internal:6380")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.QueueEndpoint != "redis.internal:6380" {
		t.Errorf("QueueEndpoint: got %s", cfg.QueueEndpoint)
	}
}

func TestLoadEnv_ManagementToken(t *testing.T) {
	t.Setenv("MANAGEMENT_TOKEN", "secret-token")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.ManagementToken != "secret-token" {
		t.Errorf("ManagementToken: got %s", cfg.ManagementToken)
	}
}

func TestLoadEnv_InvalidIntIgnored(t *testing.T) {
	t.Setenv("MANAGEMENT_PORT", "not-a-number")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.ManagementPort != 8081 {
		t.Errorf("ManagementPort: got %d, want 8081 (invalid env should be ignored)", cfg.ManagementPort)
	}
}

func TestLoadFile_ValidJSON(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	if err != nil {
		t.Fatal(err)
	}

	data, marshalErr := json.Marshal(map[string]any{
		"managementPort": 9999,
		"logLevel":       "warn",
		"dedupCacheSize": 50,
	})
	if marshalErr != nil {
		t.Fatal(marshalErr)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := defaults()
	loadFile(cfg, f.Name())

	if cfg.ManagementPort != 9999 {
		t.Errorf("ManagementPort: got %d, want 9999", cfg.ManagementPort)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %s", cfg.LogLevel)
	}
	if cfg.DedupCacheSize != 50 {
		t.Errorf("DedupCacheSize: got %d, want 50", cfg.DedupCacheSize)
	}
}

func TestLoadFile_Missing_IsNoOp(t *testing.T) {
	cfg := defaults()
	loadFile(cfg, "/nonexistent/path/config.json")
	if cfg.ManagementPort != 8081 {
		t.Errorf("ManagementPort changed unexpectedly: %d", cfg.ManagementPort)
	}
}

func TestLoadFile_InvalidJSON_PreservesDefaults(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-bad-*.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{this is not json}"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := defaults()
	loadFile(cfg, f.Name())
	if cfg.ManagementPort != 8081 {
		t.Errorf("ManagementPort changed on bad JSON: %d", cfg.ManagementPort)
	}
}

func TestSanitizerConfig_DefaultsWhenUnset(t *testing.T) {
	cfg := defaults()
	sc := cfg.SanitizerConfig()
	if len(sc.Patterns) == 0 {
		t.Error("expected default pattern catalog when SanitizePatterns is unset")
	}
	if len(sc.HeaderDenylist) == 0 {
		t.Error("expected default header denylist when HeaderDenylist is unset")
	}
	if len(sc.FieldNameDenylist) == 0 {
		t.Error("expected default field denylist when FieldNameDenylist is unset")
	}
}

func TestSanitizerConfig_HonorsOperatorHeaderDenylist(t *testing.T) {
	cfg := defaults()
	cfg.HeaderDenylist = []string{"x-internal-token"}
	sc := cfg.SanitizerConfig()
	if len(sc.HeaderDenylist) != 1 || sc.HeaderDenylist[0].Header != "x-internal-token" {
		t.Fatalf("expected operator-supplied header denylist to be wired through, got %+v", sc.HeaderDenylist)
	}
	if sc.HeaderDenylist[0].Marker != "SANITIZED_X_INTERNAL_TOKEN" {
		t.Errorf("expected derived marker, got %q", sc.HeaderDenylist[0].Marker)
	}
}

func TestSanitizerConfig_HonorsOperatorFieldNameDenylist(t *testing.T) {
	cfg := defaults()
	cfg.FieldNameDenylist = []string{"custom_secret"}
	sc := cfg.SanitizerConfig()
	if len(sc.FieldNameDenylist) != 1 || sc.FieldNameDenylist[0] != "custom_secret" {
		t.Fatalf("expected operator-supplied field denylist to be wired through, got %v", sc.FieldNameDenylist)
	}
}

func TestLoad_ReturnsNonNil(t *testing.T) {
	cfg := Load()
	if cfg == nil {
		t.Fatal("Load() returned nil")
	}
	if cfg.ManagementPort <= 0 {
		t.Errorf("ManagementPort should be positive, got %d", cfg.ManagementPort)
	}
}
