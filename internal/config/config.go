// Package config loads and holds all collector/rule-loader configuration.
// Settings are layered: defaults → pipeline-config.json → environment
// variables (env vars win). The schema is intentionally flat — one struct,
// no nested sub-objects — per the Open Question in spec §9 resolved in
// favor of the teacher's own flat Config shape rather than introducing a
// grouping convention the rest of the pack doesn't use.
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meshcap/sanitizer-pipeline/internal/model"
	"github.com/meshcap/sanitizer-pipeline/internal/sanitizer"
)

// Config holds the full pipeline configuration, shared by cmd/collector and
// cmd/ruleloader; each binary only reads the fields it needs.
type Config struct {
	// Collector / ingest transport.
	GRPCListenAddr string `json:"grpcListenAddr"`
	ManagementPort int    `json:"managementPort"`
	ManagementToken string `json:"managementToken"`
	LogLevel       string `json:"logLevel"`

	// Sanitizer.
	MaxBodyBytes      int                     `json:"maxBodyBytes"`
	SanitizePatterns  []sanitizer.PatternSpec `json:"sanitizePatterns"`
	HeaderDenylist    []string                `json:"headerDenylist"`
	FieldNameDenylist []string                `json:"fieldNameDenylist"`

	// Deduplicator.
	DedupCacheSize  int `json:"dedupCacheSize"`
	DedupBodyLimit  int `json:"dedupBodyLimit"`

	// Staging + enqueue worker fleet.
	StagingChannelDepth int           `json:"stagingChannelDepth"`
	EnqueueWorkers      int           `json:"enqueueWorkers"`
	EnqueueTimeout      time.Duration `json:"enqueueTimeout"`

	// Queue (Redis).
	QueueEndpoint string `json:"queueEndpoint"`
	QueuePassword string `json:"queuePassword"`
	QueueDB       int    `json:"queueDB"`
	QueueListName string `json:"queueListName"`
	QueueDLQName  string `json:"queueDLQName"`
	RetryAttempts int    `json:"retryAttempts"`

	// Rule Loader.
	MockServerURL       string        `json:"mockServerURL"`
	MockServerToken     string        `json:"mockServerToken"`
	MockServerTimeout   time.Duration `json:"mockServerTimeout"`
	RuleLoaderWorkers   int           `json:"ruleLoaderWorkers"`
	RuleLoaderBatchSize int           `json:"ruleLoaderBatchSize"`
	PopTimeout          time.Duration `json:"popTimeout"`
	BackupSinkPath      string        `json:"backupSinkPath"`
}

// Load returns config with defaults overridden by pipeline-config.json and
// env vars.
func Load() *Config {
	cfg := defaults()
	loadFile(cfg, "pipeline-config.json")
	loadEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		GRPCListenAddr:  ":9090",
		ManagementPort:  8081,
		LogLevel:        "info",
		MaxBodyBytes:    8 * 1024, // 8 KiB, spec default
		DedupCacheSize:  100_000,
		DedupBodyLimit:  model.DefaultFingerprintBodyLimit,

		StagingChannelDepth: 1024,
		EnqueueWorkers:      8,
		EnqueueTimeout:      2 * time.Second,

		QueueEndpoint: "localhost:6379",
		QueueDB:       0,
		QueueListName: "meshcap:rules",
		QueueDLQName:  "meshcap:rules:dlq",
		RetryAttempts: 5,

		MockServerURL:       "http://localhost:8082",
		MockServerTimeout:   5 * time.Second,
		RuleLoaderWorkers:   4,
		RuleLoaderBatchSize: 32,
		PopTimeout:          2 * time.Second,
	}
}

func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path) //nolint:gosec // controlled config file path, not user input
	if err != nil {
		return // file is optional
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("[CONFIG] Warning: could not parse %s: %v", path, err)
	} else {
		log.Printf("[CONFIG] Loaded %s", path)
	}
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("GRPC_LISTEN_ADDR"); v != "" {
		cfg.GRPCListenAddr = v
	}
	if v := os.Getenv("MANAGEMENT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ManagementPort = n
		}
	}
	if v := os.Getenv("MANAGEMENT_TOKEN"); v != "" {
		cfg.ManagementToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("DEDUP_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DedupCacheSize = n
		}
	}
	if v := os.Getenv("DEDUP_BODY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DedupBodyLimit = n
		}
	}
	if v := os.Getenv("STAGING_CHANNEL_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StagingChannelDepth = n
		}
	}
	if v := os.Getenv("ENQUEUE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EnqueueWorkers = n
		}
	}
	if v := os.Getenv("ENQUEUE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.EnqueueTimeout = d
		}
	}
	if v := os.Getenv("QUEUE_ENDPOINT"); v != "" {
		cfg.QueueEndpoint = v
	}
	if v := os.Getenv("QUEUE_PASSWORD"); v != "" {
		cfg.QueuePassword = v
	}
	if v := os.Getenv("QUEUE_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDB = n
		}
	}
	if v := os.Getenv("QUEUE_LIST_NAME"); v != "" {
		cfg.QueueListName = v
	}
	if v := os.Getenv("QUEUE_DLQ_NAME"); v != "" {
		cfg.QueueDLQName = v
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetryAttempts = n
		}
	}
	if v := os.Getenv("MOCK_SERVER_URL"); v != "" {
		cfg.MockServerURL = v
	}
	if v := os.Getenv("MOCK_SERVER_TOKEN"); v != "" {
		cfg.MockServerToken = v
	}
	if v := os.Getenv("MOCK_SERVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MockServerTimeout = d
		}
	}
	if v := os.Getenv("RULE_LOADER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RuleLoaderWorkers = n
		}
	}
	if v := os.Getenv("RULE_LOADER_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RuleLoaderBatchSize = n
		}
	}
	if v := os.Getenv("POP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PopTimeout = d
		}
	}
	if v := os.Getenv("BACKUP_SINK_PATH"); v != "" {
		cfg.BackupSinkPath = v
	}
}

// SanitizerConfig translates the operator-facing Sanitizer options
// (sanitize_patterns, header_denylist, field_name_denylist — spec §6) into
// a sanitizer.Config, falling back to the built-in catalog/deny-lists for
// any option the operator left unset.
func (c *Config) SanitizerConfig() sanitizer.Config {
	cfg := sanitizer.Config{
		Patterns:          c.SanitizePatterns,
		FieldNameDenylist: c.FieldNameDenylist,
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = sanitizer.DefaultCatalog()
	}
	if len(cfg.FieldNameDenylist) == 0 {
		cfg.FieldNameDenylist = sanitizer.DefaultFieldNameDenylist()
	}
	if len(c.HeaderDenylist) == 0 {
		cfg.HeaderDenylist = sanitizer.DefaultHeaderDenylist()
	} else {
		cfg.HeaderDenylist = make([]sanitizer.HeaderDenylistEntry, 0, len(c.HeaderDenylist))
		for _, h := range c.HeaderDenylist {
			marker := "SANITIZED_" + strings.ToUpper(strings.NewReplacer("-", "_").Replace(h))
			cfg.HeaderDenylist = append(cfg.HeaderDenylist, sanitizer.HeaderDenylistEntry{Header: h, Marker: marker})
		}
	}
	return cfg
}
