// Command ruleloader drains the Queue in batches, translates each
// MockRuleDescriptor into a mock-server rule, and installs it via the mock
// server's admin HTTP API with bounded retry (spec §4.5).
//
// Usage:
//
//	./ruleloader
//
//	MOCK_SERVER_URL=http://mock:8080 RULE_LOADER_WORKERS=6 ./ruleloader
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshcap/sanitizer-pipeline/internal/backupsink"
	"github.com/meshcap/sanitizer-pipeline/internal/config"
	"github.com/meshcap/sanitizer-pipeline/internal/healthsrv"
	"github.com/meshcap/sanitizer-pipeline/internal/logger"
	"github.com/meshcap/sanitizer-pipeline/internal/metrics"
	"github.com/meshcap/sanitizer-pipeline/internal/mockadmin"
	"github.com/meshcap/sanitizer-pipeline/internal/queue"
	"github.com/meshcap/sanitizer-pipeline/internal/ruleloader"
)

func main() {
	cfg := config.Load()
	log := logger.New("RULELOADER", cfg.LogLevel)

	printBanner(cfg)

	m := metrics.NewRuleLoader(prometheus.DefaultRegisterer)

	q := queue.NewRedisQueue(queue.RedisConfig{
		Addr:          cfg.QueueEndpoint,
		Password:      cfg.QueuePassword,
		DB:            cfg.QueueDB,
		ListName:      cfg.QueueListName,
		DLQName:       cfg.QueueDLQName,
		RetryAttempts: cfg.RetryAttempts,
	}, nil, log)
	defer func() {
		if err := q.Close(); err != nil {
			log.Warnf("shutdown", "queue close: %v", err)
		}
	}()

	installer := mockadmin.New(cfg.MockServerURL, cfg.MockServerToken, cfg.MockServerTimeout)

	backup, err := backupsink.Open(cfg.BackupSinkPath, log)
	if err != nil {
		log.Fatalf("startup", "backup sink: %v", err)
	}
	if backup != nil {
		defer func() {
			if err := backup.Close(); err != nil {
				log.Warnf("shutdown", "backup sink close: %v", err)
			}
		}()
	}

	loader := ruleloader.New(q, installer, backup, ruleloader.Config{
		Workers:       cfg.RuleLoaderWorkers,
		BatchSize:     cfg.RuleLoaderBatchSize,
		PopTimeout:    cfg.PopTimeout,
		RetryAttempts: cfg.RetryAttempts,
	}, m, log)

	health := healthsrv.New(fmt.Sprintf(":%d", cfg.ManagementPort), cfg.ManagementToken, loader, log)
	go func() {
		if err := health.ListenAndServe(); err != nil {
			log.Fatalf("health", "fatal: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Infof("shutdown", "signal received, finishing in-flight installs…")
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		loader.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			log.Warnf("shutdown", "worker drain deadline exceeded")
		}
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf(`
╔══════════════════════════════════════════════════════╗
║          Mock Rule Loader                               ║
╚══════════════════════════════════════════════════════╝
  Mock server      : %s
  Management port  : %d
  Queue endpoint   : %s
  Workers          : %d
  Batch size       : %d
`, cfg.MockServerURL, cfg.ManagementPort, cfg.QueueEndpoint, cfg.RuleLoaderWorkers, cfg.RuleLoaderBatchSize)
}
