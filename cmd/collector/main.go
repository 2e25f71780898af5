// Command collector runs the gRPC ingest server: it receives sidecar tap
// events, sanitizes and deduplicates them, and hands the survivors to the
// Queue for the Rule Loader to install (spec §4.3).
//
// Usage:
//
//	./collector
//
//	GRPC_LISTEN_ADDR=:9090 MANAGEMENT_PORT=8081 QUEUE_ENDPOINT=redis:6379 ./collector
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/meshcap/sanitizer-pipeline/internal/collector"
	"github.com/meshcap/sanitizer-pipeline/internal/config"
	"github.com/meshcap/sanitizer-pipeline/internal/dedup"
	"github.com/meshcap/sanitizer-pipeline/internal/healthsrv"
	"github.com/meshcap/sanitizer-pipeline/internal/ingestpb"
	"github.com/meshcap/sanitizer-pipeline/internal/logger"
	"github.com/meshcap/sanitizer-pipeline/internal/metrics"
	"github.com/meshcap/sanitizer-pipeline/internal/queue"
	"github.com/meshcap/sanitizer-pipeline/internal/sanitizer"
)

func main() {
	cfg := config.Load()
	log := logger.New("COLLECTOR", cfg.LogLevel)

	printBanner(cfg)

	m := metrics.NewCollector(prometheus.DefaultRegisterer)

	san, err := sanitizer.New(cfg.SanitizerConfig(), m)
	if err != nil {
		log.Fatalf("startup", "sanitizer: %v", err)
	}

	cache := dedup.New(cfg.DedupCacheSize, m)

	q := queue.NewRedisQueue(queue.RedisConfig{
		Addr:          cfg.QueueEndpoint,
		Password:      cfg.QueuePassword,
		DB:            cfg.QueueDB,
		ListName:      cfg.QueueListName,
		DLQName:       cfg.QueueDLQName,
		RetryAttempts: cfg.RetryAttempts,
	}, m, log)
	defer func() {
		if err := q.Close(); err != nil {
			log.Warnf("shutdown", "queue close: %v", err)
		}
	}()

	pipeline := collector.New(collector.Config{
		MaxBodyBytes:         cfg.MaxBodyBytes,
		FingerprintBodyLimit: cfg.DedupBodyLimit,
		StagingChannelDepth:  cfg.StagingChannelDepth,
		EnqueueWorkers:       cfg.EnqueueWorkers,
		EnqueueTimeout:       cfg.EnqueueTimeout,
	}, san, cache, q, m, log)

	pipelineCtx, cancelPipeline := context.WithCancel(context.Background())
	pipelineDone := make(chan struct{})
	go func() {
		pipeline.Run(pipelineCtx)
		close(pipelineDone)
	}()

	health := healthsrv.New(fmt.Sprintf(":%d", cfg.ManagementPort), cfg.ManagementToken, pipeline, log)
	go func() {
		if err := health.ListenAndServe(); err != nil {
			log.Fatalf("health", "fatal: %v", err)
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPCListenAddr)
	if err != nil {
		log.Fatalf("startup", "listen %s: %v", cfg.GRPCListenAddr, err)
	}

	grpcServer := grpc.NewServer()
	ingestpb.RegisterIngestServiceServer(grpcServer, collector.NewServer(pipeline, log))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Infof("shutdown", "signal received, draining…")
		grpcServer.GracefulStop()
		cancelPipeline()
		select {
		case <-pipelineDone:
		case <-time.After(10 * time.Second):
			log.Warnf("shutdown", "pipeline drain deadline exceeded")
		}
	}()

	log.Infof("startup", "ingest RPC listening on %s", cfg.GRPCListenAddr)
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatalf("startup", "fatal: %v", err)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf(`
╔══════════════════════════════════════════════════════╗
║          Capture Sanitization Collector                ║
╚══════════════════════════════════════════════════════╝
  Ingest addr      : %s
  Management port  : %d
  Queue endpoint   : %s
  Dedup cache size : %d
  Staging depth    : %d
  Enqueue workers  : %d
`, cfg.GRPCListenAddr, cfg.ManagementPort, cfg.QueueEndpoint, cfg.DedupCacheSize,
		cfg.StagingChannelDepth, cfg.EnqueueWorkers)
}
