package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"onetl/internal/extract"
	"onetl/internal/ops"
	"onetl/internal/pipeline"
	"onetl/internal/platform/config"
	"onetl/internal/platform/httpserver"
	"onetl/internal/platform/logger"
	"onetl/internal/quarantine"
	"onetl/internal/transform/metrics"
	"onetl/internal/warehouse"
)

// main wires high-level dependencies and runs one pipeline pass. With -serve
// the process stays up afterwards so the ops endpoints remain reachable.
func main() {
	cfg := config.FromEnv()
	flag.StringVar(&cfg.DumpDir, "dump-dir", cfg.DumpDir, "directory with the SQL export files")
	flag.StringVar(&cfg.PostgresDSN, "dsn", cfg.PostgresDSN, "warehouse DSN; empty runs against the in-memory store")
	flag.StringVar(&cfg.MajorGroupsCSV, "major-groups", cfg.MajorGroupsCSV, "optional SOC major groups CSV")
	flag.StringVar(&cfg.OpsAddr, "ops-addr", cfg.OpsAddr, "listen address for /healthz, /metrics and /report")
	serve := flag.Bool("serve", false, "keep serving the ops endpoints after the run")
	flag.Parse()

	log := logger.New()

	store, cleanup, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open warehouse", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics.New()),
	}

	if cfg.MajorGroupsCSV != "" {
		groups, err := extract.MajorGroups(cfg.MajorGroupsCSV)
		if err != nil {
			log.Error("failed to load major groups", "path", cfg.MajorGroupsCSV, "error", err.Error())
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithMajorGroups(groups))
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := quarantine.NewPublisher(cfg.KafkaBrokers, cfg.QuarantineTopic)
		if err != nil {
			log.Error("failed to connect quarantine publisher", "error", err.Error())
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, pipeline.WithQuarantineSink(publisher))
	}

	opsHandler := ops.NewHandler(log)
	srv := httpserver.New(cfg.OpsAddr, opsHandler.Router())
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ops server error", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := pipeline.New(extract.NewDirSource(cfg.DumpDir), store, opts...)
	report, err := svc.Run(ctx)
	if err != nil {
		log.Error("run failed", "error", err.Error())
		shutdown(srv, log)
		os.Exit(1)
	}
	opsHandler.SetReport(report)

	for _, c := range report.Loaded {
		log.Info("loaded", "target", c.Label, "rows", c.Value)
	}
	failed := len(report.StagingFindings) > 0 || len(report.PostLoadFindings) > 0
	for _, f := range report.StagingFindings {
		log.Warn("staging check failed", "finding", string(f))
	}
	for _, f := range report.PostLoadFindings {
		log.Warn("post-load check failed", "finding", string(f))
	}

	if *serve {
		<-ctx.Done()
	}
	shutdown(srv, log)
	if failed {
		os.Exit(1)
	}
}

func openStore(cfg config.Pipeline) (warehouse.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		return warehouse.NewMemoryStore(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return warehouse.NewPostgresStore(db), func() { db.Close() }, nil
}

func shutdown(srv *http.Server, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
}
