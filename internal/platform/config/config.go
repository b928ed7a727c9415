package config

import (
	"os"
	"strings"
)

// Pipeline captures process-level configuration for a run.
type Pipeline struct {
	// DumpDir holds the SQL export files to extract from.
	DumpDir string
	// MajorGroupsCSV optionally seeds dim_major_group.
	MajorGroupsCSV string
	// PostgresDSN is the warehouse connection string. Empty means dry run
	// against the in-memory store.
	PostgresDSN string
	// OpsAddr is the listen address for the metrics/report endpoint.
	OpsAddr string
	// KafkaBrokers and QuarantineTopic configure the dead-letter stream for
	// quarantined rows. No brokers means quarantine stays staging-only.
	KafkaBrokers    []string
	QuarantineTopic string
}

// FromEnv builds a Pipeline config from environment variables so main stays lean.
func FromEnv() Pipeline {
	cfg := Pipeline{
		DumpDir:         os.Getenv("ONETL_DUMP_DIR"),
		MajorGroupsCSV:  os.Getenv("ONETL_MAJOR_GROUPS_CSV"),
		PostgresDSN:     os.Getenv("ONETL_POSTGRES_DSN"),
		OpsAddr:         os.Getenv("ONETL_OPS_ADDR"),
		QuarantineTopic: os.Getenv("ONETL_QUARANTINE_TOPIC"),
	}
	if cfg.DumpDir == "" {
		cfg.DumpDir = "."
	}
	if cfg.OpsAddr == "" {
		cfg.OpsAddr = ":8080"
	}
	if cfg.QuarantineTopic == "" {
		cfg.QuarantineTopic = "onetl.quarantine"
	}
	if brokers := os.Getenv("ONETL_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}
