package warehouse

import (
	"context"
	"errors"
	"fmt"

	"onetl/internal/transform"
)

// Sentinel errors for store-level facts.
var (
	// ErrUnknownDomain is returned for a domain with no staging table.
	ErrUnknownDomain = errors.New("unknown domain")
)

// Store is the persistence boundary of the pipeline. Staging loads are
// truncate-and-replace (one batch owns a table); dim and fact builds are
// idempotent upserts over whatever staging holds.
type Store interface {
	// InitSchema creates the warehouse tables when absent.
	InitSchema(ctx context.Context) error

	// Staging loads. Each replaces the table contents and returns the
	// number of rows loaded.
	ReplaceOccupationStaging(ctx context.Context, rows []transform.NormalizedOccupation) (int, error)
	ReplaceRatingStaging(ctx context.Context, domain transform.Domain, rows []transform.NormalizedSkaRow) (int, error)
	ReplaceInvalidRatings(ctx context.Context, rows []transform.InvalidSkaRow) (int, error)
	ReplaceScaleAnchors(ctx context.Context, rows []AnchorRecord) (int, error)
	ReplaceScalesReference(ctx context.Context, rows []ScaleRecord) (int, error)

	// Dimension builds.
	UpsertMajorGroupDim(ctx context.Context, groups []MajorGroup) (int, error)
	UpsertOccupationDim(ctx context.Context, rows []transform.NormalizedOccupation) (int, error)
	RebuildScaleDim(ctx context.Context) (int, error)
	UpsertElementDim(ctx context.Context) (int, error)
	UpsertAnchorDim(ctx context.Context) (int, error)

	// RebuildFact upserts the rating fact from staging joined to the
	// occupation dim, returning the number of staging rows that joined.
	RebuildFact(ctx context.Context) (int, error)

	// StagingChecks runs the staging-focused validations: no staging
	// substitute in key columns, SOC shape, and per-table row counts.
	StagingChecks(ctx context.Context) ([]Finding, []CountRow, error)

	// PostLoadChecks verifies dim uniqueness, fact grain uniqueness, and
	// fact-to-element join sanity.
	PostLoadChecks(ctx context.Context) ([]Finding, error)
}

// ratingTables maps each domain to its staging table.
var ratingTables = map[transform.Domain]string{
	transform.DomainSkill:     "stg_skills",
	transform.DomainKnowledge: "stg_knowledge",
	transform.DomainAbility:   "stg_abilities",
}

func ratingTable(domain transform.Domain) (string, error) {
	t, ok := ratingTables[domain]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}
	return t, nil
}
