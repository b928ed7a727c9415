// Package pipeline orchestrates one warehouse run: extract, transform,
// load, check. Data-quality failures stay inside the run report; an error
// return means the run itself could not proceed.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"onetl/internal/registry"
	"onetl/internal/transform"
	"onetl/internal/transform/metrics"
	"onetl/internal/warehouse"
)

// Source is the extraction collaborator.
type Source interface {
	Occupations() ([]transform.RawOccupation, error)
	Ratings(domain transform.Domain) ([]transform.RawSkaRecord, error)
	ScaleAnchors() ([]warehouse.AnchorRecord, error)
	ScalesReference() ([]warehouse.ScaleRecord, error)
}

// QuarantineSink receives the quarantined rows of a run, e.g. a dead-letter
// topic. Optional.
type QuarantineSink interface {
	Publish(ctx context.Context, runID string, rows []transform.InvalidSkaRow) error
}

// Service runs the pipeline end to end.
type Service struct {
	source      Source
	store       warehouse.Store
	sink        QuarantineSink
	logger      *slog.Logger
	metrics     *metrics.Metrics
	majorGroups []warehouse.MajorGroup
}

// Option configures optional collaborators.
type Option func(*Service)

// WithQuarantineSink fans quarantined rows out to sink after they are
// persisted to staging.
func WithQuarantineSink(sink QuarantineSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithLogger attaches a structured logger for run progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches transform metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMajorGroups supplies the SOC major-group reference rows for the
// dimension load.
func WithMajorGroups(groups []warehouse.MajorGroup) Option {
	return func(s *Service) { s.majorGroups = groups }
}

// New builds a Service.
func New(source Source, store warehouse.Store, opts ...Option) *Service {
	s := &Service{source: source, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// ratingDomains is the fixed processing order, which keeps reports and
// loads deterministic.
var ratingDomains = []transform.Domain{
	transform.DomainSkill,
	transform.DomainKnowledge,
	transform.DomainAbility,
}

type domainBatch struct {
	domain  transform.Domain
	raw     []transform.RawSkaRecord
	valid   []transform.NormalizedSkaRow
	invalid []transform.InvalidSkaRow
	stats   transform.Stats
}

// Run executes one pipeline run and returns its report.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: uuid.New(), StartedAt: time.Now()}

	// Extract.
	rawOccupations, err := s.source.Occupations()
	if err != nil {
		return nil, fmt.Errorf("extract occupations: %w", err)
	}
	report.OccupationsExtracted = len(rawOccupations)

	batches := make([]*domainBatch, len(ratingDomains))
	for i, domain := range ratingDomains {
		raw, err := s.source.Ratings(domain)
		if err != nil {
			return nil, fmt.Errorf("extract %s ratings: %w", domain, err)
		}
		batches[i] = &domainBatch{domain: domain, raw: raw}
	}

	anchors, err := s.source.ScaleAnchors()
	if err != nil {
		return nil, fmt.Errorf("extract scale anchors: %w", err)
	}
	scales, err := s.source.ScalesReference()
	if err != nil {
		return nil, fmt.Errorf("extract scales reference: %w", err)
	}

	// Transform. The lookups are read-only, so the three domains can run in
	// parallel against the same registries.
	lookups := s.buildLookups(anchors, batches)
	transformer := transform.NewSkaTransformer(lookups, s.metrics)

	var g errgroup.Group
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			batch.valid, batch.invalid, batch.stats = transformer.Transform(batch.domain, batch.raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	occupations := transform.TransformOccupations(rawOccupations)
	report.OccupationsNormalized = len(occupations)

	var invalid []transform.InvalidSkaRow
	for _, batch := range batches {
		reasons := make(map[transform.Reason]int)
		for _, row := range batch.invalid {
			reasons[row.Reason]++
		}
		report.Domains = append(report.Domains, DomainReport{
			Domain:    batch.domain,
			Extracted: len(batch.raw),
			Valid:     len(batch.valid),
			Invalid:   len(batch.invalid),
			Repairs:   batch.stats.Repairs,
			Reasons:   reasons,
		})
		invalid = append(invalid, batch.invalid...)
		s.logger.Info("transformed ratings",
			"run_id", report.RunID.String(),
			"domain", batch.domain,
			"extracted", len(batch.raw),
			"valid", len(batch.valid),
			"invalid", len(batch.invalid),
			"interval_repairs", batch.stats.Repairs,
		)
	}

	// Load.
	if err := s.load(ctx, report, occupations, batches, invalid, anchors, scales); err != nil {
		return nil, err
	}

	if s.sink != nil && len(invalid) > 0 {
		if err := s.sink.Publish(ctx, report.RunID.String(), invalid); err != nil {
			return nil, fmt.Errorf("publish quarantine: %w", err)
		}
		s.logger.Info("published quarantined rows", "run_id", report.RunID.String(), "rows", len(invalid))
	}

	report.FinishedAt = time.Now()
	s.logger.Info("run finished",
		"run_id", report.RunID.String(),
		"occupations", report.OccupationsNormalized,
		"invalid_rows", report.TotalInvalid(),
		"staging_findings", len(report.StagingFindings),
		"post_load_findings", len(report.PostLoadFindings),
		"took", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return report, nil
}

// buildLookups assembles the registries for this run. Elements come from
// the anchor reference plus the element identifiers observed in the
// extracts; when no anchor reference ships, the element check degrades to
// the original's non-empty semantics.
func (s *Service) buildLookups(anchors []warehouse.AnchorRecord, batches []*domainBatch) registry.Lookups {
	var elements []string
	for _, a := range anchors {
		elements = append(elements, a.ElementID)
	}
	for _, batch := range batches {
		for _, r := range batch.raw {
			elements = append(elements, r.ElementID)
		}
	}
	return registry.New(elements)
}

func (s *Service) load(
	ctx context.Context,
	report *RunReport,
	occupations []transform.NormalizedOccupation,
	batches []*domainBatch,
	invalid []transform.InvalidSkaRow,
	anchors []warehouse.AnchorRecord,
	scales []warehouse.ScaleRecord,
) error {
	if err := s.store.InitSchema(ctx); err != nil {
		return err
	}

	n, err := s.store.ReplaceOccupationStaging(ctx, occupations)
	if err != nil {
		return err
	}
	report.recordLoad("stg_occupation_data", n)

	for _, batch := range batches {
		n, err := s.store.ReplaceRatingStaging(ctx, batch.domain, batch.valid)
		if err != nil {
			return err
		}
		report.recordLoad("stg_"+ratingLabel(batch.domain), n)
	}

	n, err = s.store.ReplaceInvalidRatings(ctx, invalid)
	if err != nil {
		return err
	}
	report.recordLoad("stg_invalid_ska", n)

	if len(anchors) > 0 {
		n, err = s.store.ReplaceScaleAnchors(ctx, anchors)
		if err != nil {
			return err
		}
		report.recordLoad("stg_level_scale_anchors", n)
	}
	if len(scales) > 0 {
		n, err = s.store.ReplaceScalesReference(ctx, scales)
		if err != nil {
			return err
		}
		report.recordLoad("stg_scales_reference", n)

		n, err = s.store.RebuildScaleDim(ctx)
		if err != nil {
			return err
		}
		report.recordLoad("dim_scale", n)
	}

	findings, summary, err := s.store.StagingChecks(ctx)
	if err != nil {
		return err
	}
	report.StagingFindings = findings
	report.StagingSummary = summary

	if len(s.majorGroups) > 0 {
		n, err = s.store.UpsertMajorGroupDim(ctx, s.majorGroups)
		if err != nil {
			return err
		}
		report.recordLoad("dim_major_group", n)
	}

	n, err = s.store.UpsertOccupationDim(ctx, occupations)
	if err != nil {
		return err
	}
	report.recordLoad("dim_occupation", n)

	n, err = s.store.UpsertElementDim(ctx)
	if err != nil {
		return err
	}
	report.recordLoad("dim_element", n)

	if len(anchors) > 0 {
		n, err = s.store.UpsertAnchorDim(ctx)
		if err != nil {
			return err
		}
		report.recordLoad("dim_element_scale", n)
	}

	n, err = s.store.RebuildFact(ctx)
	if err != nil {
		return err
	}
	report.recordLoad("fact_occupation_element_rating", n)

	post, err := s.store.PostLoadChecks(ctx)
	if err != nil {
		return err
	}
	report.PostLoadFindings = post
	return nil
}

func ratingLabel(domain transform.Domain) string {
	switch domain {
	case transform.DomainSkill:
		return "skills"
	case transform.DomainKnowledge:
		return "knowledge"
	case transform.DomainAbility:
		return "abilities"
	default:
		return string(domain)
	}
}
