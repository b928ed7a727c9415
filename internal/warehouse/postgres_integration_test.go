//go:build integration

package warehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"onetl/internal/transform"
	"onetl/internal/warehouse"
	"onetl/pkg/field"
	"onetl/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *warehouse.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = warehouse.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(s.store.InitSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"fact_occupation_element_rating", "dim_element_scale", "dim_element",
		"dim_scale", "dim_occupation", "dim_major_group",
		"stg_occupation_data", "stg_skills", "stg_knowledge", "stg_abilities",
		"stg_invalid_ska", "stg_level_scale_anchors", "stg_scales_reference")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) ratingRow(code, element, scale string, dataValue float64) transform.NormalizedSkaRow {
	return transform.NormalizedSkaRow{
		Domain:            transform.DomainSkill,
		OnetsocCode:       code,
		ElementID:         element,
		ScaleID:           scale,
		DataValue:         dataValue,
		N:                 field.Some(428.0),
		RecommendSuppress: "N",
		NotRelevant:       field.Unavailable,
		DateUpdated:       "2014-07-01",
		DomainSource:      "Analyst",
	}
}

func (s *PostgresStoreSuite) TestStagingReplaceIsIdempotent() {
	ctx := context.Background()

	rows := []transform.NormalizedSkaRow{s.ratingRow("11-1011.00", "2.A.1.a", "IM", 4.12)}
	n, err := s.store.ReplaceRatingStaging(ctx, transform.DomainSkill, rows)
	s.Require().NoError(err)
	s.Equal(1, n)

	// Replacing again with the same batch leaves exactly one row.
	n, err = s.store.ReplaceRatingStaging(ctx, transform.DomainSkill, rows)
	s.Require().NoError(err)
	s.Equal(1, n)

	_, summary, err := s.store.StagingChecks(ctx)
	s.Require().NoError(err)
	for _, c := range summary {
		if c.Label == "rows_stg_skills" {
			s.Equal(1, c.Value)
		}
	}
}

func (s *PostgresStoreSuite) TestFactBuildKeepsTrueNulls() {
	ctx := context.Background()

	_, err := s.store.UpsertMajorGroupDim(ctx, []warehouse.MajorGroup{
		{Code: "11", CodeFull: "11-0000", Name: "Management Occupations"},
	})
	s.Require().NoError(err)

	occ := []transform.NormalizedOccupation{{
		OnetsocCode:    "11-1011.00",
		Title:          "Chief Executives",
		Description:    "Determine and formulate policies.",
		MajorGroupCode: "11",
	}}
	_, err = s.store.UpsertOccupationDim(ctx, occ)
	s.Require().NoError(err)

	row := s.ratingRow("11-1011.00", "2.A.1.a", "IM", 4.12)
	row.NotRelevant = field.Unavailable
	row.DateUpdated = field.Unavailable
	_, err = s.store.ReplaceRatingStaging(ctx, transform.DomainSkill, []transform.NormalizedSkaRow{row})
	s.Require().NoError(err)

	_, err = s.store.UpsertElementDim(ctx)
	s.Require().NoError(err)

	joined, err := s.store.RebuildFact(ctx)
	s.Require().NoError(err)
	s.Equal(1, joined)

	// The staging substitute must land as NULL in fact columns.
	var notRelevantNull, dateNull bool
	err = s.postgres.DB.QueryRowContext(ctx, `
		SELECT not_relevant IS NULL, date_updated IS NULL
		FROM fact_occupation_element_rating`).Scan(&notRelevantNull, &dateNull)
	s.Require().NoError(err)
	s.True(notRelevantNull)
	s.True(dateNull)
}

func (s *PostgresStoreSuite) TestFactUpsertUpdatesExistingGrain() {
	ctx := context.Background()

	_, err := s.store.UpsertMajorGroupDim(ctx, []warehouse.MajorGroup{
		{Code: "11", CodeFull: "11-0000", Name: "Management Occupations"},
	})
	s.Require().NoError(err)
	_, err = s.store.UpsertOccupationDim(ctx, []transform.NormalizedOccupation{{
		OnetsocCode: "11-1011.00", Title: "Chief Executives",
		Description: "d", MajorGroupCode: "11",
	}})
	s.Require().NoError(err)

	_, err = s.store.ReplaceRatingStaging(ctx, transform.DomainSkill,
		[]transform.NormalizedSkaRow{s.ratingRow("11-1011.00", "2.A.1.a", "IM", 4.12)})
	s.Require().NoError(err)
	_, err = s.store.UpsertElementDim(ctx)
	s.Require().NoError(err)
	_, err = s.store.RebuildFact(ctx)
	s.Require().NoError(err)

	// Reload the same grain with a new value; the fact row must update.
	_, err = s.store.ReplaceRatingStaging(ctx, transform.DomainSkill,
		[]transform.NormalizedSkaRow{s.ratingRow("11-1011.00", "2.A.1.a", "IM", 4.50)})
	s.Require().NoError(err)
	_, err = s.store.RebuildFact(ctx)
	s.Require().NoError(err)

	var count int
	var value float64
	err = s.postgres.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(data_value) FROM fact_occupation_element_rating`).Scan(&count, &value)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal(4.50, value)

	findings, err := s.store.PostLoadChecks(ctx)
	s.Require().NoError(err)
	s.Empty(findings)
}

func (s *PostgresStoreSuite) TestInvalidRatingsPreserveRawValues() {
	ctx := context.Background()

	raw := transform.RawSkaRecord{
		OnetsocCode: "bad-code",
		ElementID:   "2.A.1.a",
		ScaleID:     "IM",
		DataValue:   " 3.5 ",
	}
	_, err := s.store.ReplaceInvalidRatings(ctx, []transform.InvalidSkaRow{{
		Domain: transform.DomainSkill,
		Record: raw,
		Reason: transform.ReasonInvalidSOCFormat,
	}})
	s.Require().NoError(err)

	var code, dataValue, reason string
	err = s.postgres.DB.QueryRowContext(ctx, `
		SELECT onetsoc_code, data_value, error_reason FROM stg_invalid_ska`).
		Scan(&code, &dataValue, &reason)
	s.Require().NoError(err)
	s.Equal("bad-code", code)
	s.Equal(" 3.5 ", dataValue)
	s.Equal("invalid_soc_format", reason)
}
