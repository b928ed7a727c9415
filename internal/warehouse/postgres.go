package warehouse

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/lib/pq"

	"onetl/internal/transform"
	"onetl/pkg/field"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore persists the warehouse in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InitSchema applies the schema DDL. All statements are idempotent.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ReplaceOccupationStaging(ctx context.Context, rows []transform.NormalizedOccupation) (int, error) {
	err := s.replace(ctx, "stg_occupation_data",
		[]string{"onetsoc_code", "title", "description"},
		len(rows), func(i int) []any {
			return []any{rows[i].OnetsocCode, rows[i].Title, rows[i].Description.String()}
		})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *PostgresStore) ReplaceRatingStaging(ctx context.Context, domain transform.Domain, rows []transform.NormalizedSkaRow) (int, error) {
	table, err := ratingTable(domain)
	if err != nil {
		return 0, err
	}
	err = s.replace(ctx, table,
		[]string{
			"onetsoc_code", "element_id", "scale_id", "data_value", "n",
			"standard_error", "lower_ci_bound", "upper_ci_bound",
			"recommend_suppress", "not_relevant", "date_updated", "domain_source",
		},
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{
				r.OnetsocCode, r.ElementID, r.ScaleID, r.DataValue,
				nullFloat(r.N), nullFloat(r.StandardError),
				nullFloat(r.LowerCIBound), nullFloat(r.UpperCIBound),
				r.RecommendSuppress.String(), r.NotRelevant.String(),
				r.DateUpdated.String(), r.DomainSource.String(),
			}
		})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *PostgresStore) ReplaceInvalidRatings(ctx context.Context, rows []transform.InvalidSkaRow) (int, error) {
	err := s.replace(ctx, "stg_invalid_ska",
		[]string{
			"domain", "onetsoc_code", "element_id", "scale_id", "data_value", "n",
			"standard_error", "lower_ci_bound", "upper_ci_bound",
			"recommend_suppress", "not_relevant", "date_updated", "domain_source",
			"error_reason",
		},
		len(rows), func(i int) []any {
			r := rows[i].Record
			return []any{
				string(rows[i].Domain), r.OnetsocCode, r.ElementID, r.ScaleID,
				r.DataValue, r.N, r.StandardError, r.LowerCIBound, r.UpperCIBound,
				r.RecommendSuppress, r.NotRelevant, r.DateUpdated, r.DomainSource,
				string(rows[i].Reason),
			}
		})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *PostgresStore) ReplaceScaleAnchors(ctx context.Context, rows []AnchorRecord) (int, error) {
	err := s.replace(ctx, "stg_level_scale_anchors",
		[]string{"element_id", "scale_id", "anchor_value", "anchor_description"},
		len(rows), func(i int) []any {
			return []any{rows[i].ElementID, rows[i].ScaleID, rows[i].AnchorValue, rows[i].AnchorDescription}
		})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *PostgresStore) ReplaceScalesReference(ctx context.Context, rows []ScaleRecord) (int, error) {
	err := s.replace(ctx, "stg_scales_reference",
		[]string{"scale_id", "scale_name", "minimum", "maximum"},
		len(rows), func(i int) []any {
			return []any{rows[i].ScaleID, rows[i].ScaleName, rows[i].Minimum, rows[i].Maximum}
		})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// replace truncates a staging table and bulk-loads rows via COPY inside one
// transaction, so a failed load never leaves a half-replaced table.
func (s *PostgresStore) replace(ctx context.Context, table string, columns []string, n int, row func(int) []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s load: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("prepare %s copy: %w", table, err)
	}
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			stmt.Close()
			return fmt.Errorf("copy %s row: %w", table, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush %s copy: %w", table, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close %s copy: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s load: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) UpsertMajorGroupDim(ctx context.Context, groups []MajorGroup) (int, error) {
	for _, g := range groups {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO dim_major_group (major_group_code, code_full, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (major_group_code) DO UPDATE SET
			  code_full = excluded.code_full,
			  name = excluded.name`,
			g.Code, g.CodeFull, g.Name)
		if err != nil {
			return 0, fmt.Errorf("upsert major group %s: %w", g.Code, err)
		}
	}
	return len(groups), nil
}

func (s *PostgresStore) UpsertOccupationDim(ctx context.Context, rows []transform.NormalizedOccupation) (int, error) {
	for _, r := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO dim_occupation (onetsoc_code, title, description, major_group_code)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (onetsoc_code) DO UPDATE SET
			  title = excluded.title,
			  description = excluded.description,
			  major_group_code = excluded.major_group_code`,
			r.OnetsocCode, r.Title, r.Description.String(), r.MajorGroupCode.String())
		if err != nil {
			return 0, fmt.Errorf("upsert occupation %s: %w", r.OnetsocCode, err)
		}
	}
	return len(rows), nil
}

// RebuildScaleDim replaces dim_scale with the supported scales from the
// reference staging.
func (s *PostgresStore) RebuildScaleDim(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin scale dim rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM dim_scale"); err != nil {
		return 0, fmt.Errorf("clear dim_scale: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dim_scale (scale_id, name, min_value, max_value, step)
		SELECT scale_id, scale_name,
		       MIN(NULLIF(minimum, '')::double precision),
		       MAX(NULLIF(maximum, '')::double precision),
		       NULL
		FROM stg_scales_reference
		WHERE scale_id IN ('IM', 'LV')
		GROUP BY scale_id, scale_name`); err != nil {
		return 0, fmt.Errorf("rebuild dim_scale: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit scale dim rebuild: %w", err)
	}
	return s.count(ctx, "SELECT COUNT(*) FROM dim_scale")
}

// UpsertElementDim refreshes dim_element from the distinct element
// identifiers observed across the rating staging tables.
func (s *PostgresStore) UpsertElementDim(ctx context.Context) (int, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO dim_element (element_id, domain)
		SELECT element_id, domain FROM (
		  SELECT DISTINCT element_id, 'SKILL' AS domain FROM stg_skills
		  UNION
		  SELECT DISTINCT element_id, 'KNOWLEDGE' FROM stg_knowledge
		  UNION
		  SELECT DISTINCT element_id, 'ABILITY' FROM stg_abilities
		) u
		ON CONFLICT (element_id) DO UPDATE SET domain = excluded.domain`); err != nil {
		return 0, fmt.Errorf("upsert dim_element: %w", err)
	}
	return s.count(ctx, `
		SELECT COUNT(*) FROM (
		  SELECT DISTINCT element_id FROM stg_skills
		  UNION
		  SELECT DISTINCT element_id FROM stg_knowledge
		  UNION
		  SELECT DISTINCT element_id FROM stg_abilities
		) u`)
}

// UpsertAnchorDim loads anchors whose element and scale both resolve.
func (s *PostgresStore) UpsertAnchorDim(ctx context.Context) (int, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO dim_element_scale (element_id, scale_id, anchor_value, anchor_description)
		SELECT a.element_id, a.scale_id, a.anchor_value, a.anchor_description
		FROM stg_level_scale_anchors a
		JOIN dim_element e ON e.element_id = a.element_id
		JOIN dim_scale s   ON s.scale_id   = a.scale_id
		ON CONFLICT (element_id, scale_id, anchor_value) DO UPDATE SET
		  anchor_description = excluded.anchor_description`); err != nil {
		return 0, fmt.Errorf("upsert dim_element_scale: %w", err)
	}
	return s.count(ctx, "SELECT COUNT(*) FROM stg_level_scale_anchors")
}

// RebuildFact upserts the rating fact from all three staging tables. The
// staging substitute becomes a true NULL here: fact columns never carry it.
func (s *PostgresStore) RebuildFact(ctx context.Context) (int, error) {
	total := 0
	for _, table := range []string{"stg_skills", "stg_knowledge", "stg_abilities"} {
		n, err := s.count(ctx, fmt.Sprintf(`
			SELECT COUNT(*) FROM %s t
			JOIN dim_occupation d ON d.onetsoc_code = t.onetsoc_code`, table))
		if err != nil {
			return 0, err
		}
		total += n

		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO fact_occupation_element_rating (
			  occupation_id, element_id, scale_id, data_value, n, standard_error,
			  lower_ci_bound, upper_ci_bound, recommend_suppress, not_relevant,
			  date_updated, domain_source
			)
			SELECT d.occupation_id, t.element_id, t.scale_id, t.data_value, t.n,
			       t.standard_error, t.lower_ci_bound, t.upper_ci_bound,
			       NULLIF(t.recommend_suppress, 'unavailable'),
			       NULLIF(t.not_relevant, 'unavailable'),
			       NULLIF(t.date_updated, 'unavailable')::date,
			       NULLIF(t.domain_source, 'unavailable')
			FROM %s t
			JOIN dim_occupation d ON d.onetsoc_code = t.onetsoc_code
			ON CONFLICT (occupation_id, element_id, scale_id) DO UPDATE SET
			  data_value = excluded.data_value,
			  n = excluded.n,
			  standard_error = excluded.standard_error,
			  lower_ci_bound = excluded.lower_ci_bound,
			  upper_ci_bound = excluded.upper_ci_bound,
			  recommend_suppress = excluded.recommend_suppress,
			  not_relevant = excluded.not_relevant,
			  date_updated = excluded.date_updated,
			  domain_source = excluded.domain_source`, table)); err != nil {
			return 0, fmt.Errorf("upsert fact from %s: %w", table, err)
		}
	}
	return total, nil
}

func (s *PostgresStore) StagingChecks(ctx context.Context) ([]Finding, []CountRow, error) {
	var findings []Finding
	var summary []CountRow

	for _, table := range []string{"stg_occupation_data", "stg_skills", "stg_knowledge", "stg_abilities"} {
		n, err := s.count(ctx, "SELECT COUNT(*) FROM "+table)
		if err != nil {
			return nil, nil, err
		}
		summary = append(summary, CountRow{Label: "rows_" + table, Value: n})
	}

	for _, table := range []string{"stg_skills", "stg_knowledge", "stg_abilities"} {
		n, err := s.count(ctx, fmt.Sprintf(`
			SELECT COUNT(*) FROM %s
			WHERE onetsoc_code = '%s' OR element_id = '%s' OR scale_id = '%s'`,
			table, field.Unavailable, field.Unavailable, field.Unavailable))
		if err != nil {
			return nil, nil, err
		}
		if n > 0 {
			findings = append(findings, Finding(fmt.Sprintf("%s has %q in key columns", table, field.Unavailable)))
		}

		n, err = s.count(ctx, fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE onetsoc_code NOT LIKE '__-____.__'", table))
		if err != nil {
			return nil, nil, err
		}
		if n > 0 {
			findings = append(findings, Finding(fmt.Sprintf("%s has invalid SOC format in onetsoc_code", table)))
		}
	}
	return findings, summary, nil
}

func (s *PostgresStore) PostLoadChecks(ctx context.Context) ([]Finding, error) {
	var findings []Finding

	n, err := s.count(ctx, `
		SELECT COUNT(*) FROM (
		  SELECT onetsoc_code FROM dim_occupation
		  GROUP BY onetsoc_code HAVING COUNT(*) > 1
		) d`)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		findings = append(findings, "duplicate onetsoc_code in dim_occupation")
	}

	for _, table := range []string{"stg_skills", "stg_knowledge", "stg_abilities"} {
		n, err := s.count(ctx, fmt.Sprintf(`
			SELECT COUNT(*) FROM (
			  SELECT onetsoc_code, element_id, scale_id FROM %s
			  GROUP BY onetsoc_code, element_id, scale_id HAVING COUNT(*) > 1
			) d`, table))
		if err != nil {
			return nil, err
		}
		if n > 0 {
			findings = append(findings, Finding(fmt.Sprintf("duplicate (onetsoc_code, element_id, scale_id) rows in %s", table)))
		}
	}

	total, err := s.count(ctx, "SELECT COUNT(*) FROM fact_occupation_element_rating")
	if err != nil {
		return nil, err
	}
	distinct, err := s.count(ctx, `
		SELECT COUNT(*) FROM (
		  SELECT occupation_id, element_id, scale_id
		  FROM fact_occupation_element_rating
		  GROUP BY occupation_id, element_id, scale_id
		) g`)
	if err != nil {
		return nil, err
	}
	if total != distinct {
		findings = append(findings, "fact grain (occupation_id, element_id, scale_id) is not unique")
	}

	n, err = s.count(ctx, `
		SELECT COUNT(*)
		FROM fact_occupation_element_rating f
		LEFT JOIN dim_element e ON e.element_id = f.element_id
		WHERE e.element_id IS NULL`)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		findings = append(findings, "fact has element_ids not present in dim_element")
	}

	return findings, nil
}

func (s *PostgresStore) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return n, nil
}

// nullFloat converts a fact-level optional to its SQL representation:
// absence stays NULL.
func nullFloat(f field.Fact[float64]) sql.NullFloat64 {
	v, ok := f.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}
