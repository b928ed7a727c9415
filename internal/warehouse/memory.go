package warehouse

import (
	"context"
	"sync"

	"onetl/internal/transform"
	"onetl/pkg/field"
)

// MemoryStore is an in-memory Store for tests and dry runs. It mirrors the
// Postgres behavior closely enough for the pipeline's accounting: staging
// replacement, dim upserts keyed like their SQL counterparts, and the same
// checks.
type MemoryStore struct {
	mu sync.Mutex

	Occupations []transform.NormalizedOccupation
	Ratings     map[transform.Domain][]transform.NormalizedSkaRow
	Invalid     []transform.InvalidSkaRow
	Anchors     []AnchorRecord
	Scales      []ScaleRecord

	MajorGroups   map[string]MajorGroup
	OccupationDim map[string]transform.NormalizedOccupation
	ScaleDim      map[string]ScaleRecord
	ElementDim    map[string]string
	AnchorDim     map[[3]string]string
	Fact          map[[3]string]transform.NormalizedSkaRow
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Ratings:       make(map[transform.Domain][]transform.NormalizedSkaRow),
		MajorGroups:   make(map[string]MajorGroup),
		OccupationDim: make(map[string]transform.NormalizedOccupation),
		ScaleDim:      make(map[string]ScaleRecord),
		ElementDim:    make(map[string]string),
		AnchorDim:     make(map[[3]string]string),
		Fact:          make(map[[3]string]transform.NormalizedSkaRow),
	}
}

func (s *MemoryStore) InitSchema(context.Context) error { return nil }

func (s *MemoryStore) ReplaceOccupationStaging(_ context.Context, rows []transform.NormalizedOccupation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Occupations = append([]transform.NormalizedOccupation(nil), rows...)
	return len(rows), nil
}

func (s *MemoryStore) ReplaceRatingStaging(_ context.Context, domain transform.Domain, rows []transform.NormalizedSkaRow) (int, error) {
	if _, err := ratingTable(domain); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ratings[domain] = append([]transform.NormalizedSkaRow(nil), rows...)
	return len(rows), nil
}

func (s *MemoryStore) ReplaceInvalidRatings(_ context.Context, rows []transform.InvalidSkaRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Invalid = append([]transform.InvalidSkaRow(nil), rows...)
	return len(rows), nil
}

func (s *MemoryStore) ReplaceScaleAnchors(_ context.Context, rows []AnchorRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Anchors = append([]AnchorRecord(nil), rows...)
	return len(rows), nil
}

func (s *MemoryStore) ReplaceScalesReference(_ context.Context, rows []ScaleRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scales = append([]ScaleRecord(nil), rows...)
	return len(rows), nil
}

func (s *MemoryStore) UpsertMajorGroupDim(_ context.Context, groups []MajorGroup) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range groups {
		s.MajorGroups[g.Code] = g
	}
	return len(groups), nil
}

func (s *MemoryStore) UpsertOccupationDim(_ context.Context, rows []transform.NormalizedOccupation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.OccupationDim[r.OnetsocCode] = r
	}
	return len(rows), nil
}

func (s *MemoryStore) RebuildScaleDim(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ScaleDim = make(map[string]ScaleRecord)
	for _, r := range s.Scales {
		if r.ScaleID == "IM" || r.ScaleID == "LV" {
			s.ScaleDim[r.ScaleID] = r
		}
	}
	return len(s.ScaleDim), nil
}

func (s *MemoryStore) UpsertElementDim(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	distinct := make(map[string]struct{})
	for domain, rows := range s.Ratings {
		for _, r := range rows {
			s.ElementDim[r.ElementID] = string(domain)
			distinct[r.ElementID] = struct{}{}
		}
	}
	return len(distinct), nil
}

func (s *MemoryStore) UpsertAnchorDim(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Anchors {
		if _, ok := s.ElementDim[a.ElementID]; !ok {
			continue
		}
		if _, ok := s.ScaleDim[a.ScaleID]; !ok {
			continue
		}
		s.AnchorDim[[3]string{a.ElementID, a.ScaleID, a.AnchorValue}] = a.AnchorDescription
	}
	return len(s.Anchors), nil
}

func (s *MemoryStore) RebuildFact(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, rows := range s.Ratings {
		for _, r := range rows {
			if _, ok := s.OccupationDim[r.OnetsocCode]; !ok {
				continue
			}
			total++
			s.Fact[[3]string{r.OnetsocCode, r.ElementID, r.ScaleID}] = r
		}
	}
	return total, nil
}

func (s *MemoryStore) StagingChecks(context.Context) ([]Finding, []CountRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := []CountRow{{Label: "rows_stg_occupation_data", Value: len(s.Occupations)}}
	var findings []Finding

	for _, domain := range []transform.Domain{transform.DomainSkill, transform.DomainKnowledge, transform.DomainAbility} {
		table, _ := ratingTable(domain)
		rows := s.Ratings[domain]
		summary = append(summary, CountRow{Label: "rows_" + table, Value: len(rows)})

		badKeys, badSOC := false, false
		for _, r := range rows {
			if r.OnetsocCode == field.Unavailable || r.ElementID == field.Unavailable || r.ScaleID == field.Unavailable {
				badKeys = true
			}
			if !transform.ValidSOCCode(r.OnetsocCode) {
				badSOC = true
			}
		}
		if badKeys {
			findings = append(findings, Finding(table+` has "unavailable" in key columns`))
		}
		if badSOC {
			findings = append(findings, Finding(table+" has invalid SOC format in onetsoc_code"))
		}
	}
	return findings, summary, nil
}

func (s *MemoryStore) PostLoadChecks(context.Context) ([]Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var findings []Finding
	for _, domain := range []transform.Domain{transform.DomainSkill, transform.DomainKnowledge, transform.DomainAbility} {
		table, _ := ratingTable(domain)
		seen := make(map[[3]string]bool)
		for _, r := range s.Ratings[domain] {
			key := [3]string{r.OnetsocCode, r.ElementID, r.ScaleID}
			if seen[key] {
				findings = append(findings, Finding("duplicate (onetsoc_code, element_id, scale_id) rows in "+table))
				break
			}
			seen[key] = true
		}
	}
	for key := range s.Fact {
		if _, ok := s.ElementDim[key[1]]; !ok {
			findings = append(findings, "fact has element_ids not present in dim_element")
			break
		}
	}
	return findings, nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)
