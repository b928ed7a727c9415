// Package extract reads O*NET distribution SQL dump files into raw string
// records. It is a format-specific text scan: the only decision it makes is
// stripping dump noise, so everything it emits is still untrusted input for
// the transform layer.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"onetl/internal/transform"
	"onetl/internal/warehouse"
)

// Canonical file names inside an O*NET SQL distribution.
const (
	occupationFile = "03_occupation_data.sql"
	skillsFile     = "16_skills.sql"
	knowledgeFile  = "15_knowledge.sql"
	abilitiesFile  = "11_abilities.sql"
	anchorsFile    = "06_level_scale_anchors.sql"
	scalesFile     = "04_scales_reference.sql"
)

var domainFiles = map[transform.Domain]struct {
	file  string
	table string
}{
	transform.DomainSkill:     {skillsFile, "skills"},
	transform.DomainKnowledge: {knowledgeFile, "knowledge"},
	transform.DomainAbility:   {abilitiesFile, "abilities"},
}

// skaColumns is the canonical rating-table column order, used when a dump
// omits explicit column lists.
var skaColumns = []string{
	"onetsoc_code", "element_id", "scale_id", "data_value", "n",
	"standard_error", "lower_ci_bound", "upper_ci_bound",
	"recommend_suppress", "not_relevant", "date_updated", "domain_source",
}

// DirSource extracts records from the dump files in one directory.
type DirSource struct {
	dir string
}

// NewDirSource builds a source over dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Occupations reads the occupation master file. The file is required; a
// distribution without it is unusable.
func (s *DirSource) Occupations() ([]transform.RawOccupation, error) {
	t, err := s.scanFile(occupationFile, "occupation_data", []string{"onetsoc_code", "title", "description"})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("missing required file %s", occupationFile)
	}
	out := make([]transform.RawOccupation, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, transform.RawOccupation{
			OnetsocCode: t.get(row, "onetsoc_code"),
			Title:       t.get(row, "title"),
			Description: t.get(row, "description"),
		})
	}
	return out, nil
}

// Ratings reads the rating file for one domain. A missing file yields an
// empty batch, matching distributions that ship a subset of domains.
func (s *DirSource) Ratings(domain transform.Domain) ([]transform.RawSkaRecord, error) {
	spec, ok := domainFiles[domain]
	if !ok {
		return nil, fmt.Errorf("unsupported domain %q", domain)
	}
	t, err := s.scanFile(spec.file, spec.table, skaColumns)
	if err != nil || t == nil {
		return nil, err
	}
	out := make([]transform.RawSkaRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, transform.RawSkaRecord{
			OnetsocCode:       t.get(row, "onetsoc_code"),
			ElementID:         t.get(row, "element_id"),
			ScaleID:           t.get(row, "scale_id"),
			DataValue:         t.get(row, "data_value"),
			N:                 t.get(row, "n"),
			StandardError:     t.get(row, "standard_error"),
			LowerCIBound:      t.get(row, "lower_ci_bound"),
			UpperCIBound:      t.get(row, "upper_ci_bound"),
			RecommendSuppress: t.get(row, "recommend_suppress"),
			NotRelevant:       t.get(row, "not_relevant"),
			DateUpdated:       t.get(row, "date_updated"),
			DomainSource:      t.get(row, "domain_source"),
		})
	}
	return out, nil
}

// ScaleAnchors reads the level-scale anchor reference file, if present.
func (s *DirSource) ScaleAnchors() ([]warehouse.AnchorRecord, error) {
	t, err := s.scanFile(anchorsFile, "level_scale_anchors",
		[]string{"element_id", "scale_id", "anchor_value", "anchor_description"})
	if err != nil || t == nil {
		return nil, err
	}
	out := make([]warehouse.AnchorRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, warehouse.AnchorRecord{
			ElementID:         t.get(row, "element_id"),
			ScaleID:           t.get(row, "scale_id"),
			AnchorValue:       t.get(row, "anchor_value"),
			AnchorDescription: t.get(row, "anchor_description"),
		})
	}
	return out, nil
}

// ScalesReference reads the scales reference file, if present.
func (s *DirSource) ScalesReference() ([]warehouse.ScaleRecord, error) {
	t, err := s.scanFile(scalesFile, "scales_reference",
		[]string{"scale_id", "scale_name", "minimum", "maximum"})
	if err != nil || t == nil {
		return nil, err
	}
	out := make([]warehouse.ScaleRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, warehouse.ScaleRecord{
			ScaleID:   t.get(row, "scale_id"),
			ScaleName: t.get(row, "scale_name"),
			Minimum:   t.get(row, "minimum"),
			Maximum:   t.get(row, "maximum"),
		})
	}
	return out, nil
}

// scanFile parses one dump file. A missing file returns (nil, nil) so
// callers can treat optional sources uniformly.
func (s *DirSource) scanFile(name, table string, fallback []string) (*tableRows, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	t, _, err := scanInserts(stripBatchSeparators(string(data)), table, fallback)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}
	return t, nil
}

// stripBatchSeparators drops SQL Server GO lines, which are client syntax
// rather than SQL.
func stripBatchSeparators(src string) string {
	lines := strings.Split(src, "\n")
	kept := lines[:0]
	for _, ln := range lines {
		if strings.EqualFold(strings.TrimSpace(ln), "go") {
			continue
		}
		kept = append(kept, ln)
	}
	return strings.Join(kept, "\n")
}

// MajorGroups loads the SOC major-group lookup CSV (columns code_full,name).
// The two-digit group code is derived from the full code.
func MajorGroups(path string) ([]warehouse.MajorGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open major groups csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read major groups header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	fullIdx, ok := idx["code_full"]
	if !ok {
		return nil, fmt.Errorf("major groups csv missing code_full column")
	}
	nameIdx, ok := idx["name"]
	if !ok {
		return nil, fmt.Errorf("major groups csv missing name column")
	}

	var out []warehouse.MajorGroup
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read major groups csv: %w", err)
		}
		full := strings.TrimSpace(rec[fullIdx])
		name := strings.TrimSpace(rec[nameIdx])
		if len(full) < 2 || name == "" {
			continue
		}
		out = append(out, warehouse.MajorGroup{Code: full[:2], CodeFull: full, Name: name})
	}
	return out, nil
}
