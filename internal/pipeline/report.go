package pipeline

import (
	"time"

	"github.com/google/uuid"

	"onetl/internal/transform"
	"onetl/internal/warehouse"
)

// DomainReport is the per-domain accounting for one run. Extracted always
// equals Valid+Invalid: no row leaves the pipeline unaccounted for.
type DomainReport struct {
	Domain    transform.Domain         `json:"domain"`
	Extracted int                      `json:"extracted"`
	Valid     int                      `json:"valid"`
	Invalid   int                      `json:"invalid"`
	Repairs   int                      `json:"ci_repairs"`
	Reasons   map[transform.Reason]int `json:"reasons,omitempty"`
}

// RunReport is what a pipeline run hands back to its caller. Data-quality
// outcomes live here as values; only run progress is logged.
type RunReport struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	OccupationsExtracted  int `json:"occupations_extracted"`
	OccupationsNormalized int `json:"occupations_normalized"`

	Domains []DomainReport `json:"domains"`

	Loaded           []warehouse.CountRow `json:"loaded"`
	StagingSummary   []warehouse.CountRow `json:"staging_summary"`
	StagingFindings  []warehouse.Finding  `json:"staging_findings,omitempty"`
	PostLoadFindings []warehouse.Finding  `json:"post_load_findings,omitempty"`
}

// TotalInvalid sums quarantined rows across domains.
func (r *RunReport) TotalInvalid() int {
	total := 0
	for _, d := range r.Domains {
		total += d.Invalid
	}
	return total
}

func (r *RunReport) recordLoad(label string, n int) {
	r.Loaded = append(r.Loaded, warehouse.CountRow{Label: label, Value: n})
}
