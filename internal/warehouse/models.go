// Package warehouse owns the star-schema store: staging truncate-and-load,
// dimension and fact upserts, and the post-load sanity checks analysts rely
// on. It consumes already-normalized rows; it makes no data-quality
// decisions of its own.
package warehouse

// MajorGroup is a SOC major-group lookup row, sourced from a reference CSV.
type MajorGroup struct {
	Code     string
	CodeFull string
	Name     string
}

// AnchorRecord is a level-scale anchor reference row. Values stay textual in
// staging, matching how the source ships them.
type AnchorRecord struct {
	ElementID         string
	ScaleID           string
	AnchorValue       string
	AnchorDescription string
}

// ScaleRecord is a scales-reference row.
type ScaleRecord struct {
	ScaleID   string
	ScaleName string
	Minimum   string
	Maximum   string
}

// Finding is a human-readable result of a staging or post-load check.
type Finding string

// CountRow labels a row-count summary entry.
type CountRow struct {
	Label string
	Value int
}
