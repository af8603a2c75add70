package contracts

import "time"

// DateLayout is the canonical rendering of assessment timestamps in output
// tables. Re-runs must be byte-identical, so there is exactly one layout.
const DateLayout = "2006-01-02 15:04:05"

// RawRow is one untyped observation as delivered by the external export
// producer. Consumed once by the normalizer.
type RawRow struct {
	SourceTable    string `json:"source_table"`
	SubjectID      string `json:"subject_id"`
	AssessmentDate string `json:"assessment_date"`
	QuestionID     string `json:"question_id"`
	RawValue       string `json:"raw_value"`
}

// NormalizedRecord is a RawRow resolved against the dictionary and coerced
// to its declared type. Seq preserves the raw export's insertion order; it
// breaks assessment-date ties during imputation and never changes after
// normalization.
type NormalizedRecord struct {
	SubjectID       string    `json:"subject_id"`
	AssessmentDate  time.Time `json:"assessment_date"`
	QuestionID      string    `json:"question_id"`
	CanonicalValue  Value     `json:"canonical_value"`
	Category        string    `json:"category"`
	ProgramGrouping string    `json:"program_grouping"`
	Seq             int       `json:"seq"`
}

// ImputationMethod records how an ImputedRecord's value was produced.
type ImputationMethod string

const (
	ImputationNone            ImputationMethod = "none"
	ImputationCarryForward    ImputationMethod = "carry_forward"
	ImputationCategoryDefault ImputationMethod = "category_default"
	ImputationSentinel        ImputationMethod = "sentinel"
)

// ImputedRecord is a NormalizedRecord plus imputation provenance.
// IsImputed is true exactly when the value was not present in the raw input
// for this (subject, date, question) triple.
type ImputedRecord struct {
	NormalizedRecord
	IsImputed        bool             `json:"is_imputed"`
	ImputationMethod ImputationMethod `json:"imputation_method"`
}
