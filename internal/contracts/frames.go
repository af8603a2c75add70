package contracts

// LongFrameRow is one materialized observation: the imputed record itself,
// one row per (subject, assessment date, question).
type LongFrameRow = ImputedRecord

// WideFrameRow is one row per (subject, assessment date) with one cell per
// dictionary question. Cells for questions with no observation hold the
// sentinel. Category and ProgramGrouping describe the row's observed
// questions; Category is empty when the observations span categories.
type WideFrameRow struct {
	SubjectID       string           `json:"subject_id"`
	AssessmentDate  string           `json:"assessment_date"`
	Category        string           `json:"category"`
	ProgramGrouping string           `json:"program_grouping"`
	Cells           map[string]Value `json:"cells"`
}

// YoYRow is one aggregate metric for one (category, program grouping,
// program year). PriorValue, Delta and PctChange are set only when a
// preceding program year with data exists; PctChange additionally requires
// a non-zero prior value.
type YoYRow struct {
	Category        string   `json:"category"`
	ProgramGrouping string   `json:"program_grouping"`
	ProgramYear     int      `json:"program_year"`
	MetricName      string   `json:"metric_name"`
	Value           float64  `json:"value"`
	PriorValue      *float64 `json:"prior_program_year_value,omitempty"`
	Delta           *float64 `json:"delta,omitempty"`
	PctChange       *float64 `json:"pct_change,omitempty"`
}
