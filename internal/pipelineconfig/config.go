// Package pipelineconfig defines the run policy file: program-year
// boundary, per-category imputation defaults, the YoY metric set and table
// names. The file is YAML, decoded strictly so a typo fails the run instead
// of silently changing policy.
package pipelineconfig

import (
	"time"

	"github.com/brightpath/assessflow/internal/yoy"
)

// Config is the full run policy.
type Config struct {
	Meta             Meta              `yaml:"meta" json:"meta"`
	ProgramYearStart ProgramYearStart  `yaml:"program_year_start" json:"program_year_start"`
	CategoryDefaults map[string]string `yaml:"category_defaults" json:"category_defaults"`
	Metrics          []string          `yaml:"metrics" json:"metrics"`
	Tables           Tables            `yaml:"tables" json:"tables"`
}

// Meta identifies the policy for provenance.
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
}

// ProgramYearStart is the month/day the program year begins.
type ProgramYearStart struct {
	Month int `yaml:"month" json:"month"`
	Day   int `yaml:"day" json:"day"`
}

// Start converts to the aggregator's boundary type.
func (p ProgramYearStart) Start() yoy.ProgramYearStart {
	return yoy.ProgramYearStart{Month: time.Month(p.Month), Day: p.Day}
}

// Tables names the input and output tables in the external store.
type Tables struct {
	Raw        string `yaml:"raw" json:"raw"`
	Dictionary string `yaml:"dictionary" json:"dictionary"`
	Long       string `yaml:"long" json:"long"`
	Wide       string `yaml:"wide" json:"wide"`
	YoY        string `yaml:"yoy" json:"yoy"`
	Rejected   string `yaml:"rejected" json:"rejected"`
}

// Default returns the policy used when no file is supplied: October-1
// program years, no category defaults, all metrics, conventional table
// names.
func Default() *Config {
	return &Config{
		Meta:             Meta{PolicyID: "default"},
		ProgramYearStart: ProgramYearStart{Month: 10, Day: 1},
		Tables: Tables{
			Raw:        "raw_assessments",
			Dictionary: "assessment_dictionary",
			Long:       "long_frame",
			Wide:       "wide_frame",
			YoY:        "yoy_frame",
			Rejected:   "rejected_rows",
		},
	}
}
