package pipelineconfig

import (
	"fmt"
	"time"

	"github.com/brightpath/assessflow/internal/yoy"
)

// Validate checks a policy for contradictions before the run starts.
func Validate(cfg *Config) error {
	m := cfg.ProgramYearStart.Month
	d := cfg.ProgramYearStart.Day
	if m < 1 || m > 12 {
		return fmt.Errorf("program_year_start.month %d out of range", m)
	}
	if d < 1 || d > daysIn(time.Month(m)) {
		return fmt.Errorf("program_year_start.day %d out of range for month %d", d, m)
	}

	for _, metric := range cfg.Metrics {
		if !knownMetric(metric) {
			return fmt.Errorf("unknown metric %q (valid: %v)", metric, yoy.KnownMetrics)
		}
	}

	for _, name := range []struct{ field, value string }{
		{"tables.raw", cfg.Tables.Raw},
		{"tables.dictionary", cfg.Tables.Dictionary},
		{"tables.long", cfg.Tables.Long},
		{"tables.wide", cfg.Tables.Wide},
		{"tables.yoy", cfg.Tables.YoY},
		{"tables.rejected", cfg.Tables.Rejected},
	} {
		if name.value == "" {
			return fmt.Errorf("%s must not be empty", name.field)
		}
	}
	return nil
}

func knownMetric(name string) bool {
	for _, m := range yoy.KnownMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// daysIn caps the start day per month; 29 for February since a leap-year
// boundary is valid.
func daysIn(m time.Month) int {
	switch m {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
