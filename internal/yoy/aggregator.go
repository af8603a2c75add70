// Package yoy rolls the long frame up by program year and computes
// year-over-year deltas per (category, program grouping, metric) series.
package yoy

import (
	"sort"
	"strconv"

	"github.com/brightpath/assessflow/internal/contracts"
)

// Known metric names, selectable per run.
const (
	MetricMean           = "mean"
	MetricCount          = "count"
	MetricCompletionRate = "completion_rate"
	MetricPctUnknown     = "pct_unknown"
)

// KnownMetrics lists every metric the aggregator can compute, in output
// order.
var KnownMetrics = []string{MetricMean, MetricCount, MetricCompletionRate, MetricPctUnknown}

// Config selects the program-year boundary and the metric set.
type Config struct {
	Start   ProgramYearStart
	Metrics []string // empty means all known metrics
}

type bucketKey struct {
	category string
	grouping string
	year     int
}

// bucket accumulates one (category, grouping, program year) cell. Sentinels
// are excluded from numeric aggregation but counted for the count-based
// metrics.
type bucket struct {
	total    int
	missing  int
	numSum   float64
	numCount int
}

// Build assigns each long-frame row a program year and produces one YoYRow
// per (category, program grouping, program year, metric). Category and
// grouping membership travel on each long row, denormalized from the
// dictionary by the normalizer. Within each series, delta and pct_change
// compare against the nearest preceding program year that has data;
// pct_change is omitted when the prior value is zero.
func Build(longRows []contracts.LongFrameRow, cfg Config) []contracts.YoYRow {
	metrics := cfg.Metrics
	if len(metrics) == 0 {
		metrics = KnownMetrics
	}

	buckets := make(map[bucketKey]*bucket)
	for _, r := range longRows {
		k := bucketKey{
			category: r.Category,
			grouping: r.ProgramGrouping,
			year:     cfg.Start.YearOf(r.AssessmentDate),
		}
		b := buckets[k]
		if b == nil {
			b = &bucket{}
			buckets[k] = b
		}
		b.total++
		if r.CanonicalValue.Missing {
			b.missing++
			continue
		}
		if n, ok := r.CanonicalValue.AsFloat(); ok {
			b.numSum += n
			b.numCount++
		}
	}

	// One series per (category, grouping, metric), years ascending.
	type seriesKey struct {
		category, grouping, metric string
	}
	series := make(map[seriesKey][]contracts.YoYRow)
	var seriesOrder []seriesKey

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].category != keys[j].category {
			return keys[i].category < keys[j].category
		}
		if keys[i].grouping != keys[j].grouping {
			return keys[i].grouping < keys[j].grouping
		}
		return keys[i].year < keys[j].year
	})

	for _, metric := range metrics {
		for _, k := range keys {
			value, ok := compute(metric, buckets[k])
			if !ok {
				continue
			}
			sk := seriesKey{category: k.category, grouping: k.grouping, metric: metric}
			if _, seen := series[sk]; !seen {
				seriesOrder = append(seriesOrder, sk)
			}
			series[sk] = append(series[sk], contracts.YoYRow{
				Category:        k.category,
				ProgramGrouping: k.grouping,
				ProgramYear:     k.year,
				MetricName:      metric,
				Value:           value,
			})
		}
	}

	sort.Slice(seriesOrder, func(i, j int) bool {
		a, b := seriesOrder[i], seriesOrder[j]
		if a.category != b.category {
			return a.category < b.category
		}
		if a.grouping != b.grouping {
			return a.grouping < b.grouping
		}
		return a.metric < b.metric
	})

	var out []contracts.YoYRow
	for _, sk := range seriesOrder {
		out = append(out, link(series[sk])...)
	}
	return out
}

// compute evaluates one metric over one bucket. ok is false when the metric
// is undefined for the bucket (a mean with no numeric observations).
func compute(metric string, b *bucket) (float64, bool) {
	switch metric {
	case MetricMean:
		if b.numCount == 0 {
			return 0, false
		}
		return b.numSum / float64(b.numCount), true
	case MetricCount:
		return float64(b.total), true
	case MetricCompletionRate:
		if b.total == 0 {
			return 0, false
		}
		return float64(b.total-b.missing) / float64(b.total), true
	case MetricPctUnknown:
		if b.total == 0 {
			return 0, false
		}
		return float64(b.missing) / float64(b.total), true
	}
	return 0, false
}

// link fills prior/delta/pct_change across one ascending series. Rows are
// already limited to years that have data, so the predecessor in the slice
// is the nearest preceding program year with data.
func link(rows []contracts.YoYRow) []contracts.YoYRow {
	for i := 1; i < len(rows); i++ {
		prior := rows[i-1].Value
		delta := rows[i].Value - prior
		rows[i].PriorValue = &prior
		rows[i].Delta = &delta
		if prior != 0 {
			pct := delta / prior
			rows[i].PctChange = &pct
		}
	}
	return rows
}

// Output table columns.
var Columns = []string{
	"Category", "ProgramGrouping", "ProgramYear", "MetricName",
	"Value", "PriorProgramYearValue", "Delta", "PctChange",
}

// ToTable renders the YoY frame. Absent optionals render as empty cells,
// never as zero.
func ToTable(name string, rows []contracts.YoYRow) *contracts.Table {
	t := &contracts.Table{Name: name, Columns: Columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Category,
			r.ProgramGrouping,
			strconv.Itoa(r.ProgramYear),
			r.MetricName,
			formatFloat(r.Value),
			formatOptional(r.PriorValue),
			formatOptional(r.Delta),
			formatOptional(r.PctChange),
		})
	}
	return t
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
