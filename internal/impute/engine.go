// Package impute fills missing observations deterministically. Records are
// grouped by (subject, category); within a group every question the
// dictionary expects for the category gets a value at every assessment date
// the subject was seen, via carry-forward, configured category default, or
// the sentinel.
package impute

import (
	"sort"

	"github.com/brightpath/assessflow/internal/contracts"
	"github.com/brightpath/assessflow/internal/dictionary"
)

// Engine applies the imputation policy. Defaults maps category to the raw
// literal used when no prior observation exists; it is coerced to each
// question's declared type at fill time.
type Engine struct {
	defaults map[string]string
}

// NewEngine creates an Engine with the configured per-category defaults.
func NewEngine(defaults map[string]string) *Engine {
	return &Engine{defaults: defaults}
}

// Stats summarizes one imputation pass.
type Stats struct {
	Observed       int
	CarriedForward int
	Defaulted      int
	Sentinels      int
	BadDefaults    []string // categories whose configured default failed coercion
}

// Total returns the number of emitted records.
func (s Stats) Total() int {
	return s.Observed + s.CarriedForward + s.Defaulted + s.Sentinels
}

// Impute fills the record set. See ImputeWithStats.
func (e *Engine) Impute(records []contracts.NormalizedRecord, dict *dictionary.Dictionary) []contracts.ImputedRecord {
	out, _ := e.ImputeWithStats(records, dict)
	return out
}

// ImputeWithStats fills the record set and reports how each value was
// produced. Output is deterministic: groups are processed in sorted key
// order and dates in ascending order with raw insertion order breaking
// ties, so the same input snapshot always yields the same fill decisions.
func (e *Engine) ImputeWithStats(records []contracts.NormalizedRecord, dict *dictionary.Dictionary) ([]contracts.ImputedRecord, Stats) {
	groups := make(map[groupKey][]contracts.NormalizedRecord)
	for _, r := range records {
		k := groupKey{subject: r.SubjectID, category: r.Category}
		groups[k] = append(groups[k], r)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].subject != keys[j].subject {
			return keys[i].subject < keys[j].subject
		}
		return keys[i].category < keys[j].category
	})

	var out []contracts.ImputedRecord
	var stats Stats
	badDefaults := make(map[string]bool)

	for _, k := range keys {
		out = e.fillGroup(out, k, groups[k], dict, &stats, badDefaults)
	}

	for cat := range badDefaults {
		stats.BadDefaults = append(stats.BadDefaults, cat)
	}
	sort.Strings(stats.BadDefaults)
	return out, stats
}

type groupKey struct {
	subject  string
	category string
}

// fillGroup walks one (subject, category) group date by date. Only observed
// values seed the carry-forward state; an imputed value never propagates.
func (e *Engine) fillGroup(out []contracts.ImputedRecord, k groupKey, group []contracts.NormalizedRecord, dict *dictionary.Dictionary, stats *Stats, badDefaults map[string]bool) []contracts.ImputedRecord {
	// Stable by date: records with equal dates keep raw insertion order,
	// which decides the winning "most recent prior" value.
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].AssessmentDate.Before(group[j].AssessmentDate)
	})

	var dates []int64
	byDate := make(map[int64][]contracts.NormalizedRecord)
	for _, r := range group {
		ts := r.AssessmentDate.Unix()
		if _, seen := byDate[ts]; !seen {
			dates = append(dates, ts)
		}
		byDate[ts] = append(byDate[ts], r)
	}

	expected := dict.CategoryQuestions(k.category)
	lastObserved := make(map[string]contracts.Value)

	for _, ts := range dates {
		dayRecords := byDate[ts]
		observed := make(map[string]bool)
		var template contracts.NormalizedRecord

		for _, r := range dayRecords {
			template = r
			if r.CanonicalValue.Missing {
				// An answered-blank cell: the slot exists but the value
				// is a gap for the fill pass below.
				continue
			}
			out = append(out, contracts.ImputedRecord{
				NormalizedRecord: r,
				ImputationMethod: contracts.ImputationNone,
			})
			stats.Observed++
			observed[r.QuestionID] = true
			lastObserved[r.QuestionID] = r.CanonicalValue
		}

		for _, qid := range expected {
			if observed[qid] {
				continue
			}
			out = append(out, e.fillOne(k, qid, template, lastObserved, dict, stats, badDefaults))
		}
	}
	return out
}

// fillOne produces the imputed record for one absent (date, question) slot.
func (e *Engine) fillOne(k groupKey, qid string, template contracts.NormalizedRecord, lastObserved map[string]contracts.Value, dict *dictionary.Dictionary, stats *Stats, badDefaults map[string]bool) contracts.ImputedRecord {
	entry, _ := dict.Resolve(qid)
	rec := contracts.ImputedRecord{
		NormalizedRecord: contracts.NormalizedRecord{
			SubjectID:       k.subject,
			AssessmentDate:  template.AssessmentDate,
			QuestionID:      qid,
			Category:        k.category,
			ProgramGrouping: entry.ProgramGrouping,
			Seq:             -1, // no raw source row
		},
		IsImputed: true,
	}

	if prior, ok := lastObserved[qid]; ok {
		rec.CanonicalValue = prior
		rec.ImputationMethod = contracts.ImputationCarryForward
		stats.CarriedForward++
		return rec
	}

	if raw, ok := e.defaults[k.category]; ok {
		if v, valid := contracts.ParseValue(raw, entry.ValueType); valid && !v.Missing {
			rec.CanonicalValue = v
			rec.ImputationMethod = contracts.ImputationCategoryDefault
			stats.Defaulted++
			return rec
		}
		badDefaults[k.category] = true
	}

	rec.CanonicalValue = contracts.Sentinel(entry.ValueType)
	rec.ImputationMethod = contracts.ImputationSentinel
	stats.Sentinels++
	return rec
}
