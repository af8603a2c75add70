// Package dictionary loads the assessment dictionary: the reference mapping
// from raw question identifiers to canonical metadata. The loaded Dictionary
// is immutable and passed explicitly to every stage that needs it; there is
// no process-wide reference data.
package dictionary

import (
	"fmt"
	"sort"

	"github.com/brightpath/assessflow/internal/contracts"
)

// Expected dictionary table columns. MinValue, MaxValue and EnumValues are
// optional per entry but the columns themselves must exist.
const (
	ColQuestionID      = "QuestionID"
	ColCanonicalName   = "CanonicalName"
	ColCategory        = "Category"
	ColProgramGrouping = "ProgramGrouping"
	ColValueType       = "ValueType"
	ColMinValue        = "MinValue"
	ColMaxValue        = "MaxValue"
	ColEnumValues      = "EnumValues"
	ColCategoryDefault = "CategoryDefault"
)

// Error is the fatal dictionary error: malformed or contradictory reference
// data aborts the run before anything is written.
type Error struct {
	QuestionID string
	Reason     string
}

func (e *Error) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("dictionary: %s", e.Reason)
	}
	return fmt.Sprintf("dictionary: question %q: %s", e.QuestionID, e.Reason)
}

// ValidRange bounds the values a question accepts: min/max for numeric
// questions, an enum set for categorical ones.
type ValidRange struct {
	Min  *float64
	Max  *float64
	Enum []string
}

// Contains reports whether v falls inside the range. Sentinels are never
// range-checked.
func (r *ValidRange) Contains(v contracts.Value) bool {
	if r == nil || v.Missing {
		return true
	}
	switch v.Type {
	case contracts.ValueNumeric:
		if r.Min != nil && v.Num < *r.Min {
			return false
		}
		if r.Max != nil && v.Num > *r.Max {
			return false
		}
		return true
	case contracts.ValueCategorical:
		if len(r.Enum) == 0 {
			return true
		}
		for _, allowed := range r.Enum {
			if v.Str == allowed {
				return true
			}
		}
		return false
	}
	return true
}

func (r *ValidRange) equal(o *ValidRange) bool {
	if (r == nil) != (o == nil) {
		return false
	}
	if r == nil {
		return true
	}
	if !floatPtrEqual(r.Min, o.Min) || !floatPtrEqual(r.Max, o.Max) {
		return false
	}
	if len(r.Enum) != len(o.Enum) {
		return false
	}
	for i := range r.Enum {
		if r.Enum[i] != o.Enum[i] {
			return false
		}
	}
	return true
}

func floatPtrEqual(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// Entry is the canonical metadata for one question. CategoryDefault is the
// raw imputation default the dictionary declares for the entry's category;
// empty means none declared.
type Entry struct {
	QuestionID      string
	CanonicalName   string
	Category        string
	ProgramGrouping string
	ValueType       contracts.ValueType
	Range           *ValidRange
	CategoryDefault string
}

func (e Entry) equal(o Entry) bool {
	return e.QuestionID == o.QuestionID &&
		e.CanonicalName == o.CanonicalName &&
		e.Category == o.Category &&
		e.ProgramGrouping == o.ProgramGrouping &&
		e.ValueType == o.ValueType &&
		e.Range.equal(o.Range) &&
		e.CategoryDefault == o.CategoryDefault
}

// Dictionary is the immutable lookup from question_id to Entry plus derived
// indexes from category to member questions and from program grouping to
// member categories.
type Dictionary struct {
	entries    map[string]Entry
	categories map[string][]string
	groupings  map[string][]string
	defaults   map[string]string
}

// Resolve looks up the entry for a question id.
func (d *Dictionary) Resolve(questionID string) (Entry, bool) {
	e, ok := d.entries[questionID]
	return e, ok
}

// Len returns the number of distinct questions.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// CategoryQuestions returns the sorted question ids belonging to a category.
func (d *Dictionary) CategoryQuestions(category string) []string {
	return d.categories[category]
}

// Categories returns all categories in sorted order.
func (d *Dictionary) Categories() []string {
	cats := make([]string, 0, len(d.categories))
	for c := range d.categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// GroupingCategories returns the sorted categories within a program grouping.
func (d *Dictionary) GroupingCategories(grouping string) []string {
	return d.groupings[grouping]
}

// CategoryDefaults returns the per-category imputation defaults declared in
// the dictionary. Callers must not mutate the returned map.
func (d *Dictionary) CategoryDefaults() map[string]string {
	return d.defaults
}

// Questions returns all question ids ordered by (category, question_id),
// the column order of the wide frame.
func (d *Dictionary) Questions() []string {
	qids := make([]string, 0, len(d.entries))
	for _, cat := range d.Categories() {
		qids = append(qids, d.categories[cat]...)
	}
	return qids
}
