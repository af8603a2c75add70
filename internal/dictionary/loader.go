package dictionary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/brightpath/assessflow/internal/contracts"
)

var requiredColumns = []string{
	ColQuestionID, ColCanonicalName, ColCategory, ColProgramGrouping, ColValueType,
}

// Load builds a Dictionary from the reference table. It fails with *Error
// when a required column is absent, a required field is empty, a value type
// or bound is malformed, or a question id appears twice with conflicting
// metadata. Identical duplicate rows are tolerated.
func Load(table *contracts.Table) (*Dictionary, error) {
	idx := table.ColumnIndex()
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &Error{Reason: fmt.Sprintf("missing required column %q", col)}
		}
	}

	d := &Dictionary{
		entries:    make(map[string]Entry),
		categories: make(map[string][]string),
		groupings:  make(map[string][]string),
		defaults:   make(map[string]string),
	}

	for i, row := range table.Rows {
		entry, err := parseEntry(table, idx, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		if existing, ok := d.entries[entry.QuestionID]; ok {
			if !existing.equal(entry) {
				return nil, &Error{QuestionID: entry.QuestionID, Reason: "conflicting duplicate metadata"}
			}
			continue
		}
		d.entries[entry.QuestionID] = entry

		if entry.CategoryDefault != "" {
			if prior, ok := d.defaults[entry.Category]; ok && prior != entry.CategoryDefault {
				return nil, &Error{QuestionID: entry.QuestionID, Reason: fmt.Sprintf("conflicting default for category %q", entry.Category)}
			}
			d.defaults[entry.Category] = entry.CategoryDefault
		}
	}

	d.buildIndexes()
	return d, nil
}

func parseEntry(table *contracts.Table, idx map[string]int, row []string) (Entry, error) {
	get := func(col string) string {
		pos, ok := idx[col]
		if !ok {
			return ""
		}
		return strings.TrimSpace(table.Cell(row, pos))
	}

	entry := Entry{
		QuestionID:      get(ColQuestionID),
		CanonicalName:   get(ColCanonicalName),
		Category:        get(ColCategory),
		ProgramGrouping: get(ColProgramGrouping),
		ValueType:       contracts.ValueType(strings.ToLower(get(ColValueType))),
		CategoryDefault: get(ColCategoryDefault),
	}

	for _, col := range requiredColumns {
		if get(col) == "" {
			return Entry{}, &Error{QuestionID: entry.QuestionID, Reason: fmt.Sprintf("empty required field %q", col)}
		}
	}
	if !entry.ValueType.IsValid() {
		return Entry{}, &Error{QuestionID: entry.QuestionID, Reason: fmt.Sprintf("unknown value type %q", get(ColValueType))}
	}

	r, err := parseRange(entry, get(ColMinValue), get(ColMaxValue), get(ColEnumValues))
	if err != nil {
		return Entry{}, err
	}
	entry.Range = r
	return entry, nil
}

func parseRange(entry Entry, minStr, maxStr, enumStr string) (*ValidRange, error) {
	if minStr == "" && maxStr == "" && enumStr == "" {
		return nil, nil
	}

	r := &ValidRange{}
	if minStr != "" {
		v, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return nil, &Error{QuestionID: entry.QuestionID, Reason: fmt.Sprintf("bad min value %q", minStr)}
		}
		r.Min = &v
	}
	if maxStr != "" {
		v, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			return nil, &Error{QuestionID: entry.QuestionID, Reason: fmt.Sprintf("bad max value %q", maxStr)}
		}
		r.Max = &v
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return nil, &Error{QuestionID: entry.QuestionID, Reason: "min value above max value"}
	}
	if enumStr != "" {
		for _, v := range strings.Split(enumStr, "|") {
			if v = strings.TrimSpace(v); v != "" {
				r.Enum = append(r.Enum, v)
			}
		}
	}
	return r, nil
}

func (d *Dictionary) buildIndexes() {
	seen := make(map[string]map[string]bool)
	for _, e := range d.entries {
		d.categories[e.Category] = append(d.categories[e.Category], e.QuestionID)
		if seen[e.ProgramGrouping] == nil {
			seen[e.ProgramGrouping] = make(map[string]bool)
		}
		if !seen[e.ProgramGrouping][e.Category] {
			seen[e.ProgramGrouping][e.Category] = true
			d.groupings[e.ProgramGrouping] = append(d.groupings[e.ProgramGrouping], e.Category)
		}
	}
	for _, qids := range d.categories {
		sort.Strings(qids)
	}
	for _, cats := range d.groupings {
		sort.Strings(cats)
	}
}
