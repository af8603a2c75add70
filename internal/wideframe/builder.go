// Package wideframe pivots the long frame into one row per (subject,
// assessment date) with a column per dictionary question. Duplicate
// observations of the same question are resolved by a documented tie-break
// and surfaced as a diagnostic count, never silently absorbed.
package wideframe

import (
	"sort"
	"time"

	"github.com/brightpath/assessflow/internal/contracts"
	"github.com/brightpath/assessflow/internal/dictionary"
)

// Stats reports data-quality anomalies resolved during the pivot.
type Stats struct {
	CollisionsResolved int
}

type groupKey struct {
	subject string
	date    int64
}

type group struct {
	subject  string
	date     time.Time
	cells    map[string]contracts.ImputedRecord
	cats     map[string]bool
	groupset map[string]bool
}

// Build pivots the long frame. longRows must already be in the long-frame
// builder's deterministic order; among equally-imputed duplicates the last
// row in that order wins, and a real observation always beats an imputed
// one.
func Build(longRows []contracts.LongFrameRow, dict *dictionary.Dictionary) ([]contracts.WideFrameRow, Stats) {
	var stats Stats
	groups := make(map[groupKey]*group)
	var order []groupKey

	for _, r := range longRows {
		k := groupKey{subject: r.SubjectID, date: r.AssessmentDate.Unix()}
		g, ok := groups[k]
		if !ok {
			g = &group{
				subject:  r.SubjectID,
				date:     r.AssessmentDate,
				cells:    make(map[string]contracts.ImputedRecord),
				cats:     make(map[string]bool),
				groupset: make(map[string]bool),
			}
			groups[k] = g
			order = append(order, k)
		}
		g.cats[r.Category] = true
		g.groupset[r.ProgramGrouping] = true

		existing, dup := g.cells[r.QuestionID]
		if !dup {
			g.cells[r.QuestionID] = r
			continue
		}
		stats.CollisionsResolved++
		if !existing.IsImputed && r.IsImputed {
			continue // keep the real observation
		}
		g.cells[r.QuestionID] = r
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].subject != order[j].subject {
			return order[i].subject < order[j].subject
		}
		return order[i].date < order[j].date
	})

	questions := dict.Questions()
	rows := make([]contracts.WideFrameRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, buildRow(groups[k], questions, dict))
	}
	return rows, stats
}

func buildRow(g *group, questions []string, dict *dictionary.Dictionary) contracts.WideFrameRow {
	row := contracts.WideFrameRow{
		SubjectID:       g.subject,
		AssessmentDate:  g.date.Format(contracts.DateLayout),
		Category:        sole(g.cats),
		ProgramGrouping: sole(g.groupset),
		Cells:           make(map[string]contracts.Value, len(questions)),
	}
	for _, qid := range questions {
		if rec, ok := g.cells[qid]; ok {
			row.Cells[qid] = rec.CanonicalValue
			continue
		}
		entry, _ := dict.Resolve(qid)
		row.Cells[qid] = contracts.Sentinel(entry.ValueType)
	}
	return row
}

// sole returns the single member of set, or "" when the set is empty or
// mixed. A (subject, date) pair normally belongs to one assessment
// instance; a mixed set means the observations span categories and no
// single label is honest.
func sole(set map[string]bool) string {
	if len(set) != 1 {
		return ""
	}
	for v := range set {
		return v
	}
	return ""
}

// ToTable renders the wide frame. Columns are the fixed identity columns
// followed by every dictionary question ordered by (category, question id).
func ToTable(name string, rows []contracts.WideFrameRow, dict *dictionary.Dictionary) *contracts.Table {
	questions := dict.Questions()
	columns := append([]string{"SubjectID", "AssessmentDate", "Category", "ProgramGrouping"}, questions...)

	t := &contracts.Table{Name: name, Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		cells := []string{r.SubjectID, r.AssessmentDate, r.Category, r.ProgramGrouping}
		for _, qid := range questions {
			cells = append(cells, r.Cells[qid].Render())
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
