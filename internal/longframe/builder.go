// Package longframe materializes one output row per imputed observation in
// a deterministic order, so re-runs over identical input are byte-identical.
package longframe

import (
	"sort"
	"strconv"

	"github.com/brightpath/assessflow/internal/contracts"
)

// Build orders the records by (subject, assessment date, question). The
// sort is stable: duplicate observations of the same triple keep their raw
// insertion order, which the wide-frame tie-break depends on.
func Build(records []contracts.ImputedRecord) []contracts.LongFrameRow {
	rows := make([]contracts.LongFrameRow, len(records))
	copy(rows, records)

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SubjectID != rows[j].SubjectID {
			return rows[i].SubjectID < rows[j].SubjectID
		}
		if !rows[i].AssessmentDate.Equal(rows[j].AssessmentDate) {
			return rows[i].AssessmentDate.Before(rows[j].AssessmentDate)
		}
		return rows[i].QuestionID < rows[j].QuestionID
	})
	return rows
}

// Output table columns.
var Columns = []string{
	"SubjectID", "AssessmentDate", "QuestionID", "Value",
	"Category", "ProgramGrouping", "IsImputed", "ImputationMethod",
}

// ToTable renders the long frame as a named output table.
func ToTable(name string, rows []contracts.LongFrameRow) *contracts.Table {
	t := &contracts.Table{Name: name, Columns: Columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.SubjectID,
			r.AssessmentDate.Format(contracts.DateLayout),
			r.QuestionID,
			r.CanonicalValue.Render(),
			r.Category,
			r.ProgramGrouping,
			strconv.FormatBool(r.IsImputed),
			string(r.ImputationMethod),
		})
	}
	return t
}
