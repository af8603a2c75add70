// Package normalize converts raw export rows into typed records using the
// assessment dictionary. Rows that cannot be normalized are routed to the
// rejected-rows sink with a reason; nothing is silently dropped.
package normalize

import (
	"github.com/brightpath/assessflow/internal/contracts"
	"github.com/brightpath/assessflow/internal/dictionary"
)

// Normalize resolves, types and range-checks every raw row. The accepted
// set does not depend on input order; Seq records the raw insertion order
// for downstream tie-breaking.
func Normalize(rows []contracts.RawRow, dict *dictionary.Dictionary) ([]contracts.NormalizedRecord, []contracts.RejectedRow) {
	records := make([]contracts.NormalizedRecord, 0, len(rows))
	var rejected []contracts.RejectedRow

	reject := func(raw contracts.RawRow, reason contracts.RejectReason, detail string) {
		rejected = append(rejected, contracts.RejectedRow{Raw: raw, Reason: reason, Detail: detail})
	}

	for i, raw := range rows {
		entry, ok := dict.Resolve(raw.QuestionID)
		if !ok {
			reject(raw, contracts.RejectUnknownQuestion, "question id not in dictionary")
			continue
		}

		date, ok := parseDate(raw.AssessmentDate)
		if !ok {
			reject(raw, contracts.RejectBadDate, "unparseable assessment date")
			continue
		}

		outcome := coerce(raw.RawValue, entry)
		if !outcome.ok {
			reject(raw, outcome.reason, outcome.detail)
			continue
		}

		records = append(records, contracts.NormalizedRecord{
			SubjectID:       raw.SubjectID,
			AssessmentDate:  date,
			QuestionID:      raw.QuestionID,
			CanonicalValue:  outcome.value,
			Category:        entry.Category,
			ProgramGrouping: entry.ProgramGrouping,
			Seq:             i,
		})
	}

	return records, rejected
}

// Raw export table columns.
const (
	ColSubjectID      = "SubjectID"
	ColAssessmentDate = "AssessmentDate"
	ColQuestionID     = "QuestionID"
	ColValue          = "Value"
)

// ParseRawTable adapts a stored export table into RawRows. Missing columns
// surface as empty fields and are rejected downstream by Normalize.
func ParseRawTable(table *contracts.Table) []contracts.RawRow {
	idx := table.ColumnIndex()
	col := func(name string) int {
		if pos, ok := idx[name]; ok {
			return pos
		}
		return -1
	}

	subject, date, question, value := col(ColSubjectID), col(ColAssessmentDate), col(ColQuestionID), col(ColValue)

	rows := make([]contracts.RawRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, contracts.RawRow{
			SourceTable:    table.Name,
			SubjectID:      table.Cell(r, subject),
			AssessmentDate: table.Cell(r, date),
			QuestionID:     table.Cell(r, question),
			RawValue:       table.Cell(r, value),
		})
	}
	return rows
}
