package wideframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/assessflow/internal/contracts"
	"github.com/brightpath/assessflow/internal/dictionary"
)

func testDict(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	table := &contracts.Table{
		Name: "assessment_dictionary",
		Columns: []string{
			dictionary.ColQuestionID, dictionary.ColCanonicalName, dictionary.ColCategory,
			dictionary.ColProgramGrouping, dictionary.ColValueType,
			dictionary.ColMinValue, dictionary.ColMaxValue, dictionary.ColEnumValues,
		},
		Rows: [][]string{
			{"budget", "Budgeting skills", "Life Skills", "9000", "numeric", "", "", ""},
			{"goals", "Goal setting", "Life Skills", "9000", "numeric", "", "", ""},
			{"mood", "Mood rating", "Emotional Health", "9000", "categorical", "", "", ""},
		},
	}
	dict, err := dictionary.Load(table)
	require.NoError(t, err)
	return dict
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func row(subject string, date time.Time, question, category string, v contracts.Value, imputed bool) contracts.LongFrameRow {
	method := contracts.ImputationNone
	if imputed {
		method = contracts.ImputationCarryForward
	}
	return contracts.LongFrameRow{
		NormalizedRecord: contracts.NormalizedRecord{
			SubjectID:       subject,
			AssessmentDate:  date,
			QuestionID:      question,
			CanonicalValue:  v,
			Category:        category,
			ProgramGrouping: "9000",
		},
		IsImputed:        imputed,
		ImputationMethod: method,
	}
}

func TestBuild_RowPerSubjectDate(t *testing.T) {
	dict := testDict(t)

	rows, stats := Build([]contracts.LongFrameRow{
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(4), false),
		row("s1", day(1), "goals", "Life Skills", contracts.Numeric(3), false),
		row("s1", day(2), "budget", "Life Skills", contracts.Numeric(5), false),
		row("s2", day(1), "budget", "Life Skills", contracts.Numeric(2), false),
	}, dict)

	assert.Equal(t, 0, stats.CollisionsResolved)
	require.Len(t, rows, 3, "one row per distinct (subject, date) pair")

	first := rows[0]
	assert.Equal(t, "s1", first.SubjectID)
	assert.Equal(t, "Life Skills", first.Category)
	assert.Equal(t, "9000", first.ProgramGrouping)
	assert.True(t, first.Cells["budget"].Equal(contracts.Numeric(4)))
	assert.True(t, first.Cells["goals"].Equal(contracts.Numeric(3)))

	// No observation for mood: sentinel cell.
	assert.True(t, first.Cells["mood"].Missing)
}

func TestBuild_CollisionPrefersRealObservation(t *testing.T) {
	dict := testDict(t)

	// Imputed duplicate arrives after the real one; the real one must win.
	rows, stats := Build([]contracts.LongFrameRow{
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(4), false),
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(1), true),
	}, dict)

	assert.Equal(t, 1, stats.CollisionsResolved)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Cells["budget"].Equal(contracts.Numeric(4)))

	// And the symmetric case: real beats an earlier imputed value.
	rows, stats = Build([]contracts.LongFrameRow{
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(1), true),
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(4), false),
	}, dict)
	assert.Equal(t, 1, stats.CollisionsResolved)
	assert.True(t, rows[0].Cells["budget"].Equal(contracts.Numeric(4)))
}

func TestBuild_CollisionLastWinsAmongEquals(t *testing.T) {
	dict := testDict(t)

	rows, stats := Build([]contracts.LongFrameRow{
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(2), false),
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(5), false),
	}, dict)

	assert.Equal(t, 1, stats.CollisionsResolved)
	assert.True(t, rows[0].Cells["budget"].Equal(contracts.Numeric(5)))
}

func TestBuild_MixedCategoriesClearLabel(t *testing.T) {
	dict := testDict(t)

	rows, _ := Build([]contracts.LongFrameRow{
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(4), false),
		row("s1", day(1), "mood", "Emotional Health", contracts.Categorical("low"), false),
	}, dict)

	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Category, "observations span categories, no single label is honest")
	assert.Equal(t, "9000", rows[0].ProgramGrouping)
}

func TestToTable(t *testing.T) {
	dict := testDict(t)

	rows, _ := Build([]contracts.LongFrameRow{
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(4), false),
	}, dict)

	table := ToTable("wide_frame", rows, dict)
	// Identity columns, then questions ordered by (category, question id).
	assert.Equal(t, []string{
		"SubjectID", "AssessmentDate", "Category", "ProgramGrouping",
		"mood", "budget", "goals",
	}, table.Columns)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{
		"s1", "2024-03-01 00:00:00", "Life Skills", "9000", "", "4", "",
	}, table.Rows[0])
}

func TestBuild_RowOrderDeterministic(t *testing.T) {
	dict := testDict(t)

	input := []contracts.LongFrameRow{
		row("s2", day(1), "budget", "Life Skills", contracts.Numeric(1), false),
		row("s1", day(2), "budget", "Life Skills", contracts.Numeric(2), false),
		row("s1", day(1), "budget", "Life Skills", contracts.Numeric(3), false),
	}

	rows, _ := Build(input, dict)
	require.Len(t, rows, 3)
	assert.Equal(t, "s1", rows[0].SubjectID)
	assert.Equal(t, "2024-03-01 00:00:00", rows[0].AssessmentDate)
	assert.Equal(t, "s1", rows[1].SubjectID)
	assert.Equal(t, "2024-03-02 00:00:00", rows[1].AssessmentDate)
	assert.Equal(t, "s2", rows[2].SubjectID)
}
