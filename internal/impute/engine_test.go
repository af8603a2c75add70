package impute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/assessflow/internal/contracts"
	"github.com/brightpath/assessflow/internal/dictionary"
)

func testDict(t *testing.T, rows [][]string) *dictionary.Dictionary {
	t.Helper()
	table := &contracts.Table{
		Name: "assessment_dictionary",
		Columns: []string{
			dictionary.ColQuestionID, dictionary.ColCanonicalName, dictionary.ColCategory,
			dictionary.ColProgramGrouping, dictionary.ColValueType,
			dictionary.ColMinValue, dictionary.ColMaxValue, dictionary.ColEnumValues,
		},
		Rows: rows,
	}
	dict, err := dictionary.Load(table)
	require.NoError(t, err)
	return dict
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func observed(subject string, date time.Time, question string, v contracts.Value, seq int) contracts.NormalizedRecord {
	return contracts.NormalizedRecord{
		SubjectID:       subject,
		AssessmentDate:  date,
		QuestionID:      question,
		CanonicalValue:  v,
		Category:        "Life Skills",
		ProgramGrouping: "9000",
		Seq:             seq,
	}
}

func blank(subject string, date time.Time, question string, seq int) contracts.NormalizedRecord {
	return observed(subject, date, question, contracts.Sentinel(contracts.ValueNumeric), seq)
}

func find(t *testing.T, out []contracts.ImputedRecord, subject string, date time.Time, question string) contracts.ImputedRecord {
	t.Helper()
	for _, r := range out {
		if r.SubjectID == subject && r.AssessmentDate.Equal(date) && r.QuestionID == question {
			return r
		}
	}
	t.Fatalf("no record for (%s, %s, %s)", subject, date.Format("2006-01-02"), question)
	return contracts.ImputedRecord{}
}

func TestEngine_CarryForward(t *testing.T) {
	dict := testDict(t, [][]string{
		{"q1", "Question one", "Life Skills", "9000", "numeric", "", "", ""},
	})

	// q1=5 on day 1; day 3 seen with no answer for q1.
	out := NewEngine(nil).Impute([]contracts.NormalizedRecord{
		observed("s1", day(1), "q1", contracts.Numeric(5), 0),
		blank("s1", day(3), "q1", 1),
	}, dict)

	require.Len(t, out, 2)

	d1 := find(t, out, "s1", day(1), "q1")
	assert.False(t, d1.IsImputed)
	assert.Equal(t, contracts.ImputationNone, d1.ImputationMethod)

	d3 := find(t, out, "s1", day(3), "q1")
	assert.True(t, d3.IsImputed)
	assert.Equal(t, contracts.ImputationCarryForward, d3.ImputationMethod)
	assert.True(t, d3.CanonicalValue.Equal(contracts.Numeric(5)))
}

func TestEngine_FillsEveryExpectedQuestion(t *testing.T) {
	dict := testDict(t, [][]string{
		{"q1", "Question one", "Life Skills", "9000", "numeric", "", "", ""},
		{"q2", "Question two", "Life Skills", "9000", "numeric", "", "", ""},
	})

	// Day 1 answers both; day 2 answers only q2.
	out, stats := NewEngine(nil).ImputeWithStats([]contracts.NormalizedRecord{
		observed("s1", day(1), "q1", contracts.Numeric(2), 0),
		observed("s1", day(1), "q2", contracts.Numeric(3), 1),
		observed("s1", day(2), "q2", contracts.Numeric(4), 2),
	}, dict)

	require.Len(t, out, 4)
	assert.Equal(t, 3, stats.Observed)
	assert.Equal(t, 1, stats.CarriedForward)

	q1d2 := find(t, out, "s1", day(2), "q1")
	assert.Equal(t, contracts.ImputationCarryForward, q1d2.ImputationMethod)
	assert.True(t, q1d2.CanonicalValue.Equal(contracts.Numeric(2)))
}

func TestEngine_CategoryDefaultAndSentinel(t *testing.T) {
	dict := testDict(t, [][]string{
		{"q1", "Question one", "Life Skills", "9000", "numeric", "", "", ""},
		{"q2", "Question two", "Life Skills", "9000", "numeric", "", "", ""},
	})

	records := []contracts.NormalizedRecord{
		observed("s1", day(1), "q1", contracts.Numeric(2), 0),
	}

	// With a configured default, the never-observed q2 gets it.
	out, stats := NewEngine(map[string]string{"Life Skills": "3"}).ImputeWithStats(records, dict)
	q2 := find(t, out, "s1", day(1), "q2")
	assert.Equal(t, contracts.ImputationCategoryDefault, q2.ImputationMethod)
	assert.True(t, q2.CanonicalValue.Equal(contracts.Numeric(3)))
	assert.Equal(t, 1, stats.Defaulted)

	// Without one, the sentinel.
	out, stats = NewEngine(nil).ImputeWithStats(records, dict)
	q2 = find(t, out, "s1", day(1), "q2")
	assert.Equal(t, contracts.ImputationSentinel, q2.ImputationMethod)
	assert.True(t, q2.CanonicalValue.Missing)
	assert.Equal(t, 1, stats.Sentinels)
}

func TestEngine_DefaultNeverPropagates(t *testing.T) {
	dict := testDict(t, [][]string{
		{"q1", "Question one", "Life Skills", "9000", "numeric", "", "", ""},
		{"q2", "Question two", "Life Skills", "9000", "numeric", "", "", ""},
	})

	// q2 is never observed; both days must be defaulted, not carried.
	out, stats := NewEngine(map[string]string{"Life Skills": "3"}).ImputeWithStats([]contracts.NormalizedRecord{
		observed("s1", day(1), "q1", contracts.Numeric(2), 0),
		observed("s1", day(2), "q1", contracts.Numeric(2), 1),
	}, dict)

	require.Len(t, out, 4)
	assert.Equal(t, 2, stats.Defaulted)
	assert.Equal(t, 0, stats.CarriedForward)
	assert.Equal(t, contracts.ImputationCategoryDefault, find(t, out, "s1", day(2), "q2").ImputationMethod)
}

func TestEngine_BadDefaultFallsBackToSentinel(t *testing.T) {
	dict := testDict(t, [][]string{
		{"q1", "Question one", "Life Skills", "9000", "numeric", "", "", ""},
		{"q2", "Question two", "Life Skills", "9000", "numeric", "", "", ""},
	})

	out, stats := NewEngine(map[string]string{"Life Skills": "often"}).ImputeWithStats([]contracts.NormalizedRecord{
		observed("s1", day(1), "q1", contracts.Numeric(2), 0),
	}, dict)

	q2 := find(t, out, "s1", day(1), "q2")
	assert.Equal(t, contracts.ImputationSentinel, q2.ImputationMethod)
	assert.Equal(t, []string{"Life Skills"}, stats.BadDefaults)
}

func TestEngine_SameDateTieBrokenByInsertionOrder(t *testing.T) {
	dict := testDict(t, [][]string{
		{"q1", "Question one", "Life Skills", "9000", "numeric", "", "", ""},
	})

	// Two observations of q1 at the same instant; the later-inserted value
	// wins as the carry-forward source.
	out := NewEngine(nil).Impute([]contracts.NormalizedRecord{
		observed("s1", day(1), "q1", contracts.Numeric(2), 0),
		observed("s1", day(1), "q1", contracts.Numeric(4), 1),
		blank("s1", day(2), "q1", 2),
	}, dict)

	d2 := find(t, out, "s1", day(2), "q1")
	assert.Equal(t, contracts.ImputationCarryForward, d2.ImputationMethod)
	assert.True(t, d2.CanonicalValue.Equal(contracts.Numeric(4)))

	// Both same-date observations are preserved in the output.
	count := 0
	for _, r := range out {
		if r.AssessmentDate.Equal(day(1)) {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestEngine_Deterministic(t *testing.T) {
	dict := testDict(t, [][]string{
		{"q1", "Question one", "Life Skills", "9000", "numeric", "", "", ""},
		{"q2", "Question two", "Life Skills", "9000", "numeric", "", "", ""},
	})

	records := []contracts.NormalizedRecord{
		observed("s2", day(2), "q1", contracts.Numeric(1), 0),
		observed("s1", day(1), "q2", contracts.Numeric(2), 1),
		observed("s1", day(2), "q1", contracts.Numeric(3), 2),
	}

	engine := NewEngine(nil)
	first := engine.Impute(records, dict)
	second := engine.Impute(records, dict)
	assert.Equal(t, first, second)
}
