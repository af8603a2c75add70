package yoy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/assessflow/internal/contracts"
)

func calendarYears() Config {
	return Config{Start: ProgramYearStart{Month: time.January, Day: 1}}
}

func obs(year int, category string, v contracts.Value) contracts.LongFrameRow {
	return contracts.LongFrameRow{
		NormalizedRecord: contracts.NormalizedRecord{
			SubjectID:       "s1",
			AssessmentDate:  time.Date(year, 6, 15, 0, 0, 0, 0, time.UTC),
			QuestionID:      "q1",
			CanonicalValue:  v,
			Category:        category,
			ProgramGrouping: "9000",
		},
		ImputationMethod: contracts.ImputationNone,
	}
}

func TestProgramYearStart_YearOf(t *testing.T) {
	oct := ProgramYearStart{Month: time.October, Day: 1}

	tests := []struct {
		date string
		want int
	}{
		{"2024-09-30", 2024}, // last day of PY2024
		{"2024-10-01", 2025}, // first day of PY2025
		{"2024-12-31", 2025},
		{"2025-06-15", 2025},
	}
	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, oct.YearOf(d), "date %s", tt.date)
	}

	// A January 1 start degenerates to the calendar year.
	jan := ProgramYearStart{Month: time.January, Day: 1}
	d, _ := time.Parse("2006-01-02", "2024-06-15")
	assert.Equal(t, 2024, jan.YearOf(d))
}

func TestBuild_DeltaSeries(t *testing.T) {
	// Mean values 10, 15, 12 across program years 2021, 2022, 2023.
	cfg := calendarYears()
	cfg.Metrics = []string{MetricMean}

	rows := Build([]contracts.LongFrameRow{
		obs(2021, "Life Skills", contracts.Numeric(10)),
		obs(2022, "Life Skills", contracts.Numeric(15)),
		obs(2023, "Life Skills", contracts.Numeric(12)),
	}, cfg)

	require.Len(t, rows, 3)

	r2021, r2022, r2023 := rows[0], rows[1], rows[2]
	assert.Equal(t, 2021, r2021.ProgramYear)
	assert.Nil(t, r2021.PriorValue)
	assert.Nil(t, r2021.Delta)
	assert.Nil(t, r2021.PctChange)

	require.NotNil(t, r2022.Delta)
	assert.Equal(t, 5.0, *r2022.Delta)
	require.NotNil(t, r2022.PctChange)
	assert.Equal(t, 0.5, *r2022.PctChange)

	require.NotNil(t, r2023.Delta)
	assert.Equal(t, -3.0, *r2023.Delta)
	require.NotNil(t, r2023.PriorValue)
	assert.Equal(t, 15.0, *r2023.PriorValue)
}

func TestBuild_ZeroPriorOmitsPctChange(t *testing.T) {
	cfg := calendarYears()
	cfg.Metrics = []string{MetricMean}

	rows := Build([]contracts.LongFrameRow{
		obs(2021, "Life Skills", contracts.Numeric(0)),
		obs(2022, "Life Skills", contracts.Numeric(5)),
	}, cfg)

	require.Len(t, rows, 2)
	require.NotNil(t, rows[1].Delta)
	assert.Equal(t, 5.0, *rows[1].Delta)
	assert.Nil(t, rows[1].PctChange, "pct_change is undefined against a zero prior, not infinite and not zero")
}

func TestBuild_GapUsesNearestPrecedingYearWithData(t *testing.T) {
	cfg := calendarYears()
	cfg.Metrics = []string{MetricMean}

	// No data at all for 2022.
	rows := Build([]contracts.LongFrameRow{
		obs(2021, "Life Skills", contracts.Numeric(10)),
		obs(2023, "Life Skills", contracts.Numeric(13)),
	}, cfg)

	require.Len(t, rows, 2)
	r2023 := rows[1]
	assert.Equal(t, 2023, r2023.ProgramYear)
	require.NotNil(t, r2023.PriorValue)
	assert.Equal(t, 10.0, *r2023.PriorValue)
	require.NotNil(t, r2023.Delta)
	assert.Equal(t, 3.0, *r2023.Delta)
}

func TestBuild_SentinelsExcludedFromMean(t *testing.T) {
	cfg := calendarYears()

	rows := Build([]contracts.LongFrameRow{
		obs(2021, "Life Skills", contracts.Numeric(4)),
		obs(2021, "Life Skills", contracts.Numeric(2)),
		obs(2021, "Life Skills", contracts.Sentinel(contracts.ValueNumeric)),
	}, cfg)

	byMetric := make(map[string]contracts.YoYRow)
	for _, r := range rows {
		byMetric[r.MetricName] = r
	}

	assert.Equal(t, 3.0, byMetric[MetricMean].Value, "sentinel excluded from the mean")
	assert.Equal(t, 3.0, byMetric[MetricCount].Value, "sentinel included in the count")
	assert.InDelta(t, 2.0/3.0, byMetric[MetricCompletionRate].Value, 1e-9)
	assert.InDelta(t, 1.0/3.0, byMetric[MetricPctUnknown].Value, 1e-9)
}

func TestBuild_BooleanCompletionMetric(t *testing.T) {
	cfg := calendarYears()
	cfg.Metrics = []string{MetricMean}

	rows := Build([]contracts.LongFrameRow{
		obs(2021, "Safety", contracts.Boolean(true)),
		obs(2021, "Safety", contracts.Boolean(false)),
	}, cfg)

	require.Len(t, rows, 1)
	assert.Equal(t, 0.5, rows[0].Value, "booleans aggregate as 1/0")
}

func TestBuild_SeriesAreIndependent(t *testing.T) {
	cfg := calendarYears()
	cfg.Metrics = []string{MetricMean}

	rows := Build([]contracts.LongFrameRow{
		obs(2021, "Life Skills", contracts.Numeric(10)),
		obs(2022, "Life Skills", contracts.Numeric(12)),
		obs(2022, "Safety", contracts.Numeric(7)),
	}, cfg)

	require.Len(t, rows, 3)
	for _, r := range rows {
		if r.Category == "Safety" {
			assert.Nil(t, r.Delta, "first year of its own series")
		}
	}
}

func TestToTable(t *testing.T) {
	cfg := calendarYears()
	cfg.Metrics = []string{MetricMean}

	rows := Build([]contracts.LongFrameRow{
		obs(2021, "Life Skills", contracts.Numeric(10)),
		obs(2022, "Life Skills", contracts.Numeric(15)),
	}, cfg)

	table := ToTable("yoy_frame", rows)
	assert.Equal(t, Columns, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, []string{"Life Skills", "9000", "2021", "mean", "10", "", "", ""}, table.Rows[0])
	assert.Equal(t, []string{"Life Skills", "9000", "2022", "mean", "15", "10", "5", "0.5"}, table.Rows[1])
}
