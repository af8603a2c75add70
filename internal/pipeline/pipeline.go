// Package pipeline orchestrates one batch run: read the input snapshot,
// normalize, impute, build the three frames, write the output snapshot.
// A run is a pure function of its input tables; any failure before the
// final writes leaves the store untouched.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/assessflow/internal/contracts"
	"github.com/brightpath/assessflow/internal/dictionary"
	"github.com/brightpath/assessflow/internal/impute"
	"github.com/brightpath/assessflow/internal/longframe"
	"github.com/brightpath/assessflow/internal/normalize"
	"github.com/brightpath/assessflow/internal/pipelineconfig"
	"github.com/brightpath/assessflow/internal/wideframe"
	"github.com/brightpath/assessflow/internal/yoy"
	"github.com/brightpath/assessflow/pkg/logger"
)

// Pipeline wires the stages over an external table store.
type Pipeline struct {
	store  contracts.TableStore
	policy *pipelineconfig.Config
	logger *logger.Logger
}

// New creates a Pipeline.
func New(store contracts.TableStore, policy *pipelineconfig.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{store: store, policy: policy, logger: log}
}

// RunReport summarizes one pipeline run for logs and operators.
type RunReport struct {
	RunID            string                         `json:"run_id"`
	PolicyHash       string                         `json:"policy_hash"`
	RawRows          int                            `json:"raw_rows"`
	NormalizedRows   int                            `json:"normalized_rows"`
	RejectedRows     int                            `json:"rejected_rows"`
	RejectedByReason map[contracts.RejectReason]int `json:"rejected_by_reason"`
	Imputation       impute.Stats                   `json:"imputation"`
	LongRows         int                            `json:"long_rows"`
	WideRows         int                            `json:"wide_rows"`
	WideCollisions   int                            `json:"wide_collisions"`
	YoYRows          int                            `json:"yoy_rows"`
	Duration         time.Duration                  `json:"duration"`
}

// Run executes the full transformation. All three output frames plus the
// rejected-rows report are built in memory first; the store is written only
// after every frame exists, so a failed stage never leaves a partially
// replaced snapshot.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{
		RunID:            uuid.NewString(),
		RejectedByReason: make(map[contracts.RejectReason]int),
	}
	if hash, err := pipelineconfig.Hash(p.policy); err == nil {
		report.PolicyHash = hash
	}

	log := p.logger.WithField("run_id", report.RunID)
	log.WithField("policy", p.policy.Meta.PolicyID).Info("Starting pipeline run")

	// Input snapshot. Both tables are read fully before any transform.
	dictTable, err := p.store.Get(ctx, p.policy.Tables.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("read dictionary table %q: %w", p.policy.Tables.Dictionary, err)
	}
	rawTable, err := p.store.Get(ctx, p.policy.Tables.Raw)
	if err != nil {
		return nil, fmt.Errorf("read raw table %q: %w", p.policy.Tables.Raw, err)
	}

	dict, err := dictionary.Load(dictTable)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	log.WithField("questions", dict.Len()).Info("Dictionary loaded")

	rawRows := normalize.ParseRawTable(rawTable)
	report.RawRows = len(rawRows)

	records, rejected := normalize.Normalize(rawRows, dict)
	report.NormalizedRows = len(records)
	report.RejectedRows = len(rejected)
	for _, r := range rejected {
		report.RejectedByReason[r.Reason]++
	}
	log.WithFields(map[string]interface{}{
		"raw":      report.RawRows,
		"accepted": report.NormalizedRows,
		"rejected": report.RejectedRows,
	}).Info("Normalization completed")

	engine := impute.NewEngine(categoryDefaults(dict, p.policy))
	imputed, impStats := engine.ImputeWithStats(records, dict)
	report.Imputation = impStats
	for _, cat := range impStats.BadDefaults {
		log.WithField("category", cat).Warn("Configured category default failed coercion, using sentinel")
	}
	log.WithFields(map[string]interface{}{
		"observed":  impStats.Observed,
		"carried":   impStats.CarriedForward,
		"defaulted": impStats.Defaulted,
		"sentinels": impStats.Sentinels,
	}).Info("Imputation completed")

	longRows := longframe.Build(imputed)
	report.LongRows = len(longRows)

	wideRows, wideStats := wideframe.Build(longRows, dict)
	report.WideRows = len(wideRows)
	report.WideCollisions = wideStats.CollisionsResolved
	if wideStats.CollisionsResolved > 0 {
		log.WithField("collisions", wideStats.CollisionsResolved).Warn("Duplicate observations resolved during pivot")
	}

	yoyRows := yoy.Build(longRows, yoy.Config{
		Start:   p.policy.ProgramYearStart.Start(),
		Metrics: p.policy.Metrics,
	})
	report.YoYRows = len(yoyRows)

	// Output snapshot, written only now that every frame is built.
	outputs := []*contracts.Table{
		longframe.ToTable(p.policy.Tables.Long, longRows),
		wideframe.ToTable(p.policy.Tables.Wide, wideRows, dict),
		yoy.ToTable(p.policy.Tables.YoY, yoyRows),
		rejectedTable(p.policy.Tables.Rejected, rejected),
	}
	for _, t := range outputs {
		if err := p.store.Replace(ctx, t); err != nil {
			return nil, fmt.Errorf("write table %q: %w", t.Name, err)
		}
	}

	report.Duration = time.Since(start)
	log.WithFields(map[string]interface{}{
		"long_rows": report.LongRows,
		"wide_rows": report.WideRows,
		"yoy_rows":  report.YoYRows,
		"duration":  report.Duration.String(),
	}).Info("Pipeline run completed")

	return report, nil
}

// categoryDefaults merges the dictionary's declared imputation defaults
// with the policy file's, policy winning per category.
func categoryDefaults(dict *dictionary.Dictionary, policy *pipelineconfig.Config) map[string]string {
	merged := make(map[string]string, len(dict.CategoryDefaults())+len(policy.CategoryDefaults))
	for cat, def := range dict.CategoryDefaults() {
		merged[cat] = def
	}
	for cat, def := range policy.CategoryDefaults {
		merged[cat] = def
	}
	return merged
}

// rejectedTable renders the rejected-rows report.
func rejectedTable(name string, rejected []contracts.RejectedRow) *contracts.Table {
	t := &contracts.Table{
		Name: name,
		Columns: []string{
			"SourceTable", "SubjectID", "AssessmentDate", "QuestionID",
			"RawValue", "Reason", "Detail",
		},
		Rows: make([][]string, 0, len(rejected)),
	}
	for _, r := range rejected {
		t.Rows = append(t.Rows, []string{
			r.Raw.SourceTable,
			r.Raw.SubjectID,
			r.Raw.AssessmentDate,
			r.Raw.QuestionID,
			r.Raw.RawValue,
			string(r.Reason),
			r.Detail,
		})
	}
	return t
}
