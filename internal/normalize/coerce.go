package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/brightpath/assessflow/internal/contracts"
	"github.com/brightpath/assessflow/internal/dictionary"
)

// coerceOutcome is the tagged result of raw-to-typed coercion. Failure is a
// routine data-quality branch, not an error: scraped cells fail coercion all
// the time, so the outcome carries the rejection reason as data.
type coerceOutcome struct {
	ok     bool
	value  contracts.Value
	reason contracts.RejectReason
	detail string
}

func success(v contracts.Value) coerceOutcome {
	return coerceOutcome{ok: true, value: v}
}

func failure(reason contracts.RejectReason, detail string) coerceOutcome {
	return coerceOutcome{reason: reason, detail: detail}
}

// coerce converts a raw cell to the entry's declared type and checks it
// against the entry's valid range. An empty cell coerces to the sentinel:
// the export recorded the question without an answer, and the gap belongs to
// the imputation engine, not the reject sink.
func coerce(raw string, entry dictionary.Entry) coerceOutcome {
	raw = strings.TrimSpace(raw)
	v, ok := contracts.ParseValue(raw, entry.ValueType)
	if !ok {
		return failure(contracts.RejectTypeCoercionFailed, fmt.Sprintf("%q is not %s", raw, entry.ValueType))
	}

	// Out-of-range values are rejected, never clamped: clamping would
	// corrupt downstream aggregates.
	if !entry.Range.Contains(v) {
		return failure(contracts.RejectOutOfRange, fmt.Sprintf("%q outside valid range", raw))
	}
	return success(v)
}

// The export producer emits dates in several shapes depending on the source
// report and scraper version.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"2006-01-02",
	"1/2/2006",
}

// parseDate parses a raw assessment date. Unparseable dates are rejected
// upstream; substituting a fallback would break run determinism.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
