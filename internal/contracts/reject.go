package contracts

// RejectReason classifies why a raw row was excluded from the output frames.
// Rejection is expected data quality routing, not an error: scraped exports
// routinely contain decommissioned fields and malformed cells.
type RejectReason string

const (
	RejectUnknownQuestion    RejectReason = "UnknownQuestion"
	RejectTypeCoercionFailed RejectReason = "TypeCoercionFailed"
	RejectOutOfRange         RejectReason = "OutOfRange"
	RejectBadDate            RejectReason = "BadDate"
)

// RejectedRow is a raw row routed to the rejected-rows report together with
// the reason it was excluded.
type RejectedRow struct {
	Raw    RawRow       `json:"raw"`
	Reason RejectReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}
