package types

// RemoveReason tags a rejected candidate in the removed-articles log.
type RemoveReason string

const (
	ReasonUnknownDate       RemoveReason = "unknown_date"
	ReasonPlaceholderTime   RemoveReason = "00_time"
	ReasonTooShort          RemoveReason = "too_short"
	ReasonGenericTitle      RemoveReason = "generic_title"
	ReasonInvalidDateFormat RemoveReason = "invalid_date_format"
)

// Valid returns true for the known reasons.
func (r RemoveReason) Valid() bool {
	switch r {
	case ReasonUnknownDate, ReasonPlaceholderTime, ReasonTooShort,
		ReasonGenericTitle, ReasonInvalidDateFormat:
		return true
	}
	return false
}

func (r RemoveReason) String() string { return string(r) }
