// Package temporal computes the age of an article relative to a reference
// date and buckets it.
package temporal

import (
	"fmt"
	"time"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

// DateLayout is the only accepted stored date form.
const DateLayout = "2006-01-02"

// Bin is an ordinal age category.
type Bin string

const (
	BinFresh   Bin = "Fresh"
	BinRecent  Bin = "Recent"
	BinMidAged Bin = "Mid-aged"
	BinOld     Bin = "Old"
	BinVeryOld Bin = "Very Old"

	// BinInvalid is assigned to negative ages under PolicySentinel.
	BinInvalid Bin = "Invalid"
)

// Bins returns the valid bins from youngest to oldest.
func Bins() []Bin {
	return []Bin{BinFresh, BinRecent, BinMidAged, BinOld, BinVeryOld}
}

// NegativePolicy decides what happens when the publication date is after
// the reference date.
type NegativePolicy string

const (
	PolicySentinel NegativePolicy = "sentinel"
	PolicyReject   NegativePolicy = "reject"
)

// ParsePolicy maps a config value to a policy. Empty selects PolicySentinel.
func ParsePolicy(s string) (NegativePolicy, error) {
	switch NegativePolicy(s) {
	case "", PolicySentinel:
		return PolicySentinel, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", fmt.Errorf("unknown negative age policy %q", s)
}

// ParseDate parses a stored YYYY-MM-DD date. The "unknown" sentinel, the
// empty string and any other form, surrounding whitespace included, fail
// with *types.DateParseError.
func ParseDate(s string) (time.Time, error) {
	if s == "" || s == types.UnknownDate {
		return time.Time{}, &types.DateParseError{Value: s, Err: types.ErrUnknownDate}
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &types.DateParseError{Value: s, Err: err}
	}
	return d, nil
}

// ComputeAge returns the whole number of calendar days from pub to ref and
// its bin. Both instants are reduced to their UTC calendar date first.
func ComputeAge(pub, ref time.Time, policy NegativePolicy) (int, Bin, error) {
	t := DaysBetween(pub, ref)
	bin, err := BinFor(t, policy)
	return t, bin, err
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	a = truncateDay(a)
	b = truncateDay(b)
	return int(b.Sub(a).Hours() / 24)
}

// BinFor buckets an age in days.
func BinFor(t int, policy NegativePolicy) (Bin, error) {
	switch {
	case t < 0:
		if policy == PolicyReject {
			return "", fmt.Errorf("age %d days: %w", t, types.ErrNegativeAge)
		}
		return BinInvalid, nil
	case t <= 7:
		return BinFresh, nil
	case t <= 30:
		return BinRecent, nil
	case t <= 90:
		return BinMidAged, nil
	case t <= 180:
		return BinOld, nil
	default:
		return BinVeryOld, nil
	}
}

// AgeFromString parses a stored date and computes its age against ref.
func AgeFromString(date string, ref time.Time, policy NegativePolicy) (int, Bin, error) {
	pub, err := ParseDate(date)
	if err != nil {
		return 0, "", err
	}
	return ComputeAge(pub, ref, policy)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
