package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrUnknownDate  = errors.New("publication date unknown")
	ErrNegativeAge  = errors.New("publication date is after the reference date")
	ErrEmptyBody    = errors.New("empty article body")
	ErrNoEntries    = errors.New("feed has no entries")
	ErrInvalidURL   = errors.New("invalid URL")
	ErrNotAnArticle = errors.New("page is not an article")
)

// FetchError wraps errors that occur while fetching a single feed, search
// page or article. It never aborts a run: the item is logged and skipped.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DateParseError reports a publication date that is absent, a sentinel or
// not in YYYY-MM-DD form.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: %v", e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// PersistenceError wraps failures to read or write a store file. These are
// fatal for the run.
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s %s): %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in an admission stage.
type PipelineError struct {
	Stage string
	URL   string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// RejectError is returned by an admission stage that refuses a record. The
// record is routed to the removed-articles log tagged with Reason.
type RejectError struct {
	Reason RemoveReason
	Err    error
}

func (e *RejectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rejected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("rejected (%s)", e.Reason)
}

func (e *RejectError) Unwrap() error { return e.Err }

// Reject builds a RejectError.
func Reject(reason RemoveReason, err error) error {
	return &RejectError{Reason: reason, Err: err}
}

// AsReject reports whether err carries an admission rejection.
func AsReject(err error) (*RejectError, bool) {
	var rej *RejectError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
