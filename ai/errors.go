package ai

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the reasoning pipeline. Scoring converts these into
// the degraded result at the service boundary; profile extraction surfaces
// them verbatim.
var (
	// ErrMissingAPIKey means no credential was configured. Not retried.
	ErrMissingAPIKey = errors.New("gemini api key is not configured")

	// ErrBadCredential means the upstream rejected the credential itself,
	// so no other model candidate can succeed.
	ErrBadCredential = errors.New("gemini rejected the configured credential")

	// ErrNoAvailableModel means every candidate in the fallback list failed.
	ErrNoAvailableModel = errors.New("no gemini model from the fallback list is available")

	// ErrNoJSONObject means the response carried no parseable JSON object.
	ErrNoJSONObject = errors.New("no json object found in model response")

	// ErrMissingField and ErrWrongType describe a decoded object that lacks
	// a required field or carries it with an unusable type.
	ErrMissingField = errors.New("required field missing from model response")
	ErrWrongType    = errors.New("field has wrong type in model response")
)

// UpstreamError wraps transport and SDK failures from the reasoning service.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("reasoning upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is a response-shape failure rather than a
// transport or configuration one.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrNoJSONObject) || errors.Is(err, ErrMissingField) || errors.Is(err, ErrWrongType)
}

// FailureClass buckets err into the short reason strings carried by degraded
// scoring results.
func FailureClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, ErrBadCredential):
		return "scoring unavailable: reasoning service is not configured"
	case errors.Is(err, ErrNoAvailableModel):
		return "scoring unavailable: no reasoning model is reachable"
	case IsMalformed(err):
		return "scoring unavailable: reasoning service returned an unreadable result"
	default:
		return "scoring unavailable: reasoning service request failed"
	}
}
