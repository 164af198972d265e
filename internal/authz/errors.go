package authz

import "errors"

// ErrPermissionDenied is the class every denial matches via errors.Is.
var ErrPermissionDenied = errors.New("permission denied")

// DeniedError carries the denied action and the evaluator's reason so the
// transport layer can map it losslessly (403 + reason).
type DeniedError struct {
	Action Permission
	Reason string
}

func (e *DeniedError) Error() string {
	return "permission denied: " + e.Reason
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// Err converts a decision into an error: nil when allowed, a *DeniedError
// otherwise. No mutation may proceed past a non-nil Err.
func (d Decision) Err(action Permission) error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Action: action, Reason: d.Reason}
}

// DenialReason extracts the evaluator reason from an error chain, or "" when
// the error is not a denial.
func DenialReason(err error) string {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied.Reason
	}
	return ""
}
