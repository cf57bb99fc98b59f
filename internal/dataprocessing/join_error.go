package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	apierrors "bikepulse/internal/errors"
)

// JoinErrorKind classifies a failed merge
type JoinErrorKind string

const (
	JoinDuplicateKey JoinErrorKind = "duplicate_key"
	JoinKeyMismatch  JoinErrorKind = "key_mismatch"
	JoinRowCount     JoinErrorKind = "row_count"
)

// JoinError reports a merge whose inputs do not describe the same set of
// areas. Subsets merged by area code must share one key set exactly.
type JoinError struct {
	Join     string
	Kind     JoinErrorKind
	Subset   string
	Key      string
	Expected int
	Actual   int
	Missing  []string
	Extra    []string
}

// Error implements the error interface
func (e *JoinError) Error() string {
	switch e.Kind {
	case JoinDuplicateKey:
		return fmt.Sprintf("%s join: duplicate key %q in %s", e.Join, e.Key, e.Subset)
	case JoinKeyMismatch:
		var parts []string
		if len(e.Missing) > 0 {
			parts = append(parts, "missing "+strings.Join(e.Missing, ","))
		}
		if len(e.Extra) > 0 {
			parts = append(parts, "unexpected "+strings.Join(e.Extra, ","))
		}
		return fmt.Sprintf("%s join: %s keys differ (%s)", e.Join, e.Subset, strings.Join(parts, "; "))
	default:
		return fmt.Sprintf("%s join: %s has %d rows, expected %d", e.Join, e.Subset, e.Actual, e.Expected)
	}
}

// asAppError wraps a *JoinError in the application's JOIN error type and
// passes every other error through unchanged
func asAppError(err error) error {
	var joinErr *JoinError
	if !errors.As(err, &joinErr) {
		return err
	}
	return apierrors.NewJoinError(joinErr.Join+" join failed", err).
		WithContext("kind", string(joinErr.Kind)).
		WithContext("subset", joinErr.Subset)
}
