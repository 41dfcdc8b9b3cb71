// Package vcerror declares the failure kinds of the credential protocol.
// Every kind is final: none of them is retried, callers map them to
// user-facing responses with errors.Is.
package vcerror

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema marks a malformed predicate or request, an unknown
	// operator or an out-of-range credential index.
	ErrInvalidSchema = errors.New("VCSynthesisError: InvalidSchema")

	// ErrInvalidCredential marks a credential whose signature, id or fields
	// do not check out.
	ErrInvalidCredential = errors.New("VCSynthesisError: InvalidCredential")

	// ErrUnsatisfiable marks a schema check that fails against the supplied credential.
	ErrUnsatisfiable = errors.New("VCSynthesisError: Unsatisfiable")

	// ErrBadAssignment marks a missing requested field, a checks/credentials
	// pairing mismatch or a SNARK proof that does not verify.
	ErrBadAssignment = errors.New("VCSynthesisError: BadAssignment")

	// ErrInvalidVCPresentation marks a presentation-level signature or schema mismatch.
	ErrInvalidVCPresentation = errors.New("VCSynthesisError: InvalidVCPresentation")
)

// Wrap attaches a formatted detail to one of the sentinel kinds.
func Wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
