package ruleerrors

import (
	"fmt"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These are the sentinel rule violations a sync attempt can hit. Each is
// non-fatal to the caller (the attempt should be aborted, not the process)
// unless otherwise noted.
var (
	// ErrProofSuffixLengthMismatch indicates a chain proof's suffix is not
	// exactly min(K, head height) headers long: K headers, or, for a chain
	// whose head height is below K, every block above the height-0 genesis.
	ErrProofSuffixLengthMismatch = newRuleError("ErrProofSuffixLengthMismatch")

	// ErrProofPrefixNotAscending indicates a chain proof's sparse prefix
	// is not strictly increasing in height.
	ErrProofPrefixNotAscending = newRuleError("ErrProofPrefixNotAscending")

	// ErrProofPrefixInvalid indicates one of a chain proof's prefix
	// blocks failed its own self-verification.
	ErrProofPrefixInvalid = newRuleError("ErrProofPrefixInvalid")

	// ErrInterlinkMismatch indicates a suffix header's declared interlink
	// hash does not match the interlink reconstructed from its
	// predecessor.
	ErrInterlinkMismatch = newRuleError("ErrInterlinkMismatch")

	// ErrEmptyProof indicates a chain proof has neither a prefix nor a
	// suffix.
	ErrEmptyProof = newRuleError("ErrEmptyProof")

	// ErrOrphanBlock indicates a pushed block's parent is unknown.
	ErrOrphanBlock = newRuleError("ErrOrphanBlock")

	// ErrBlockAlreadyKnown indicates a pushed block is already stored.
	ErrBlockAlreadyKnown = newRuleError("ErrBlockAlreadyKnown")

	// ErrUnexpectedDifficulty indicates a block's declared bits do not
	// match what the retargeting collaborator expects.
	ErrUnexpectedDifficulty = newRuleError("ErrUnexpectedDifficulty")

	// ErrNotImmediateSuccessor indicates a block pushed along the
	// reverse path does not have the exact parent/height relationship
	// required of it.
	ErrNotImmediateSuccessor = newRuleError("ErrNotImmediateSuccessor")

	// ErrBlockVerificationFailed indicates a block's own intrinsic
	// Verify() check failed.
	ErrBlockVerificationFailed = newRuleError("ErrBlockVerificationFailed")

	// ErrAccountStateRevertFailed indicates the accounts collaborator
	// rejected a reverse block application.
	ErrAccountStateRevertFailed = newRuleError("ErrAccountStateRevertFailed")

	// ErrChunkOutOfOrder indicates an accounts-tree snapshot chunk did
	// not extend the tree's declared missing prefix.
	ErrChunkOutOfOrder = newRuleError("ErrChunkOutOfOrder")

	// ErrChunkVerificationFailed indicates an accounts-tree snapshot
	// chunk failed to verify against the pinned root.
	ErrChunkVerificationFailed = newRuleError("ErrChunkVerificationFailed")

	// ErrWrongPhase indicates an operation was issued while the sync
	// state machine was in a phase that does not permit it.
	ErrWrongPhase = newRuleError("ErrWrongPhase")
)

// RuleError identifies a rule violation: processing of a proof, block, or
// snapshot chunk failed one of PLCS's validation rules. Callers can type-
// assert to recover the specific sentinel.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface.
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface.
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrMissingParent indicates a block's declared parent hash is unknown to
// the store.
type ErrMissingParent struct {
	MissingParentHash *externalapi.DomainHash
}

func (e ErrMissingParent) Error() string {
	return fmt.Sprintf("missing parent hash: %s", e.MissingParentHash)
}

// NewErrMissingParent creates a new ErrMissingParent wrapped in a RuleError.
func NewErrMissingParent(missingParentHash *externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParent",
		inner:   ErrMissingParent{missingParentHash},
	})
}

// ErrBadRetarget indicates a block's declared bits disagree with the
// retargeting collaborator's expectation.
type ErrBadRetarget struct {
	Expected uint32
	Actual   uint32
}

func (e ErrBadRetarget) Error() string {
	return fmt.Sprintf("expected bits %08x, got %08x", e.Expected, e.Actual)
}

// NewErrBadRetarget creates a new ErrBadRetarget wrapped in a RuleError.
func NewErrBadRetarget(expected, actual uint32) error {
	return errors.WithStack(RuleError{
		message: "ErrUnexpectedDifficulty",
		inner:   ErrBadRetarget{Expected: expected, Actual: actual},
	})
}
