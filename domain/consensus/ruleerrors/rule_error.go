package ruleerrors

// These constants are used to identify a specific RuleError.
var (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock = newRuleError("ErrDuplicateBlock")

	// ErrKnownInvalid indicates the block is already known to be invalid.
	ErrKnownInvalid = newRuleError("ErrKnownInvalid")

	// ErrMissingParent indicates that the block's parent is not known.
	ErrMissingParent = newRuleError("ErrMissingParent")

	// ErrWrongBlockHeight indicates the block's height field does not
	// equal its parent's height plus one.
	ErrWrongBlockHeight = newRuleError("ErrWrongBlockHeight")

	// ErrNegativeTarget indicates specified bits do not align with
	// the expected value either because it is negative.
	ErrNegativeTarget = newRuleError("ErrNegativeTarget")

	// ErrTargetTooHigh indicates specified bits do not align with
	// the expected value either because it is above the valid
	// range.
	ErrTargetTooHigh = newRuleError("ErrTargetTooHigh")

	// ErrUnexpectedDifficulty indicates specified bits do not align with
	// the expected value based on difficulty rules.
	ErrUnexpectedDifficulty = newRuleError("ErrUnexpectedDifficulty")

	// ErrPoWHashMismatch indicates the proof-of-work hash declared in
	// the block's header does not match the hash recomputed over the
	// header's proof-of-work input with the epoch's dataset.
	ErrPoWHashMismatch = newRuleError("ErrPoWHashMismatch")

	// ErrInvalidPoW indicates that the block proof-of-work is invalid.
	ErrInvalidPoW = newRuleError("ErrInvalidPoW")

	// ErrSeedUnavailable indicates the block's epoch seed cannot be
	// resolved because the seed source block is above the tip of the
	// chain the block claims to extend. An honest chain always contains
	// its own seed sources, so such a block is invalid in context.
	ErrSeedUnavailable = newRuleError("ErrSeedUnavailable")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}
