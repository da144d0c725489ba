package models

// Outcome is the result of a soft-fail operation: local storage writes
// and background telemetry sends. These paths never propagate errors —
// the data is low-value and recoverable — but tests and logs still need
// to see whether a failure happened, so the failure is reported as an
// explicit Ignored outcome instead of being thrown away.
type Outcome string

const (
	// OutcomeApplied means the operation took effect.
	OutcomeApplied Outcome = "applied"

	// OutcomeIgnored means the operation failed and the failure was
	// swallowed. The caller proceeds as if it succeeded; the failure is
	// logged but never surfaced to the driver.
	OutcomeIgnored Outcome = "ignored"
)

// Applied reports whether the operation took effect.
func (o Outcome) Applied() bool { return o == OutcomeApplied }
