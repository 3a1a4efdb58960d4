package model

// ConsentStatus is the lifecycle status of an AIS consent.
type ConsentStatus string

const (
	ConsentStatusReceived            ConsentStatus = "RECEIVED"
	ConsentStatusRejected            ConsentStatus = "REJECTED"
	ConsentStatusPartiallyAuthorised ConsentStatus = "PARTIALLY_AUTHORISED"
	ConsentStatusValid               ConsentStatus = "VALID"
	ConsentStatusTerminatedByTpp     ConsentStatus = "TERMINATED_BY_TPP"
	ConsentStatusRevokedByPsu        ConsentStatus = "REVOKED_BY_PSU"
	ConsentStatusExpired             ConsentStatus = "EXPIRED"
)

var allowedTransitions = map[ConsentStatus]map[ConsentStatus]bool{
	ConsentStatusReceived: {
		ConsentStatusRejected:            true,
		ConsentStatusPartiallyAuthorised: true,
		ConsentStatusValid:               true,
		ConsentStatusTerminatedByTpp:     true,
		ConsentStatusExpired:             true,
	},
	ConsentStatusPartiallyAuthorised: {
		ConsentStatusValid:           true,
		ConsentStatusRejected:        true,
		ConsentStatusTerminatedByTpp: true,
		ConsentStatusExpired:         true,
	},
	ConsentStatusValid: {
		ConsentStatusRevokedByPsu:    true,
		ConsentStatusExpired:         true,
		ConsentStatusTerminatedByTpp: true,
	},
}

// IsFinalised reports whether the status is terminal.
func (s ConsentStatus) IsFinalised() bool {
	switch s {
	case ConsentStatusRejected, ConsentStatusTerminatedByTpp, ConsentStatusRevokedByPsu, ConsentStatusExpired:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is a known status.
func (s ConsentStatus) IsValid() bool {
	switch s {
	case ConsentStatusReceived, ConsentStatusRejected, ConsentStatusPartiallyAuthorised, ConsentStatusValid,
		ConsentStatusTerminatedByTpp, ConsentStatusRevokedByPsu, ConsentStatusExpired:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a consent in status s may move to next.
// Finalised statuses accept nothing; re-applying the current status is allowed otherwise.
func (s ConsentStatus) CanTransitionTo(next ConsentStatus) bool {
	if s.IsFinalised() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	return allowedTransitions[s][next]
}

// TerminalStatusOnSupersede is the status an older consent is moved to when a newer
// consent for the same PSU set replaces it.
func (s ConsentStatus) TerminalStatusOnSupersede() ConsentStatus {
	if s == ConsentStatusReceived || s == ConsentStatusPartiallyAuthorised {
		return ConsentStatusRejected
	}
	return ConsentStatusTerminatedByTpp
}
