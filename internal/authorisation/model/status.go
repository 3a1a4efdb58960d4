package model

import "strings"

// ScaStatus is the status of an SCA authorisation.
type ScaStatus string

const (
	ScaStatusReceived          ScaStatus = "RECEIVED"
	ScaStatusPsuIdentified     ScaStatus = "PSUIDENTIFIED"
	ScaStatusPsuAuthenticated  ScaStatus = "PSUAUTHENTICATED"
	ScaStatusScaMethodSelected ScaStatus = "SCAMETHODSELECTED"
	ScaStatusStarted           ScaStatus = "STARTED"
	ScaStatusFinalised         ScaStatus = "FINALISED"
	ScaStatusFailed            ScaStatus = "FAILED"
	ScaStatusExempted          ScaStatus = "EXEMPTED"
)

// IsValid reports whether s is a known SCA status.
func (s ScaStatus) IsValid() bool {
	switch s {
	case ScaStatusReceived, ScaStatusPsuIdentified, ScaStatusPsuAuthenticated, ScaStatusScaMethodSelected,
		ScaStatusStarted, ScaStatusFinalised, ScaStatusFailed, ScaStatusExempted:
		return true
	}
	return false
}

// IsFinalised reports whether the authorisation can no longer change.
func (s ScaStatus) IsFinalised() bool {
	return s == ScaStatusFinalised || s == ScaStatusFailed || s == ScaStatusExempted
}

// scaProgress orders the SCA steps; the three finalised outcomes share the last rank.
var scaProgress = map[ScaStatus]int{
	ScaStatusReceived:          0,
	ScaStatusPsuIdentified:     1,
	ScaStatusPsuAuthenticated:  2,
	ScaStatusScaMethodSelected: 3,
	ScaStatusStarted:           4,
	ScaStatusFinalised:         5,
	ScaStatusFailed:            5,
	ScaStatusExempted:          5,
}

// CanMoveTo reports whether an authorisation in s may be moved to next. Nothing
// leaves a finalised status and no move goes back to an earlier step.
func (s ScaStatus) CanMoveTo(next ScaStatus) bool {
	if s.IsFinalised() || !next.IsValid() {
		return false
	}
	return scaProgress[next] >= scaProgress[s]
}

// IsSuccessful reports whether the PSU completed SCA or was exempted from it.
func (s ScaStatus) IsSuccessful() bool {
	return s == ScaStatusFinalised || s == ScaStatusExempted
}

// ScaApproach is the way the PSU performs SCA.
type ScaApproach string

const (
	ScaApproachRedirect  ScaApproach = "REDIRECT"
	ScaApproachDecoupled ScaApproach = "DECOUPLED"
	ScaApproachEmbedded  ScaApproach = "EMBEDDED"
)

// ParseScaApproach returns the approach named by s, case-insensitively.
func ParseScaApproach(s string) (ScaApproach, bool) {
	switch approach := ScaApproach(strings.ToUpper(s)); approach {
	case ScaApproachRedirect, ScaApproachDecoupled, ScaApproachEmbedded:
		return approach, true
	}
	return "", false
}

// AuthorisationType identifies what an authorisation authorises.
type AuthorisationType string

const (
	AuthorisationTypeAis             AuthorisationType = "AIS"
	AuthorisationTypePisCreation     AuthorisationType = "PIS_CREATION"
	AuthorisationTypePisCancellation AuthorisationType = "PIS_CANCELLATION"
)

// IsPayment reports whether the parent of the authorisation is a payment.
func (t AuthorisationType) IsPayment() bool {
	return t == AuthorisationTypePisCreation || t == AuthorisationTypePisCancellation
}
