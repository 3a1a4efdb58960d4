package model

import (
	"time"
)

// Consent is an AIS consent together with the access it grants and the PSUs bound to it.
// Dates are held as UTC midnights; timestamps are milliseconds since epoch.
type Consent struct {
	ConsentID                string        `db:"CONSENT_ID" json:"consentId"`
	OrgID                    string        `db:"ORG_ID" json:"orgId"`
	TppID                    string        `db:"TPP_ID" json:"tppId"`
	Status                   ConsentStatus `db:"CONSENT_STATUS" json:"consentStatus"`
	RecurringIndicator       bool          `db:"RECURRING_INDICATOR" json:"recurringIndicator"`
	CombinedServiceIndicator bool          `db:"COMBINED_SERVICE_INDICATOR" json:"combinedServiceIndicator"`
	MultilevelScaRequired    bool          `db:"MULTILEVEL_SCA_REQUIRED" json:"multilevelScaRequired"`
	ValidUntil               time.Time     `db:"VALID_UNTIL" json:"-"`
	ExpireDate               time.Time     `db:"EXPIRE_DATE" json:"-"`
	LastActionDate           time.Time     `db:"LAST_ACTION_DATE" json:"-"`
	FrequencyPerDay          int           `db:"FREQUENCY_PER_DAY" json:"frequencyPerDay"`
	TppFrequencyPerDay       int           `db:"TPP_FREQUENCY_PER_DAY" json:"tppFrequencyPerDay"`
	TppAccess                AccountAccess `db:"TPP_ACCESS" json:"tppAccess"`
	AspspAccess              AccountAccess `db:"ASPSP_ACCESS" json:"aspspAccess"`
	PsuData                  []PsuIdData   `db:"PSU_DATA" json:"psuData"`
	CreationTimestamp        int64         `db:"CREATION_TIMESTAMP" json:"creationTimestamp"`
	StatusChangeTimestamp    int64         `db:"STATUS_CHANGE_TIMESTAMP" json:"statusChangeTimestamp"`
	Checksum                 []byte        `db:"CHECKSUM" json:"-"`

	// loadedStatus, loadedChecksum and loaded capture the persisted state at read
	// time and drive the checksum guard on save.
	loadedStatus   ConsentStatus
	loadedChecksum []byte
	loaded         *Consent
}

// MarkLoaded records the current status, checksum and content as the persisted baseline.
func (c *Consent) MarkLoaded() {
	c.loadedStatus = c.Status
	c.loadedChecksum = append([]byte(nil), c.Checksum...)

	snapshot := *c
	snapshot.TppAccess = c.TppAccess.Clone()
	snapshot.AspspAccess = c.AspspAccess.Clone()
	snapshot.PsuData = append([]PsuIdData(nil), c.PsuData...)
	snapshot.loaded = nil
	c.loaded = &snapshot
}

// LoadedContent returns the consent as it was read from the store, before any
// in-memory change. A consent that was never loaded is its own baseline.
func (c *Consent) LoadedContent() *Consent {
	if c.loaded == nil {
		return c
	}
	return c.loaded
}

// LoadedStatus returns the status the consent had when it was read from the store.
func (c *Consent) LoadedStatus() ConsentStatus {
	return c.loadedStatus
}

// LoadedChecksum returns the checksum the consent had when it was read from the store.
func (c *Consent) LoadedChecksum() []byte {
	return c.loadedChecksum
}

// SetStatus moves the consent to status and stamps the change time.
func (c *Consent) SetStatus(status ConsentStatus, nowMillis int64) {
	c.Status = status
	c.StatusChangeTimestamp = nowMillis
}

// IsOneAccessType reports whether the consent may be used for a single access only.
func (c *Consent) IsOneAccessType() bool {
	return !c.RecurringIndicator
}

// IsExpiredByDate reports whether validUntil lies strictly before today.
func (c *Consent) IsExpiredByDate(today time.Time) bool {
	return !c.ValidUntil.IsZero() && c.ValidUntil.Before(today)
}

// ShouldBeExpired reports whether a read on today must move the consent to EXPIRED.
func (c *Consent) ShouldBeExpired(today time.Time) bool {
	return !c.Status.IsFinalised() && c.IsExpiredByDate(today)
}

// IsConfirmationExpired reports whether a not yet confirmed consent outlived the
// confirmation window. A non-positive window disables the check.
func (c *Consent) IsConfirmationExpired(nowMillis, windowMillis int64) bool {
	if windowMillis <= 0 || c.Status.IsFinalised() || c.Status == ConsentStatusValid {
		return false
	}
	return c.CreationTimestamp+windowMillis < nowMillis
}
