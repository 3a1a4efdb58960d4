package model

import (
	"encoding/json"

	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

// Payment is a common payment initiation. The payment body is kept as opaque JSON;
// only its lifecycle is managed here.
type Payment struct {
	PaymentID             string
	OrgID                 string
	TppID                 string
	PaymentProduct        string
	PaymentType           string
	TransactionStatus     TransactionStatus
	MultilevelScaRequired bool
	PsuData               []consentmodel.PsuIdData
	Payload               json.RawMessage
	CreationTimestamp     int64
	StatusChangeTimestamp int64
}

// SetStatus moves the payment to status and stamps the change time.
func (p *Payment) SetStatus(status TransactionStatus, nowMillis int64) {
	p.TransactionStatus = status
	p.StatusChangeTimestamp = nowMillis
}

// IsConfirmationExpired reports whether a payment still awaiting authorisation
// outlived the confirmation window. A non-positive window disables the check.
func (p *Payment) IsConfirmationExpired(nowMillis, windowMillis int64) bool {
	if windowMillis <= 0 || !p.TransactionStatus.AwaitsAuthorisation() {
		return false
	}
	return p.CreationTimestamp+windowMillis < nowMillis
}
