package model

// TransactionStatus is the ISO 20022 transaction status of a payment.
type TransactionStatus string

const (
	TransactionStatusReceived                   TransactionStatus = "RCVD"
	TransactionStatusPartiallyAccepted          TransactionStatus = "PATC"
	TransactionStatusAcceptedCustomerProfile    TransactionStatus = "ACCP"
	TransactionStatusAcceptedSettlementComplete TransactionStatus = "ACSC"
	TransactionStatusAcceptedSettlementProcess  TransactionStatus = "ACSP"
	TransactionStatusAcceptedTechnicalValid     TransactionStatus = "ACTC"
	TransactionStatusAcceptedWithChange         TransactionStatus = "ACWC"
	TransactionStatusAcceptedWithoutPosting     TransactionStatus = "ACWP"
	TransactionStatusAcceptedCreditSettlement   TransactionStatus = "ACCC"
	TransactionStatusAcceptedFundsChecked       TransactionStatus = "ACFC"
	TransactionStatusPending                    TransactionStatus = "PDNG"
	TransactionStatusPartiallyAcceptedPart      TransactionStatus = "PART"
	TransactionStatusRejected                   TransactionStatus = "RJCT"
	TransactionStatusCancelled                  TransactionStatus = "CANC"
)

var knownStatuses = map[TransactionStatus]bool{
	TransactionStatusReceived:                   true,
	TransactionStatusPartiallyAccepted:          true,
	TransactionStatusAcceptedCustomerProfile:    true,
	TransactionStatusAcceptedSettlementComplete: true,
	TransactionStatusAcceptedSettlementProcess:  true,
	TransactionStatusAcceptedTechnicalValid:     true,
	TransactionStatusAcceptedWithChange:         true,
	TransactionStatusAcceptedWithoutPosting:     true,
	TransactionStatusAcceptedCreditSettlement:   true,
	TransactionStatusAcceptedFundsChecked:       true,
	TransactionStatusPending:                    true,
	TransactionStatusPartiallyAcceptedPart:      true,
	TransactionStatusRejected:                   true,
	TransactionStatusCancelled:                  true,
}

// IsValid reports whether s is a known transaction status.
func (s TransactionStatus) IsValid() bool {
	return knownStatuses[s]
}

// IsFinalised reports whether no further status change is allowed.
func (s TransactionStatus) IsFinalised() bool {
	switch s {
	case TransactionStatusAcceptedCreditSettlement, TransactionStatusAcceptedSettlementComplete,
		TransactionStatusRejected, TransactionStatusCancelled:
		return true
	}
	return false
}

// AwaitsAuthorisation reports whether the payment has not been authorised by its PSUs yet.
func (s TransactionStatus) AwaitsAuthorisation() bool {
	switch s {
	case TransactionStatusReceived, TransactionStatusPartiallyAccepted, TransactionStatusPending:
		return true
	}
	return false
}
