package model

// AccountReferenceType identifies which account identifier a reference uses.
type AccountReferenceType string

const (
	AccountReferenceTypeIban      AccountReferenceType = "iban"
	AccountReferenceTypeBban      AccountReferenceType = "bban"
	AccountReferenceTypePan       AccountReferenceType = "pan"
	AccountReferenceTypeMaskedPan AccountReferenceType = "maskedPan"
	AccountReferenceTypeMsisdn    AccountReferenceType = "msisdn"
)

// AccountReferenceTypes lists the reference types in their canonical order.
var AccountReferenceTypes = []AccountReferenceType{
	AccountReferenceTypeIban,
	AccountReferenceTypeBban,
	AccountReferenceTypePan,
	AccountReferenceTypeMaskedPan,
	AccountReferenceTypeMsisdn,
}

// AccountReference points at one account. AspspAccountID and ResourceID are assigned
// by the bank; a reference carrying neither was only declared by the TPP.
type AccountReference struct {
	AspspAccountID string `json:"aspspAccountId,omitempty"`
	ResourceID     string `json:"resourceId,omitempty"`
	Iban           string `json:"iban,omitempty"`
	Bban           string `json:"bban,omitempty"`
	Pan            string `json:"pan,omitempty"`
	MaskedPan      string `json:"maskedPan,omitempty"`
	Msisdn         string `json:"msisdn,omitempty"`
	Currency       string `json:"currency,omitempty"`
}

// Type returns the identifier type the reference is selected by, or "" if it has none.
func (r AccountReference) Type() AccountReferenceType {
	switch {
	case r.Iban != "":
		return AccountReferenceTypeIban
	case r.Bban != "":
		return AccountReferenceTypeBban
	case r.Pan != "":
		return AccountReferenceTypePan
	case r.MaskedPan != "":
		return AccountReferenceTypeMaskedPan
	case r.Msisdn != "":
		return AccountReferenceTypeMsisdn
	default:
		return ""
	}
}

// IsEnriched reports whether the bank has assigned an identifier to the reference.
func (r AccountReference) IsEnriched() bool {
	return r.ResourceID != "" || r.AspspAccountID != ""
}

// AccountAccess is the set of account, balance and transaction references granted by a consent.
type AccountAccess struct {
	Accounts          []AccountReference `json:"accounts,omitempty"`
	Balances          []AccountReference `json:"balances,omitempty"`
	Transactions      []AccountReference `json:"transactions,omitempty"`
	AvailableAccounts string             `json:"availableAccounts,omitempty"`
	AllPsd2           string             `json:"allPsd2,omitempty"`
}

// Clone returns a copy that shares no reference slices with a.
func (a AccountAccess) Clone() AccountAccess {
	a.Accounts = append([]AccountReference(nil), a.Accounts...)
	a.Balances = append([]AccountReference(nil), a.Balances...)
	a.Transactions = append([]AccountReference(nil), a.Transactions...)
	return a
}

// IsEmpty reports whether no reference and no global access is granted.
func (a AccountAccess) IsEmpty() bool {
	return len(a.Accounts) == 0 && len(a.Balances) == 0 && len(a.Transactions) == 0 &&
		a.AvailableAccounts == "" && a.AllPsd2 == ""
}

// AllReferences returns the union of accounts, balances and transactions with duplicates removed,
// preserving first-seen order.
func (a AccountAccess) AllReferences() []AccountReference {
	seen := make(map[AccountReference]bool)
	out := make([]AccountReference, 0, len(a.Accounts)+len(a.Balances)+len(a.Transactions))
	for _, group := range [][]AccountReference{a.Accounts, a.Balances, a.Transactions} {
		for _, ref := range group {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out
}
