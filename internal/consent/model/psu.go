package model

import "strings"

// PsuIdData identifies a payment service user.
type PsuIdData struct {
	PsuID              string `json:"psuId,omitempty"`
	PsuIDType          string `json:"psuIdType,omitempty"`
	PsuCorporateID     string `json:"psuCorporateId,omitempty"`
	PsuCorporateIDType string `json:"psuCorporateIdType,omitempty"`
	PsuIPAddress       string `json:"psuIpAddress,omitempty"`
}

// IsEmpty reports whether no PSU id is present.
func (p PsuIdData) IsEmpty() bool {
	return strings.TrimSpace(p.PsuID) == ""
}

// IsNotEmpty is the negation of IsEmpty.
func (p PsuIdData) IsNotEmpty() bool {
	return !p.IsEmpty()
}
