// Package psu compares PSU identities by their identifying fields.
package psu

import (
	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

type identity struct {
	id, idType, corporateID, corporateIDType string
}

func keyOf(p model.PsuIdData) identity {
	return identity{
		id:              p.PsuID,
		idType:          p.PsuIDType,
		corporateID:     p.PsuCorporateID,
		corporateIDType: p.PsuCorporateIDType,
	}
}

// Equals reports whether a and b identify the same PSU. The IP address is not part
// of the identity.
func Equals(a, b model.PsuIdData) bool {
	return keyOf(a) == keyOf(b)
}

// EqualsExactly reports whether both lists hold the same set of PSU identities,
// regardless of order. An empty list only equals another empty list.
func EqualsExactly(a, b []model.PsuIdData) bool {
	left := toSet(a)
	right := toSet(b)
	if len(left) != len(right) {
		return false
	}
	for k := range left {
		if !right[k] {
			return false
		}
	}
	return true
}

// Contains reports whether list holds an identity equal to p.
func Contains(list []model.PsuIdData, p model.PsuIdData) bool {
	k := keyOf(p)
	for _, item := range list {
		if keyOf(item) == k {
			return true
		}
	}
	return false
}

// Merge appends p to list unless it is already present.
func Merge(list []model.PsuIdData, p model.PsuIdData) []model.PsuIdData {
	if p.IsEmpty() || Contains(list, p) {
		return list
	}
	return append(list, p)
}

func toSet(list []model.PsuIdData) map[identity]bool {
	set := make(map[identity]bool, len(list))
	for _, p := range list {
		if p.IsEmpty() {
			continue
		}
		set[keyOf(p)] = true
	}
	return set
}
