package model

import "github.com/wso2/psd2-consent-mgt/internal/system/utils"

// ConsentResponse is the API view of a consent.
type ConsentResponse struct {
	ConsentID                string         `json:"consentId"`
	TppID                    string         `json:"tppId"`
	ConsentStatus            ConsentStatus  `json:"consentStatus"`
	RecurringIndicator       bool           `json:"recurringIndicator"`
	CombinedServiceIndicator bool           `json:"combinedServiceIndicator"`
	MultilevelScaRequired    bool           `json:"multilevelScaRequired"`
	ValidUntil               string         `json:"validUntil,omitempty"`
	ExpireDate               string         `json:"expireDate,omitempty"`
	LastActionDate           string         `json:"lastActionDate,omitempty"`
	FrequencyPerDay          int            `json:"frequencyPerDay"`
	TppFrequencyPerDay       int            `json:"tppFrequencyPerDay"`
	Access                   AccountAccess  `json:"access"`
	AspspAccess              AccountAccess  `json:"aspspAccess"`
	PsuData                  []PsuIdData    `json:"psuData"`
	CreationTimestamp        int64          `json:"creationTimestamp"`
	StatusChangeTimestamp    int64          `json:"statusChangeTimestamp"`
	UsageCounter             map[string]int `json:"usageCounter,omitempty"`
}

// CreateConsentResponse is returned from consent creation.
type CreateConsentResponse struct {
	ConsentID string          `json:"consentId"`
	Consent   ConsentResponse `json:"consent"`
}

// ConsentStatusResponse is the API view of a consent status.
type ConsentStatusResponse struct {
	ConsentID     string        `json:"consentId"`
	ConsentStatus ConsentStatus `json:"consentStatus"`
}

// ResultResponse reports the outcome of PSU-facing operations that succeed or not.
type ResultResponse struct {
	Result bool `json:"result"`
}

// ConsentListResponse wraps a list of consents.
type ConsentListResponse struct {
	Data []ConsentResponse `json:"data"`
}

// ToResponse maps a consent onto its API view.
func (c *Consent) ToResponse(usage map[string]int) ConsentResponse {
	psuData := c.PsuData
	if psuData == nil {
		psuData = []PsuIdData{}
	}
	return ConsentResponse{
		ConsentID:                c.ConsentID,
		TppID:                    c.TppID,
		ConsentStatus:            c.Status,
		RecurringIndicator:       c.RecurringIndicator,
		CombinedServiceIndicator: c.CombinedServiceIndicator,
		MultilevelScaRequired:    c.MultilevelScaRequired,
		ValidUntil:               utils.FormatDate(c.ValidUntil),
		ExpireDate:               utils.FormatDate(c.ExpireDate),
		LastActionDate:           utils.FormatDate(c.LastActionDate),
		FrequencyPerDay:          c.FrequencyPerDay,
		TppFrequencyPerDay:       c.TppFrequencyPerDay,
		Access:                   c.TppAccess,
		AspspAccess:              c.AspspAccess,
		PsuData:                  psuData,
		CreationTimestamp:        c.CreationTimestamp,
		StatusChangeTimestamp:    c.StatusChangeTimestamp,
		UsageCounter:             usage,
	}
}
