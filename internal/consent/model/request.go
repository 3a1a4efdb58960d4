package model

// CreateConsentRequest is the payload of POST /consents.
type CreateConsentRequest struct {
	TppID                    string        `json:"tppId"`
	PsuData                  []PsuIdData   `json:"psuData,omitempty"`
	RecurringIndicator       bool          `json:"recurringIndicator"`
	CombinedServiceIndicator bool          `json:"combinedServiceIndicator"`
	MultilevelScaRequired    bool          `json:"multilevelScaRequired"`
	ValidUntil               string        `json:"validUntil"`
	FrequencyPerDay          int           `json:"frequencyPerDay"`
	AllowedFrequencyPerDay   *int          `json:"allowedFrequencyPerDay,omitempty"`
	Access                   AccountAccess `json:"access"`
	AspspAccess              AccountAccess `json:"aspspAccess"`
}

// UpdateAccessRequest replaces the ASPSP-granted access of a consent.
type UpdateAccessRequest struct {
	Access          AccountAccess `json:"access"`
	ValidUntil      string        `json:"validUntil,omitempty"`
	FrequencyPerDay *int          `json:"frequencyPerDay,omitempty"`
}

// UpdateStatusRequest is the payload of PUT /consents/{consentId}/status.
type UpdateStatusRequest struct {
	Status ConsentStatus `json:"status" binding:"required"`
}

// MultilevelScaRequest is the payload of PUT /consents/{consentId}/multilevel-sca.
type MultilevelScaRequest struct {
	MultilevelScaRequired bool `json:"multilevelScaRequired"`
}

// UsageRequest records one access of a consent for a request URI.
type UsageRequest struct {
	RequestURI string `json:"requestUri" binding:"required"`
}
