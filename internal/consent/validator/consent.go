package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

// ValidateConsentCreateRequest validates consent creation request
func ValidateConsentCreateRequest(req model.CreateConsentRequest, psuMandated bool, today time.Time) error {
	if strings.TrimSpace(req.TppID) == "" {
		return fmt.Errorf("tppId is required")
	}
	if req.ValidUntil == "" {
		return fmt.Errorf("validUntil is required")
	}
	validUntil, err := utils.ParseDate(req.ValidUntil)
	if err != nil {
		return fmt.Errorf("validUntil must be a date in YYYY-MM-DD format")
	}
	if validUntil.Before(today) {
		return fmt.Errorf("validUntil must not be in the past")
	}
	if req.FrequencyPerDay < 0 {
		return fmt.Errorf("frequencyPerDay must be non-negative")
	}
	if req.AllowedFrequencyPerDay != nil && *req.AllowedFrequencyPerDay < 0 {
		return fmt.Errorf("allowedFrequencyPerDay must be non-negative")
	}
	if req.Access.IsEmpty() {
		return fmt.Errorf("access is required")
	}
	if err := validateAccess(req.Access); err != nil {
		return fmt.Errorf("access: %w", err)
	}
	if err := validateAccess(req.AspspAccess); err != nil {
		return fmt.Errorf("aspspAccess: %w", err)
	}
	if psuMandated && len(req.PsuData) == 0 {
		return fmt.Errorf("psuData is required")
	}
	for i, psu := range req.PsuData {
		if psu.IsEmpty() {
			return fmt.Errorf("psuData[%d].psuId is required", i)
		}
	}
	return nil
}

// ValidateAccessUpdateRequest validates an ASPSP access update. Whether the new
// validUntil lies in the past is a lifecycle decision made by the service.
func ValidateAccessUpdateRequest(req model.UpdateAccessRequest) error {
	if req.ValidUntil != "" {
		if _, err := utils.ParseDate(req.ValidUntil); err != nil {
			return fmt.Errorf("validUntil must be a date in YYYY-MM-DD format")
		}
	}
	if req.FrequencyPerDay != nil && *req.FrequencyPerDay < 0 {
		return fmt.Errorf("frequencyPerDay must be non-negative")
	}
	return validateAccess(req.Access)
}

// ValidateConsentStatus rejects unknown statuses.
func ValidateConsentStatus(status model.ConsentStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid consent status: %s", status)
	}
	return nil
}

func validateAccess(access model.AccountAccess) error {
	groups := map[string][]model.AccountReference{
		"accounts":     access.Accounts,
		"balances":     access.Balances,
		"transactions": access.Transactions,
	}
	for name, refs := range groups {
		for i, ref := range refs {
			if ref.Type() == "" {
				return fmt.Errorf("%s[%d] has no account identifier", name, i)
			}
		}
	}
	return nil
}
