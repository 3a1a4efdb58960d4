package consent

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/checksum"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
	"github.com/wso2/psd2-consent-mgt/internal/usage"
)

// NewStore creates and returns a new consent store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newConsentStore(dbClient)
}

// Initialize sets up the consent module and registers routes
func Initialize(router gin.IRouter, registry *stores.StoreRegistry, checksums *checksum.Registry,
	settings config.SettingsProvider, tracker usage.UsageTracker) ConsentService {
	service := NewService(registry, checksums, settings, tracker, time.Now)
	handler := newConsentHandler(service)

	registerRoutes(router, handler)

	return service
}

// NewService builds the consent service with an explicit clock.
func NewService(registry *stores.StoreRegistry, checksums *checksum.Registry, settings config.SettingsProvider,
	tracker usage.UsageTracker, now func() time.Time) ConsentService {
	return newConsentService(registry, checksums, settings, tracker, now)
}

// registerRoutes registers all consent routes
func registerRoutes(router gin.IRouter, handler *consentHandler) {
	consents := router.Group("/consents")
	{
		consents.POST("", handler.createConsent)
		consents.GET("/:consentId", handler.getConsent)
		consents.GET("/:consentId/status", handler.getConsentStatus)
		consents.PUT("/:consentId/status", handler.updateConsentStatus)
		consents.PUT("/:consentId/access", handler.updateAspspAccess)
		consents.PUT("/:consentId/multilevel-sca", handler.updateMultilevelSca)
		consents.POST("/:consentId/terminate-old", handler.terminateOldConsents)
		consents.POST("/:consentId/usage", handler.recordUsage)
	}

	psuConsents := router.Group("/psu/consents")
	{
		psuConsents.GET("", handler.getConsentsForPsu)
		psuConsents.PUT("/:consentId/confirm", handler.confirmConsent)
		psuConsents.PUT("/:consentId/reject", handler.rejectConsent)
		psuConsents.PUT("/:consentId/revoke", handler.revokeConsent)
		psuConsents.PUT("/:consentId/authorise-partially", handler.authorisePartially)
		psuConsents.PUT("/:consentId/psu-data", handler.updatePsuData)
	}
}
