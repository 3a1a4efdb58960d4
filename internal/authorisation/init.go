package authorisation

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/authorisation/processor"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
)

// NewStore creates and returns a new authorisation store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newAuthorisationStore(dbClient)
}

// Initialize sets up the authorisation module and registers routes
func Initialize(router gin.IRouter, registry *stores.StoreRegistry, settings config.SettingsProvider,
	client spi.AuthorisationSPI, consents ConsentLifecycle, payments PaymentLifecycle) AuthorisationService {
	service := NewService(registry, settings, client, consents, payments, time.Now)
	registerRoutes(router, newAuthorisationHandler(service))
	return service
}

// NewService builds the authorisation service and its SCA chain with an explicit clock.
func NewService(registry *stores.StoreRegistry, settings config.SettingsProvider, client spi.AuthorisationSPI,
	consents ConsentLifecycle, payments PaymentLifecycle, now func() time.Time) AuthorisationService {
	writer := &storeWriter{
		execute: registry.ExecuteTransaction,
		store:   registry.Authorisation.(AuthorisationStore),
	}
	chain := processor.NewChain(processor.NewDefaultRegistry(client, writer, now))
	return newAuthorisationService(registry, chain, writer, consents, payments, settings, now)
}

func registerRoutes(router gin.IRouter, handler *authorisationHandler) {
	registerResourceRoutes(router.Group("/consents/:consentId/authorisations"), handler,
		model.AuthorisationTypeAis, "consentId")
	registerResourceRoutes(router.Group("/payments/:paymentId/authorisations"), handler,
		model.AuthorisationTypePisCreation, "paymentId")
	registerResourceRoutes(router.Group("/payments/:paymentId/cancellation-authorisations"), handler,
		model.AuthorisationTypePisCancellation, "paymentId")

	psu := router.Group("/psu")
	{
		psu.GET("/redirects/:redirectId", handler.getByRedirectID)
		psu.PUT("/authorisations/:authorisationId/status/:status", handler.updateScaStatus)
		psu.PUT("/authorisations/:authorisationId/method", handler.updateAuthenticationMethod)
	}
}

func registerResourceRoutes(group *gin.RouterGroup, handler *authorisationHandler,
	authType model.AuthorisationType, param string) {
	group.POST("", handler.createAuthorisation(authType, param))
	group.GET("", handler.getPsuDataAuthorisations(authType, param))
	group.PUT("/:authorisationId", handler.updatePsuData(authType, param))
	group.GET("/:authorisationId/status", handler.getScaStatus(authType, param))
}
