package payment

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
)

// NewStore creates and returns a new payment store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newPaymentStore(dbClient)
}

// Initialize sets up the payment module and registers routes
func Initialize(router gin.IRouter, registry *stores.StoreRegistry, settings config.SettingsProvider) PaymentService {
	service := NewService(registry, settings, time.Now)
	registerRoutes(router, newPaymentHandler(service))
	return service
}

// NewService builds the payment service with an explicit clock.
func NewService(registry *stores.StoreRegistry, settings config.SettingsProvider, now func() time.Time) PaymentService {
	return newPaymentService(registry, settings, now)
}

func registerRoutes(router gin.IRouter, handler *paymentHandler) {
	payments := router.Group("/payments")
	{
		payments.POST("", handler.createPayment)
		payments.GET("/:paymentId", handler.getPayment)
		payments.GET("/:paymentId/status", handler.getPaymentStatus)
		payments.PUT("/:paymentId/status", handler.updatePaymentStatus)
		payments.PUT("/:paymentId/multilevel-sca", handler.updateMultilevelSca)
		payments.GET("/:paymentId/psu-data", handler.getPsuDataList)
	}
}
