package main

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation"
	"github.com/wso2/psd2-consent-mgt/internal/checksum"
	"github.com/wso2/psd2-consent-mgt/internal/consent"
	"github.com/wso2/psd2-consent-mgt/internal/payment"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/cache"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
	"github.com/wso2/psd2-consent-mgt/internal/usage"
)

// registerServices wires every module onto router. Stores are attached to a
// shared registry first so cross-module writes run in one transaction.
func registerServices(router gin.IRouter, dbClient provider.DBClientInterface, cacheClient cache.Client,
	cfg *config.Config) {
	logger := log.GetLogger()

	registry := stores.NewStoreRegistry(dbClient)
	registry.Consent = consent.NewStore(dbClient)
	registry.Payment = payment.NewStore(dbClient)
	registry.Authorisation = authorisation.NewStore(dbClient)
	registry.Usage = usage.NewStore(dbClient)

	settings := config.NewSettingsProvider(cfg.Aspsp)

	tracker := usage.Initialize(registry, cacheClient, cfg.Cache.TTL)
	logger.Info("Usage tracker initialized", log.String("cache_driver", cfg.Cache.Driver))

	consentService := consent.Initialize(router, registry, checksum.NewDefaultRegistry(), settings, tracker)
	logger.Info("Consent module initialized")

	paymentService := payment.Initialize(router, registry, settings)
	logger.Info("Payment module initialized")

	authorisation.Initialize(router, registry, settings, spi.New(cfg.SPI), consentService, paymentService)
	logger.Info("Authorisation module initialized", log.Bool("connector", cfg.SPI.BaseURL != ""))
}
