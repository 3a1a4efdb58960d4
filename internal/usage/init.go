package usage

import (
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/system/cache"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
)

// NewStore creates and returns a new usage store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) interface{} {
	return newUsageStore(dbClient)
}

// Initialize builds the usage tracker. The store must already be attached to the registry.
func Initialize(registry *stores.StoreRegistry, cacheClient cache.Client, ttl time.Duration) UsageTracker {
	return newUsageTracker(registry, cacheClient, ttl, time.Now)
}

// NewTracker builds a tracker with an explicit clock.
func NewTracker(registry *stores.StoreRegistry, cacheClient cache.Client, ttl time.Duration, now func() time.Time) UsageTracker {
	return newUsageTracker(registry, cacheClient, ttl, now)
}
