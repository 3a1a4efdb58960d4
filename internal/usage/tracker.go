// Package usage counts how often each consent is used per request URI and day.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/system/cache"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/metrics"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

// UsageTracker records consent usages and reports the remaining daily allowance.
type UsageTracker interface {
	Increment(ctx context.Context, orgID, consentID, requestURI string, limit int) *serviceerror.ServiceError
	GetUsageCounter(ctx context.Context, orgID, consentID string, frequencyPerDay int) (map[string]int, *serviceerror.ServiceError)
	Reset(tx dbmodel.TxInterface, orgID, consentID string) error
	Invalidate(ctx context.Context, orgID, consentID string)
}

type usageTracker struct {
	stores *stores.StoreRegistry
	cache  cache.Client
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

func newUsageTracker(registry *stores.StoreRegistry, cacheClient cache.Client, ttl time.Duration,
	now func() time.Time) UsageTracker {
	return &usageTracker{
		stores: registry,
		cache:  cacheClient,
		ttl:    ttl,
		now:    now,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "UsageTracker")),
	}
}

// Increment counts one access of consentID through requestURI for today. With a
// positive limit the access is refused once today's count for the URI reached it.
func (t *usageTracker) Increment(ctx context.Context, orgID, consentID, requestURI string,
	limit int) *serviceerror.ServiceError {
	if consentID == "" || requestURI == "" {
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "consent ID and request URI are required")
	}
	today := t.today()
	counted := false
	err := t.stores.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			ok, err := t.usageStore().Increment(tx, consentID, orgID, requestURI, today, limit)
			counted = ok
			return err
		},
	})
	if err != nil {
		t.logger.Error("Failed to record consent usage", log.String("consent_id", consentID), log.Error(err))
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to record usage: %v", err))
	}
	if !counted {
		return serviceerror.WithMessageCode(serviceerror.LogicalError, codes.AccessExceeded,
			"daily access frequency exceeded")
	}
	metrics.UsageIncrements.Inc()
	t.invalidate(ctx, orgID, consentID, today)
	return nil
}

// GetUsageCounter returns, per request URI used today, how many calls remain.
func (t *usageTracker) GetUsageCounter(ctx context.Context, orgID, consentID string,
	frequencyPerDay int) (map[string]int, *serviceerror.ServiceError) {
	today := t.today()
	used, err := t.loadUsages(ctx, orgID, consentID, today)
	if err != nil {
		t.logger.Error("Failed to load consent usage", log.String("consent_id", consentID), log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to load usage: %v", err))
	}

	remaining := make(map[string]int, len(used))
	for uri, count := range used {
		left := frequencyPerDay - count
		if left < 0 {
			left = 0
		}
		remaining[uri] = left
	}
	return remaining, nil
}

// Reset clears every counter of consentID inside tx. Callers drop the cached
// counters with Invalidate once tx has committed.
func (t *usageTracker) Reset(tx dbmodel.TxInterface, orgID, consentID string) error {
	if err := t.usageStore().Reset(tx, consentID, orgID); err != nil {
		return fmt.Errorf("failed to reset usage of consent %s: %w", consentID, err)
	}
	return nil
}

// Invalidate drops today's cached counters of consentID.
func (t *usageTracker) Invalidate(ctx context.Context, orgID, consentID string) {
	t.invalidate(ctx, orgID, consentID, t.today())
}

func (t *usageTracker) loadUsages(ctx context.Context, orgID, consentID, today string) (map[string]int, error) {
	key := cacheKey(orgID, consentID, today)
	if t.cache != nil {
		cached, err := t.cache.Get(ctx, key)
		if err == nil {
			var usages map[string]int
			if jsonErr := json.Unmarshal([]byte(cached), &usages); jsonErr == nil {
				return usages, nil
			}
		} else if !cache.IsNotFound(err) {
			t.logger.Warn("Usage cache read failed", log.String("consent_id", consentID), log.Error(err))
		}
	}

	usages, err := t.usageStore().GetUsages(ctx, consentID, orgID, today)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if payload, jsonErr := json.Marshal(usages); jsonErr == nil {
			if err := t.cache.Set(ctx, key, string(payload), t.ttl); err != nil {
				t.logger.Warn("Usage cache write failed", log.String("consent_id", consentID), log.Error(err))
			}
		}
	}
	return usages, nil
}

func (t *usageTracker) invalidate(ctx context.Context, orgID, consentID, today string) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Delete(ctx, cacheKey(orgID, consentID, today)); err != nil {
		t.logger.Warn("Usage cache invalidation failed", log.String("consent_id", consentID), log.Error(err))
	}
}

func (t *usageTracker) usageStore() UsageStore {
	return t.stores.Usage.(UsageStore)
}

func (t *usageTracker) today() string {
	return utils.FormatDate(utils.TruncateToDate(t.now().UTC()))
}

func cacheKey(orgID, consentID, date string) string {
	return "usage:" + orgID + ":" + consentID + ":" + date
}
