package consent

import (
	"context"
	"errors"
	"sync"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// memoryStore is an in-memory ConsentStore that behaves like the SQL store:
// reads return detached copies marked as loaded.
type memoryStore struct {
	mu       sync.Mutex
	consents map[string]*model.Consent
	updates  int
	noID     bool
	// afterGet runs after every GetByID to simulate a concurrent writer.
	afterGet func(stored *model.Consent)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{consents: make(map[string]*model.Consent)}
}

func copyConsent(c *model.Consent) *model.Consent {
	out := *c
	out.PsuData = append([]model.PsuIdData(nil), c.PsuData...)
	out.Checksum = append([]byte(nil), c.Checksum...)
	if len(out.Checksum) == 0 {
		out.Checksum = nil
	}
	return &out
}

func (m *memoryStore) put(c *model.Consent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consents[c.ConsentID] = copyConsent(c)
}

func (m *memoryStore) get(id string) *model.Consent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.consents[id]; ok {
		return copyConsent(c)
	}
	return nil
}

func (m *memoryStore) Create(tx dbmodel.TxInterface, consent *model.Consent) (string, error) {
	if m.noID {
		return "", nil
	}
	m.put(consent)
	return consent.ConsentID, nil
}

func (m *memoryStore) GetByID(ctx context.Context, consentID, orgID string) (*model.Consent, error) {
	m.mu.Lock()
	stored, ok := m.consents[consentID]
	if !ok || stored.OrgID != orgID {
		m.mu.Unlock()
		return nil, nil
	}
	out := copyConsent(stored)
	hook := m.afterGet
	m.mu.Unlock()

	out.MarkLoaded()
	if hook != nil {
		m.mu.Lock()
		hook(m.consents[consentID])
		m.mu.Unlock()
	}
	return out, nil
}

func (m *memoryStore) GetChecksumForUpdate(tx dbmodel.TxInterface, consentID, orgID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.consents[consentID]
	if !ok {
		return nil, errors.New("not found")
	}
	if len(stored.Checksum) == 0 {
		return nil, nil
	}
	return append([]byte(nil), stored.Checksum...), nil
}

func (m *memoryStore) Update(tx dbmodel.TxInterface, consent *model.Consent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	m.consents[consent.ConsentID] = copyConsent(consent)
	return nil
}

func (m *memoryStore) FindByTppAndStatuses(ctx context.Context, tppID, orgID, excludeConsentID string,
	statuses []model.ConsentStatus) ([]*model.Consent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[model.ConsentStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	out := make([]*model.Consent, 0)
	for id, c := range m.consents {
		if id == excludeConsentID || c.TppID != tppID || c.OrgID != orgID || !wanted[c.Status] {
			continue
		}
		cp := copyConsent(c)
		cp.MarkLoaded()
		out = append(out, cp)
	}
	return out, nil
}

func (m *memoryStore) FindByPsuID(ctx context.Context, psuID, orgID string) ([]*model.Consent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Consent, 0)
	for _, c := range m.consents {
		if c.OrgID != orgID {
			continue
		}
		for _, p := range c.PsuData {
			if p.PsuID == psuID {
				cp := copyConsent(c)
				cp.MarkLoaded()
				out = append(out, cp)
				break
			}
		}
	}
	return out, nil
}

// fakeTracker records usage calls without a database.
type fakeTracker struct {
	mu            sync.Mutex
	used          map[string]int
	resets        int
	increment     int
	invalidations int
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{used: make(map[string]int)}
}

func (f *fakeTracker) Increment(ctx context.Context, orgID, consentID, requestURI string,
	limit int) *serviceerror.ServiceError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > 0 && f.used[requestURI] >= limit {
		return serviceerror.WithMessageCode(serviceerror.LogicalError, codes.AccessExceeded,
			"daily access frequency exceeded")
	}
	f.used[requestURI]++
	f.increment++
	return nil
}

func (f *fakeTracker) GetUsageCounter(ctx context.Context, orgID, consentID string,
	frequencyPerDay int) (map[string]int, *serviceerror.ServiceError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.used))
	for uri, n := range f.used {
		left := frequencyPerDay - n
		if left < 0 {
			left = 0
		}
		out[uri] = left
	}
	return out, nil
}

func (f *fakeTracker) Reset(tx dbmodel.TxInterface, orgID, consentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.used = make(map[string]int)
	f.resets++
	return nil
}

func (f *fakeTracker) Invalidate(ctx context.Context, orgID, consentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
}
