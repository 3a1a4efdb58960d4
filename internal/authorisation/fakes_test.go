package authorisation

import (
	"context"
	"fmt"
	"sync"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	paymentmodel "github.com/wso2/psd2-consent-mgt/internal/payment/model"
	"github.com/wso2/psd2-consent-mgt/internal/psu"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// memoryStore keeps authorisations in insertion order and hands out copies.
type memoryStore struct {
	mu             sync.Mutex
	authorisations []*model.Authorisation
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) put(a *model.Authorisation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, stored := range m.authorisations {
		if stored.AuthorisationID == a.AuthorisationID {
			copied := *a
			m.authorisations[i] = &copied
			return
		}
	}
	copied := *a
	m.authorisations = append(m.authorisations, &copied)
}

func (m *memoryStore) get(id string) *model.Authorisation {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.authorisations {
		if stored.AuthorisationID == id {
			copied := *stored
			return &copied
		}
	}
	return nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.authorisations)
}

func (m *memoryStore) Create(_ dbmodel.TxInterface, authorisation *model.Authorisation) error {
	m.put(authorisation)
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, authorisationID, orgID string) (*model.Authorisation, error) {
	a := m.get(authorisationID)
	if a == nil || a.OrgID != orgID {
		return nil, nil
	}
	return a, nil
}

func (m *memoryStore) GetByParent(_ context.Context, parentID string, authType model.AuthorisationType,
	orgID string) ([]*model.Authorisation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Authorisation
	for _, stored := range m.authorisations {
		if stored.ParentID == parentID && stored.Type == authType && stored.OrgID == orgID {
			copied := *stored
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryStore) Update(_ dbmodel.TxInterface, authorisation *model.Authorisation) error {
	if m.get(authorisation.AuthorisationID) == nil {
		return fmt.Errorf("authorisation %s not found", authorisation.AuthorisationID)
	}
	m.put(authorisation)
	return nil
}

// fakeConsents is a consent lifecycle that only tracks status and PSUs.
type fakeConsents struct {
	consents map[string]*consentmodel.ConsentResponse
}

func newFakeConsents() *fakeConsents {
	return &fakeConsents{consents: map[string]*consentmodel.ConsentResponse{}}
}

func (f *fakeConsents) add(id string, status consentmodel.ConsentStatus, multilevel bool, psuIDs ...string) {
	c := &consentmodel.ConsentResponse{ConsentID: id, ConsentStatus: status, MultilevelScaRequired: multilevel}
	for _, p := range psuIDs {
		c.PsuData = append(c.PsuData, consentmodel.PsuIdData{PsuID: p})
	}
	f.consents[id] = c
}

func (f *fakeConsents) GetConsent(_ context.Context, _, consentID string) (*consentmodel.ConsentResponse, *serviceerror.ServiceError) {
	c, ok := f.consents[consentID]
	if !ok {
		return nil, serviceerror.WithMessageCode(serviceerror.LogicalError, codes.ConsentUnknown, "consent not found")
	}
	copied := *c
	return &copied, nil
}

func (f *fakeConsents) UpdatePsuDataInConsent(_ context.Context, _, consentID string,
	psuData consentmodel.PsuIdData) (bool, *serviceerror.ServiceError) {
	c := f.consents[consentID]
	c.PsuData = psu.Merge(c.PsuData, psuData)
	return true, nil
}

func (f *fakeConsents) ConfirmConsent(_ context.Context, _, consentID string) (bool, *serviceerror.ServiceError) {
	f.consents[consentID].ConsentStatus = consentmodel.ConsentStatusValid
	return true, nil
}

func (f *fakeConsents) AuthorisePartially(_ context.Context, _, consentID string) (bool, *serviceerror.ServiceError) {
	f.consents[consentID].ConsentStatus = consentmodel.ConsentStatusPartiallyAuthorised
	return true, nil
}

func (f *fakeConsents) status(id string) consentmodel.ConsentStatus {
	return f.consents[id].ConsentStatus
}

// fakePayments is a payment lifecycle that only tracks status and PSUs.
type fakePayments struct {
	payments map[string]*paymentmodel.PaymentResponse
}

func newFakePayments() *fakePayments {
	return &fakePayments{payments: map[string]*paymentmodel.PaymentResponse{}}
}

func (f *fakePayments) add(id string, status paymentmodel.TransactionStatus, psuIDs ...string) {
	p := &paymentmodel.PaymentResponse{PaymentID: id, TransactionStatus: status}
	for _, psuID := range psuIDs {
		p.PsuData = append(p.PsuData, consentmodel.PsuIdData{PsuID: psuID})
	}
	f.payments[id] = p
}

func (f *fakePayments) GetPayment(_ context.Context, _, paymentID string) (*paymentmodel.PaymentResponse, *serviceerror.ServiceError) {
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, serviceerror.WithMessageCode(serviceerror.LogicalError, codes.ResourceUnknown, "payment not found")
	}
	copied := *p
	return &copied, nil
}

func (f *fakePayments) UpdatePaymentStatus(_ context.Context, _, paymentID string,
	status paymentmodel.TransactionStatus) (bool, *serviceerror.ServiceError) {
	f.payments[paymentID].TransactionStatus = status
	return true, nil
}

func (f *fakePayments) UpdatePsuDataInPayment(_ context.Context, _, paymentID string,
	psuData consentmodel.PsuIdData) (bool, *serviceerror.ServiceError) {
	p := f.payments[paymentID]
	p.PsuData = psu.Merge(p.PsuData, psuData)
	return true, nil
}

func (f *fakePayments) status(id string) paymentmodel.TransactionStatus {
	return f.payments[id].TransactionStatus
}
