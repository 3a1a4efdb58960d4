package authorisation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/authorisation/processor"
	"github.com/wso2/psd2-consent-mgt/internal/authorisation/validator"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	paymentmodel "github.com/wso2/psd2-consent-mgt/internal/payment/model"
	"github.com/wso2/psd2-consent-mgt/internal/psu"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/metrics"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

// ConsentLifecycle is the part of the consent service that SCA drives.
type ConsentLifecycle interface {
	GetConsent(ctx context.Context, orgID, consentID string) (*consentmodel.ConsentResponse, *serviceerror.ServiceError)
	UpdatePsuDataInConsent(ctx context.Context, orgID, consentID string, psuData consentmodel.PsuIdData) (bool, *serviceerror.ServiceError)
	ConfirmConsent(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError)
	AuthorisePartially(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError)
}

// PaymentLifecycle is the part of the payment service that SCA drives.
type PaymentLifecycle interface {
	GetPayment(ctx context.Context, orgID, paymentID string) (*paymentmodel.PaymentResponse, *serviceerror.ServiceError)
	UpdatePaymentStatus(ctx context.Context, orgID, paymentID string, status paymentmodel.TransactionStatus) (bool, *serviceerror.ServiceError)
	UpdatePsuDataInPayment(ctx context.Context, orgID, paymentID string, psuData consentmodel.PsuIdData) (bool, *serviceerror.ServiceError)
}

// AuthorisationService defines the exported service interface
type AuthorisationService interface {
	CreateAuthorisation(ctx context.Context, orgID, parentID string, authType model.AuthorisationType,
		req model.CreateAuthorisationRequest) (*model.CreateAuthorisationResponse, *serviceerror.ServiceError)
	UpdatePsuData(ctx context.Context, orgID, parentID, authorisationID string, authType model.AuthorisationType,
		req model.UpdatePsuDataRequest) (*model.UpdatePsuDataResponse, *serviceerror.ServiceError)
	GetScaStatus(ctx context.Context, orgID, parentID, authorisationID string,
		authType model.AuthorisationType) (*model.ScaStatusResponse, *serviceerror.ServiceError)
	GetAuthorisationByRedirectID(ctx context.Context, orgID, redirectID string) (*model.AuthorisationResponse, error)
	UpdateScaStatus(ctx context.Context, orgID, authorisationID string, status model.ScaStatus) (bool, *serviceerror.ServiceError)
	UpdateAuthenticationMethod(ctx context.Context, orgID, authorisationID, methodID string) (bool, *serviceerror.ServiceError)
	GetPsuDataAuthorisations(ctx context.Context, orgID, parentID string,
		authType model.AuthorisationType) ([]model.PsuDataAuthorisation, *serviceerror.ServiceError)
}

type authorisationService struct {
	stores   *stores.StoreRegistry
	chain    *processor.Chain
	writer   processor.AuthorisationWriter
	consents ConsentLifecycle
	payments PaymentLifecycle
	settings config.SettingsProvider
	now      func() time.Time
	logger   *log.Logger
}

func newAuthorisationService(registry *stores.StoreRegistry, chain *processor.Chain, writer processor.AuthorisationWriter,
	consents ConsentLifecycle, payments PaymentLifecycle, settings config.SettingsProvider,
	now func() time.Time) AuthorisationService {
	return &authorisationService{
		stores:   registry,
		chain:    chain,
		writer:   writer,
		consents: consents,
		payments: payments,
		settings: settings,
		now:      now,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuthorisationService")),
	}
}

// parent is the consent or payment an authorisation belongs to.
type parent struct {
	id         string
	psuData    []consentmodel.PsuIdData
	multilevel bool
	acceptsSca bool
	expired    bool
}

// CreateAuthorisation starts SCA for one PSU. Earlier unfinished attempts of the
// same PSU are failed so that only one authorisation per PSU is active.
func (s *authorisationService) CreateAuthorisation(ctx context.Context, orgID, parentID string,
	authType model.AuthorisationType, req model.CreateAuthorisationRequest) (*model.CreateAuthorisationResponse, *serviceerror.ServiceError) {
	if err := validator.ValidateCreateRequest(req); err != nil {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, err.Error())
	}
	p, svcErr := s.loadParent(ctx, orgID, parentID, authType)
	if svcErr != nil {
		return nil, svcErr
	}
	if err := validator.CheckPsu(p.psuData, req.PsuData); err != nil {
		return nil, serviceerror.WithMessageCode(serviceerror.ScaError, codes.PsuCredentialsInvalid, err.Error())
	}

	existing, err := s.authorisationStore().GetByParent(ctx, parentID, authType, orgID)
	if err != nil {
		return nil, s.dbError("failed to list authorisations", err)
	}
	// A PSU that already completed SCA is a conflict whatever the parent status became.
	if err := validator.CheckNotAlreadyAuthorised(existing, req.PsuData); err != nil {
		return nil, serviceerror.WithMessageCode(serviceerror.ScaError, codes.StatusInvalid, err.Error())
	}
	if svcErr := checkParent(p, authType); svcErr != nil {
		return nil, svcErr
	}

	nowMillis := utils.TimeToMillis(s.now())
	authorisation := &model.Authorisation{
		AuthorisationID:                  utils.GenerateUUID(),
		OrgID:                            orgID,
		ParentID:                         parentID,
		Type:                             authType,
		ScaStatus:                        model.ScaStatusReceived,
		ScaApproach:                      s.resolveApproach(req.ScaApproach),
		PsuData:                          req.PsuData,
		RedirectURI:                      firstNonEmpty(req.RedirectURI, s.settings.ScaRedirectOkURL()),
		NokRedirectURI:                   firstNonEmpty(req.NokRedirectURI, s.settings.ScaRedirectNokURL()),
		RedirectURLExpirationTimestamp:   expiresAt(nowMillis, s.settings.RedirectURLExpirationTimeMs()),
		AuthorisationExpirationTimestamp: expiresAt(nowMillis, s.settings.AuthorisationExpirationTimeMs()),
		CreationTimestamp:                nowMillis,
		StatusChangeTimestamp:            nowMillis,
	}
	if req.PsuData.IsNotEmpty() {
		authorisation.ScaStatus = model.ScaStatusPsuIdentified
	}

	authStore := s.authorisationStore()
	var queries []func(tx dbmodel.TxInterface) error
	for _, old := range existing {
		if old.ScaStatus.IsFinalised() || req.PsuData.IsEmpty() || !psu.Equals(old.PsuData, req.PsuData) {
			continue
		}
		old := old
		old.SetStatus(model.ScaStatusFailed, nowMillis)
		queries = append(queries, func(tx dbmodel.TxInterface) error {
			return authStore.Update(tx, old)
		})
	}
	queries = append(queries, func(tx dbmodel.TxInterface) error {
		return authStore.Create(tx, authorisation)
	})
	if err := s.stores.ExecuteTransaction(queries); err != nil {
		return nil, s.dbError("failed to create authorisation", err)
	}

	s.logger.Info("Authorisation created",
		log.String("authorisation_id", authorisation.AuthorisationID),
		log.String("parent_id", parentID),
		log.String("type", string(authType)),
		log.String("approach", string(authorisation.ScaApproach)),
		log.Int("superseded", len(queries)-1))

	return &model.CreateAuthorisationResponse{
		AuthorisationID: authorisation.AuthorisationID,
		ScaStatus:       authorisation.ScaStatus,
		ScaApproach:     authorisation.ScaApproach,
		RedirectID:      authorisation.AuthorisationID,
		RedirectURI:     authorisation.RedirectURI,
		NokRedirectURI:  authorisation.NokRedirectURI,
	}, nil
}

// UpdatePsuData runs the SCA step for the current status of the authorisation and
// advances the consent or payment once SCA succeeded.
func (s *authorisationService) UpdatePsuData(ctx context.Context, orgID, parentID, authorisationID string,
	authType model.AuthorisationType, req model.UpdatePsuDataRequest) (*model.UpdatePsuDataResponse, *serviceerror.ServiceError) {
	authorisation, svcErr := s.loadChild(ctx, orgID, parentID, authorisationID, authType)
	if svcErr != nil {
		return nil, svcErr
	}
	p, svcErr := s.loadParent(ctx, orgID, parentID, authType)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := checkParent(p, authType); svcErr != nil {
		return nil, svcErr
	}

	if !authorisation.ScaStatus.IsFinalised() {
		if authorisation.IsAuthorisationExpired(utils.TimeToMillis(s.now())) {
			if svcErr := s.fail(ctx, authorisation); svcErr != nil {
				return nil, svcErr
			}
			return nil, serviceerror.WithMessageCode(serviceerror.ScaError, codes.ResourceExpired, "authorisation has expired")
		}
		if req.PsuData.IsNotEmpty() && !psuMatches(authorisation, p, req.PsuData) {
			if svcErr := s.fail(ctx, authorisation); svcErr != nil {
				return nil, svcErr
			}
			return nil, serviceerror.WithMessageCode(serviceerror.ScaError, codes.PsuCredentialsInvalid,
				"PSU does not match the authorisation")
		}
	}

	from := authorisation.ScaStatus
	resp, err := s.chain.Apply(ctx, processor.NewRequest(authorisation, req))
	if err != nil {
		var cfgErr *processor.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.logger.Error("SCA chain cannot serve the authorisation",
				log.String("authorisation_id", authorisationID), log.Error(err))
			return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, cfgErr.Error())
		}
		return nil, s.dbError("failed to update authorisation", err)
	}
	if resp.HasError() {
		return nil, resp.Error
	}

	if from != resp.ScaStatus && resp.ScaStatus.IsSuccessful() {
		if svcErr := s.advanceParent(ctx, orgID, authorisation, p); svcErr != nil {
			return nil, svcErr
		}
	}

	return &model.UpdatePsuDataResponse{
		AuthorisationID:     authorisation.AuthorisationID,
		ScaStatus:           resp.ScaStatus,
		PsuData:             authorisation.PsuData,
		ChosenScaMethod:     resp.ChosenMethod,
		AvailableScaMethods: resp.AvailableMethods,
		ChallengeData:       resp.ChallengeData,
		PsuMessage:          resp.PsuMessage,
	}, nil
}

// GetScaStatus returns the SCA status after failing an expired authorisation.
func (s *authorisationService) GetScaStatus(ctx context.Context, orgID, parentID, authorisationID string,
	authType model.AuthorisationType) (*model.ScaStatusResponse, *serviceerror.ServiceError) {
	authorisation, svcErr := s.loadChild(ctx, orgID, parentID, authorisationID, authType)
	if svcErr != nil {
		return nil, svcErr
	}
	if !authorisation.ScaStatus.IsFinalised() && authorisation.IsAuthorisationExpired(utils.TimeToMillis(s.now())) {
		if svcErr := s.fail(ctx, authorisation); svcErr != nil {
			return nil, svcErr
		}
	}
	return &model.ScaStatusResponse{AuthorisationID: authorisation.AuthorisationID, ScaStatus: authorisation.ScaStatus}, nil
}

// GetAuthorisationByRedirectID resolves the redirect link the PSU followed. An
// expired authorisation or link fails the authorisation and is reported with a
// typed error carrying the NOK redirect URI.
func (s *authorisationService) GetAuthorisationByRedirectID(ctx context.Context, orgID,
	redirectID string) (*model.AuthorisationResponse, error) {
	authorisation, svcErr := s.load(ctx, orgID, redirectID)
	if svcErr != nil {
		return nil, &LookupError{ServiceError: svcErr}
	}

	if !authorisation.ScaStatus.IsFinalised() {
		nowMillis := utils.TimeToMillis(s.now())
		if authorisation.IsAuthorisationExpired(nowMillis) {
			if svcErr := s.fail(ctx, authorisation); svcErr != nil {
				return nil, &LookupError{ServiceError: svcErr}
			}
			return nil, &AuthorisationExpiredError{
				AuthorisationID: authorisation.AuthorisationID,
				NokRedirectURI:  authorisation.NokRedirectURI,
			}
		}
		if authorisation.IsRedirectURLExpired(nowMillis) {
			if svcErr := s.fail(ctx, authorisation); svcErr != nil {
				return nil, &LookupError{ServiceError: svcErr}
			}
			return nil, &RedirectURLExpiredError{
				AuthorisationID: authorisation.AuthorisationID,
				NokRedirectURI:  authorisation.NokRedirectURI,
			}
		}
	}

	response := authorisation.ToResponse()
	return &response, nil
}

// UpdateScaStatus records the progress the ASPSP pages report for a redirect
// authorisation. It reports false when the authorisation is finalised or the move
// would go back to an earlier step. An expired authorisation is failed and
// reported as RESOURCE_EXPIRED.
func (s *authorisationService) UpdateScaStatus(ctx context.Context, orgID, authorisationID string,
	status model.ScaStatus) (bool, *serviceerror.ServiceError) {
	if !status.IsValid() {
		return false, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError,
			fmt.Sprintf("unknown SCA status %q", status))
	}
	authorisation, svcErr := s.load(ctx, orgID, authorisationID)
	if svcErr != nil {
		return false, svcErr
	}
	from := authorisation.ScaStatus
	if from.IsFinalised() {
		return false, nil
	}
	if authorisation.IsAuthorisationExpired(utils.TimeToMillis(s.now())) {
		if svcErr := s.fail(ctx, authorisation); svcErr != nil {
			return false, svcErr
		}
		return false, serviceerror.WithMessageCode(serviceerror.ScaError, codes.ResourceExpired, "authorisation has expired")
	}
	if !from.CanMoveTo(status) {
		s.logger.Debug("SCA status move refused",
			log.String("authorisation_id", authorisationID),
			log.String("from", string(from)),
			log.String("to", string(status)))
		return false, nil
	}

	authorisation.SetStatus(status, utils.TimeToMillis(s.now()))
	if err := s.writer.SaveAuthorisation(ctx, authorisation); err != nil {
		return false, s.dbError("failed to update SCA status", err)
	}
	s.recordTransition(authorisation, from)

	if status.IsSuccessful() && from != status {
		p, svcErr := s.loadParent(ctx, orgID, authorisation.ParentID, authorisation.Type)
		if svcErr != nil {
			return false, svcErr
		}
		if svcErr := s.advanceParent(ctx, orgID, authorisation, p); svcErr != nil {
			return false, svcErr
		}
	}
	return true, nil
}

// UpdateAuthenticationMethod stores the SCA method the PSU picked on the ASPSP pages.
func (s *authorisationService) UpdateAuthenticationMethod(ctx context.Context, orgID, authorisationID,
	methodID string) (bool, *serviceerror.ServiceError) {
	if methodID == "" {
		return false, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError,
			"authenticationMethodId is required")
	}
	authorisation, svcErr := s.load(ctx, orgID, authorisationID)
	if svcErr != nil {
		return false, svcErr
	}
	if authorisation.ScaStatus.IsFinalised() {
		return false, nil
	}
	authorisation.AuthenticationMethodID = methodID
	if err := s.writer.SaveAuthorisation(ctx, authorisation); err != nil {
		return false, s.dbError("failed to update authentication method", err)
	}
	return true, nil
}

// GetPsuDataAuthorisations lists which PSU holds which authorisation of a resource.
func (s *authorisationService) GetPsuDataAuthorisations(ctx context.Context, orgID, parentID string,
	authType model.AuthorisationType) ([]model.PsuDataAuthorisation, *serviceerror.ServiceError) {
	authorisations, err := s.authorisationStore().GetByParent(ctx, parentID, authType, orgID)
	if err != nil {
		return nil, s.dbError("failed to list authorisations", err)
	}
	result := make([]model.PsuDataAuthorisation, 0, len(authorisations))
	for _, authorisation := range authorisations {
		if authorisation.PsuData.IsEmpty() {
			continue
		}
		result = append(result, model.PsuDataAuthorisation{
			PsuID:           authorisation.PsuData.PsuID,
			AuthorisationID: authorisation.AuthorisationID,
			ScaStatus:       authorisation.ScaStatus,
		})
	}
	return result, nil
}

// advanceParent moves the consent or payment forward after one PSU passed SCA.
// With multilevel SCA the resource only becomes fully authorised once every PSU
// passed.
func (s *authorisationService) advanceParent(ctx context.Context, orgID string, authorisation *model.Authorisation,
	p *parent) *serviceerror.ServiceError {
	psuData := authorisation.PsuData
	owners := p.psuData
	if psuData.IsNotEmpty() {
		owners = psu.Merge(owners, psuData)
	}

	switch authorisation.Type {
	case model.AuthorisationTypeAis:
		if psuData.IsNotEmpty() {
			if _, svcErr := s.consents.UpdatePsuDataInConsent(ctx, orgID, p.id, psuData); svcErr != nil {
				return svcErr
			}
		}
		complete, svcErr := s.allAuthorised(ctx, orgID, authorisation, p, owners)
		if svcErr != nil {
			return svcErr
		}
		if complete {
			_, svcErr = s.consents.ConfirmConsent(ctx, orgID, p.id)
		} else {
			_, svcErr = s.consents.AuthorisePartially(ctx, orgID, p.id)
		}
		return svcErr

	case model.AuthorisationTypePisCreation:
		if psuData.IsNotEmpty() {
			if _, svcErr := s.payments.UpdatePsuDataInPayment(ctx, orgID, p.id, psuData); svcErr != nil {
				return svcErr
			}
		}
		complete, svcErr := s.allAuthorised(ctx, orgID, authorisation, p, owners)
		if svcErr != nil {
			return svcErr
		}
		status := paymentmodel.TransactionStatusAcceptedTechnicalValid
		if !complete {
			status = paymentmodel.TransactionStatusPartiallyAccepted
		}
		_, svcErr = s.payments.UpdatePaymentStatus(ctx, orgID, p.id, status)
		return svcErr

	case model.AuthorisationTypePisCancellation:
		_, svcErr := s.payments.UpdatePaymentStatus(ctx, orgID, p.id, paymentmodel.TransactionStatusCancelled)
		return svcErr
	}
	return nil
}

// allAuthorised reports whether every PSU of the resource holds a successful
// authorisation. Without multilevel SCA one success is enough.
func (s *authorisationService) allAuthorised(ctx context.Context, orgID string, authorisation *model.Authorisation,
	p *parent, owners []consentmodel.PsuIdData) (bool, *serviceerror.ServiceError) {
	if !p.multilevel || len(owners) <= 1 {
		return true, nil
	}
	authorisations, err := s.authorisationStore().GetByParent(ctx, p.id, authorisation.Type, orgID)
	if err != nil {
		return false, s.dbError("failed to list authorisations", err)
	}
	for _, owner := range owners {
		authorised := false
		for _, a := range authorisations {
			if a.ScaStatus.IsSuccessful() && psu.Equals(a.PsuData, owner) {
				authorised = true
				break
			}
		}
		if !authorised {
			return false, nil
		}
	}
	return true, nil
}

func (s *authorisationService) loadParent(ctx context.Context, orgID, parentID string,
	authType model.AuthorisationType) (*parent, *serviceerror.ServiceError) {
	if authType == model.AuthorisationTypeAis {
		consent, svcErr := s.consents.GetConsent(ctx, orgID, parentID)
		if svcErr != nil {
			return nil, svcErr
		}
		return &parent{
			id:         consent.ConsentID,
			psuData:    consent.PsuData,
			multilevel: consent.MultilevelScaRequired,
			acceptsSca: consent.ConsentStatus == consentmodel.ConsentStatusReceived ||
				consent.ConsentStatus == consentmodel.ConsentStatusPartiallyAuthorised,
			expired: consent.ConsentStatus == consentmodel.ConsentStatusExpired,
		}, nil
	}

	payment, svcErr := s.payments.GetPayment(ctx, orgID, parentID)
	if svcErr != nil {
		return nil, svcErr
	}
	p := &parent{
		id:         payment.PaymentID,
		psuData:    payment.PsuData,
		multilevel: payment.MultilevelScaRequired,
		acceptsSca: payment.TransactionStatus.AwaitsAuthorisation(),
	}
	if authType == model.AuthorisationTypePisCancellation {
		p.acceptsSca = !payment.TransactionStatus.IsFinalised()
	}
	return p, nil
}

func checkParent(p *parent, authType model.AuthorisationType) *serviceerror.ServiceError {
	if p.expired {
		return serviceerror.WithMessageCode(serviceerror.ScaError, codes.ConsentExpired,
			fmt.Sprintf("consent %s has expired", p.id))
	}
	if !p.acceptsSca {
		return serviceerror.WithMessageCode(serviceerror.ScaError, codes.ServiceBlocked,
			fmt.Sprintf("%s authorisation is not possible in the current status of %s", authType, p.id))
	}
	return nil
}

// psuMatches accepts the PSU already bound to the authorisation or, for an
// anonymous authorisation, any PSU of the resource.
func psuMatches(authorisation *model.Authorisation, p *parent, candidate consentmodel.PsuIdData) bool {
	if authorisation.PsuData.IsNotEmpty() {
		return psu.Equals(authorisation.PsuData, candidate)
	}
	return validator.CheckPsu(p.psuData, candidate) == nil
}

// loadChild loads an authorisation and checks it belongs to the given resource.
func (s *authorisationService) loadChild(ctx context.Context, orgID, parentID, authorisationID string,
	authType model.AuthorisationType) (*model.Authorisation, *serviceerror.ServiceError) {
	authorisation, svcErr := s.load(ctx, orgID, authorisationID)
	if svcErr != nil {
		return nil, svcErr
	}
	if authorisation.ParentID != parentID || authorisation.Type != authType {
		return nil, serviceerror.WithMessageCode(serviceerror.LogicalError, codes.ResourceUnknown,
			fmt.Sprintf("authorisation %s does not belong to %s", authorisationID, parentID))
	}
	return authorisation, nil
}

func (s *authorisationService) load(ctx context.Context, orgID, authorisationID string) (*model.Authorisation, *serviceerror.ServiceError) {
	if authorisationID == "" {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "authorisation ID is required")
	}
	authorisation, err := s.authorisationStore().GetByID(ctx, authorisationID, orgID)
	if err != nil {
		return nil, s.dbError("failed to read authorisation", err)
	}
	if authorisation == nil {
		return nil, serviceerror.WithMessageCode(serviceerror.LogicalError, codes.ResourceUnknown,
			fmt.Sprintf("authorisation %s not found", authorisationID))
	}
	return authorisation, nil
}

// fail moves the authorisation to FAILED and persists it.
func (s *authorisationService) fail(ctx context.Context, authorisation *model.Authorisation) *serviceerror.ServiceError {
	from := authorisation.ScaStatus
	authorisation.SetStatus(model.ScaStatusFailed, utils.TimeToMillis(s.now()))
	if err := s.writer.SaveAuthorisation(ctx, authorisation); err != nil {
		return s.dbError("failed to fail authorisation", err)
	}
	s.recordTransition(authorisation, from)
	return nil
}

func (s *authorisationService) recordTransition(authorisation *model.Authorisation, from model.ScaStatus) {
	if from == authorisation.ScaStatus {
		return
	}
	metrics.ScaTransitions.WithLabelValues(string(authorisation.ScaApproach), string(from), string(authorisation.ScaStatus)).Inc()
	s.logger.Info("SCA status changed",
		log.String("authorisation_id", authorisation.AuthorisationID),
		log.String("from", string(from)),
		log.String("to", string(authorisation.ScaStatus)))
}

func (s *authorisationService) resolveApproach(requested string) model.ScaApproach {
	if approach, ok := model.ParseScaApproach(requested); ok && s.settings.IsScaApproachSupported(string(approach)) {
		return approach
	}
	approach, ok := model.ParseScaApproach(s.settings.DefaultScaApproach())
	if !ok {
		return model.ScaApproachRedirect
	}
	return approach
}

func (s *authorisationService) dbError(message string, err error) *serviceerror.ServiceError {
	s.logger.Error(message, log.Error(err))
	return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("%s: %v", message, err))
}

func (s *authorisationService) authorisationStore() AuthorisationStore {
	return s.stores.Authorisation.(AuthorisationStore)
}

func expiresAt(nowMillis, windowMs int64) int64 {
	if windowMs <= 0 {
		return 0
	}
	return nowMillis + windowMs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
