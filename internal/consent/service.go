package consent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/checksum"
	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/consent/validator"
	"github.com/wso2/psd2-consent-mgt/internal/psu"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/metrics"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
	"github.com/wso2/psd2-consent-mgt/internal/usage"
)

// ConsentService defines the exported service interface
type ConsentService interface {
	CreateConsent(ctx context.Context, orgID string, req model.CreateConsentRequest) (*model.CreateConsentResponse, *serviceerror.ServiceError)
	GetConsent(ctx context.Context, orgID, consentID string) (*model.ConsentResponse, *serviceerror.ServiceError)
	GetConsentStatus(ctx context.Context, orgID, consentID string) (*model.ConsentStatusResponse, *serviceerror.ServiceError)
	UpdateConsentStatus(ctx context.Context, orgID, consentID string, status model.ConsentStatus) *serviceerror.ServiceError
	FindAndTerminateOldConsents(ctx context.Context, orgID, newConsentID string) (bool, *serviceerror.ServiceError)
	UpdateAspspAccountAccess(ctx context.Context, orgID, consentID string, req model.UpdateAccessRequest) (bool, *serviceerror.ServiceError)
	UpdateMultilevelScaRequired(ctx context.Context, orgID, consentID string, required bool) (bool, *serviceerror.ServiceError)
	ConfirmConsent(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError)
	RejectConsent(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError)
	RevokeConsent(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError)
	AuthorisePartially(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError)
	GetConsentsForPsu(ctx context.Context, orgID string, psuData model.PsuIdData) ([]model.ConsentResponse, *serviceerror.ServiceError)
	UpdatePsuDataInConsent(ctx context.Context, orgID, consentID string, psuData model.PsuIdData) (bool, *serviceerror.ServiceError)
	RecordUsage(ctx context.Context, orgID, consentID, requestURI string) *serviceerror.ServiceError
}

// consentService implements the ConsentService interface
type consentService struct {
	stores    *stores.StoreRegistry
	checksums *checksum.Registry
	settings  config.SettingsProvider
	usage     usage.UsageTracker
	now       func() time.Time
	logger    *log.Logger
}

// newConsentService creates a new consent service
func newConsentService(registry *stores.StoreRegistry, checksums *checksum.Registry, settings config.SettingsProvider,
	tracker usage.UsageTracker, now func() time.Time) ConsentService {
	return &consentService{
		stores:    registry,
		checksums: checksums,
		settings:  settings,
		usage:     tracker,
		now:       now,
		logger:    log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ConsentService")),
	}
}

// CreateConsent stores a new consent in RECEIVED with its validity clamped to the ASPSP lifetime.
func (s *consentService) CreateConsent(ctx context.Context, orgID string,
	req model.CreateConsentRequest) (*model.CreateConsentResponse, *serviceerror.ServiceError) {
	if req.AllowedFrequencyPerDay == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.LogicalError, "allowed frequency per day is not set")
	}
	today := s.today()
	if err := validator.ValidateConsentCreateRequest(req, s.settings.PsuInInitialRequestMandated(), today); err != nil {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, err.Error())
	}
	requestedValidUntil, _ := utils.ParseDate(req.ValidUntil)

	nowMillis := utils.TimeToMillis(s.now())
	psuData := make([]model.PsuIdData, 0, len(req.PsuData))
	for _, p := range req.PsuData {
		psuData = psu.Merge(psuData, p)
	}

	consent := &model.Consent{
		ConsentID:                utils.GenerateUUID(),
		OrgID:                    orgID,
		TppID:                    req.TppID,
		Status:                   model.ConsentStatusReceived,
		RecurringIndicator:       req.RecurringIndicator,
		CombinedServiceIndicator: req.CombinedServiceIndicator,
		MultilevelScaRequired:    req.MultilevelScaRequired || s.settings.MultilevelScaRequired(),
		ValidUntil:               clampValidUntil(requestedValidUntil, today, s.settings.MaxConsentValidityDays()),
		LastActionDate:           today,
		FrequencyPerDay:          *req.AllowedFrequencyPerDay,
		TppFrequencyPerDay:       req.FrequencyPerDay,
		TppAccess:                req.Access,
		AspspAccess:              req.AspspAccess,
		PsuData:                  psuData,
		CreationTimestamp:        nowMillis,
		StatusChangeTimestamp:    nowMillis,
	}
	consent.Checksum = s.checksums.Calculate(consent)

	var createdID string
	err := s.stores.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			id, err := s.consentStore().Create(tx, consent)
			createdID = id
			return err
		},
	})
	if err != nil {
		s.logger.Error("Failed to create consent", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to create consent: %v", err))
	}
	if createdID == "" {
		s.logger.Error("Consent store returned no identifier")
		return nil, serviceerror.CustomServiceError(serviceerror.TechnicalError, "consent could not be stored")
	}
	consent.MarkLoaded()

	s.logger.Info("Consent created",
		log.String("consent_id", createdID),
		log.String("valid_until", utils.FormatDate(consent.ValidUntil)))

	return &model.CreateConsentResponse{
		ConsentID: createdID,
		Consent:   consent.ToResponse(nil),
	}, nil
}

// GetConsent returns the consent after applying expiry, with its remaining usage per URI.
func (s *consentService) GetConsent(ctx context.Context, orgID, consentID string) (*model.ConsentResponse, *serviceerror.ServiceError) {
	consent, svcErr := s.loadActual(ctx, orgID, consentID)
	if svcErr != nil {
		return nil, svcErr
	}

	var counter map[string]int
	if s.usage != nil {
		var usageErr *serviceerror.ServiceError
		counter, usageErr = s.usage.GetUsageCounter(ctx, orgID, consentID, consent.FrequencyPerDay)
		if usageErr != nil {
			s.logger.Warn("Usage counter unavailable", log.String("consent_id", consentID),
				log.String("error", usageErr.ErrorDescription))
		}
	}
	response := consent.ToResponse(counter)
	return &response, nil
}

// GetConsentStatus returns the status after applying expiry.
func (s *consentService) GetConsentStatus(ctx context.Context, orgID, consentID string) (*model.ConsentStatusResponse, *serviceerror.ServiceError) {
	consent, svcErr := s.loadActual(ctx, orgID, consentID)
	if svcErr != nil {
		return nil, svcErr
	}
	return &model.ConsentStatusResponse{ConsentID: consent.ConsentID, ConsentStatus: consent.Status}, nil
}

// UpdateConsentStatus moves a non-finalised consent to status.
func (s *consentService) UpdateConsentStatus(ctx context.Context, orgID, consentID string,
	status model.ConsentStatus) *serviceerror.ServiceError {
	if err := validator.ValidateConsentStatus(status); err != nil {
		return serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, err.Error())
	}
	_, svcErr := s.changeStatus(ctx, orgID, consentID, status)
	return svcErr
}

// FindAndTerminateOldConsents closes the earlier consents of the same TPP whose PSU
// set equals the new consent's. It reports whether anything was terminated.
func (s *consentService) FindAndTerminateOldConsents(ctx context.Context, orgID, newConsentID string) (bool, *serviceerror.ServiceError) {
	newConsent, svcErr := s.load(ctx, orgID, newConsentID)
	if svcErr != nil {
		return false, svcErr
	}
	if newConsent.IsOneAccessType() {
		return false, nil
	}
	if len(newConsent.PsuData) == 0 || newConsent.TppID == "" {
		return false, serviceerror.CustomServiceError(serviceerror.LogicalError,
			"consent has no PSU data or TPP and cannot supersede other consents")
	}

	candidates, err := s.consentStore().FindByTppAndStatuses(ctx, newConsent.TppID, orgID, newConsentID,
		[]model.ConsentStatus{model.ConsentStatusReceived, model.ConsentStatusPartiallyAuthorised, model.ConsentStatusValid})
	if err != nil {
		s.logger.Error("Failed to find old consents", log.String("consent_id", newConsentID), log.Error(err))
		return false, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to find old consents: %v", err))
	}

	nowMillis := utils.TimeToMillis(s.now())
	today := s.today()
	oldConsents := make([]*model.Consent, 0, len(candidates))
	transitions := make([][2]model.ConsentStatus, 0, len(candidates))
	for _, old := range candidates {
		if !psu.EqualsExactly(old.PsuData, newConsent.PsuData) {
			continue
		}
		from := old.Status
		to := from.TerminalStatusOnSupersede()
		old.SetStatus(to, nowMillis)
		old.LastActionDate = today
		oldConsents = append(oldConsents, old)
		transitions = append(transitions, [2]model.ConsentStatus{from, to})
	}
	if len(oldConsents) == 0 {
		return false, nil
	}

	if err := s.save(ctx, "terminate_old", oldConsents...); err != nil {
		return false, s.saveError(err, newConsentID)
	}
	for i, old := range oldConsents {
		s.recordTransition(old.ConsentID, transitions[i][0], transitions[i][1])
	}
	s.logger.Info("Terminated superseded consents",
		log.String("consent_id", newConsentID),
		log.Int("terminated_count", len(oldConsents)))
	return true, nil
}

// UpdateAspspAccountAccess replaces the bank-granted access and resets the usage counters.
// It reports false when the consent no longer accepts access changes or a concurrent
// write was detected.
func (s *consentService) UpdateAspspAccountAccess(ctx context.Context, orgID, consentID string,
	req model.UpdateAccessRequest) (bool, *serviceerror.ServiceError) {
	if err := validator.ValidateAccessUpdateRequest(req); err != nil {
		return false, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, err.Error())
	}
	consent, svcErr := s.loadActual(ctx, orgID, consentID)
	if svcErr != nil {
		return false, svcErr
	}
	if consent.Status == model.ConsentStatusValid || consent.Status.IsFinalised() {
		s.logger.Debug("Access update refused for consent status",
			log.String("consent_id", consentID), log.String("status", string(consent.Status)))
		return false, nil
	}

	today := s.today()
	if req.ValidUntil != "" {
		validUntil, _ := utils.ParseDate(req.ValidUntil)
		if validUntil.Before(today) {
			return false, nil
		}
		consent.ValidUntil = validUntil
	}
	if req.FrequencyPerDay != nil {
		consent.FrequencyPerDay = *req.FrequencyPerDay
	}
	consent.AspspAccess = req.Access
	consent.LastActionDate = today

	err := s.saveWith(ctx, "update_access", []*model.Consent{consent}, func(tx dbmodel.TxInterface) error {
		if s.usage == nil {
			return nil
		}
		return s.usage.Reset(tx, orgID, consentID)
	})
	if err != nil {
		var wrongChecksum *WrongChecksumError
		if errors.As(err, &wrongChecksum) {
			return false, nil
		}
		return false, s.saveError(err, consentID)
	}
	if s.usage != nil {
		s.usage.Invalidate(ctx, orgID, consentID)
	}
	return true, nil
}

// UpdateMultilevelScaRequired sets whether every PSU of the consent must authorise.
func (s *consentService) UpdateMultilevelScaRequired(ctx context.Context, orgID, consentID string,
	required bool) (bool, *serviceerror.ServiceError) {
	consent, svcErr := s.loadActual(ctx, orgID, consentID)
	if svcErr != nil {
		return false, svcErr
	}
	if consent.Status.IsFinalised() {
		return false, nil
	}
	consent.MultilevelScaRequired = required
	if err := s.save(ctx, "update_multilevel_sca", consent); err != nil {
		return false, s.saveError(err, consentID)
	}
	return true, nil
}

// ConfirmConsent makes the consent VALID and closes the consents it supersedes.
func (s *consentService) ConfirmConsent(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError) {
	ok, svcErr := s.psuStatusChange(ctx, orgID, consentID, model.ConsentStatusValid)
	if !ok || svcErr != nil {
		return ok, svcErr
	}
	if _, svcErr := s.FindAndTerminateOldConsents(ctx, orgID, consentID); svcErr != nil {
		s.logger.Warn("Consent confirmed but old consents were not terminated",
			log.String("consent_id", consentID), log.String("error", svcErr.ErrorDescription))
	}
	return true, nil
}

func (s *consentService) RejectConsent(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError) {
	return s.psuStatusChange(ctx, orgID, consentID, model.ConsentStatusRejected)
}

func (s *consentService) RevokeConsent(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError) {
	return s.psuStatusChange(ctx, orgID, consentID, model.ConsentStatusRevokedByPsu)
}

func (s *consentService) AuthorisePartially(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError) {
	return s.psuStatusChange(ctx, orgID, consentID, model.ConsentStatusPartiallyAuthorised)
}

// GetConsentsForPsu lists the consents bound to psuData after applying expiry to each.
func (s *consentService) GetConsentsForPsu(ctx context.Context, orgID string,
	psuData model.PsuIdData) ([]model.ConsentResponse, *serviceerror.ServiceError) {
	if psuData.IsEmpty() {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "PSU-ID is required")
	}
	consents, err := s.consentStore().FindByPsuID(ctx, psuData.PsuID, orgID)
	if err != nil {
		s.logger.Error("Failed to list consents for PSU", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list consents: %v", err))
	}

	responses := make([]model.ConsentResponse, 0, len(consents))
	for _, consent := range consents {
		if !psu.Contains(consent.PsuData, psuData) {
			continue
		}
		if svcErr := s.applyExpiry(ctx, consent); svcErr != nil {
			return nil, svcErr
		}
		responses = append(responses, consent.ToResponse(nil))
	}
	return responses, nil
}

// UpdatePsuDataInConsent adds psuData to the PSUs of a non-finalised consent.
func (s *consentService) UpdatePsuDataInConsent(ctx context.Context, orgID, consentID string,
	psuData model.PsuIdData) (bool, *serviceerror.ServiceError) {
	if psuData.IsEmpty() {
		return false, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "PSU-ID is required")
	}
	consent, svcErr := s.loadActual(ctx, orgID, consentID)
	if svcErr != nil {
		return false, svcErr
	}
	if consent.Status.IsFinalised() {
		return false, nil
	}
	if psu.Contains(consent.PsuData, psuData) {
		return true, nil
	}
	consent.PsuData = psu.Merge(consent.PsuData, psuData)
	if err := s.save(ctx, "update_psu_data", consent); err != nil {
		return false, s.saveError(err, consentID)
	}
	return true, nil
}

// RecordUsage counts one access through requestURI on a VALID consent within its daily allowance.
func (s *consentService) RecordUsage(ctx context.Context, orgID, consentID, requestURI string) *serviceerror.ServiceError {
	consent, svcErr := s.loadActual(ctx, orgID, consentID)
	if svcErr != nil {
		return svcErr
	}
	switch consent.Status {
	case model.ConsentStatusValid:
	case model.ConsentStatusExpired:
		return serviceerror.WithMessageCode(serviceerror.LogicalError, codes.ConsentExpired, "consent is expired")
	default:
		return serviceerror.WithMessageCode(serviceerror.LogicalError, codes.StatusInvalid,
			fmt.Sprintf("consent in status %s cannot be used", consent.Status))
	}
	if s.usage == nil {
		return nil
	}
	limit := 0
	if consent.RecurringIndicator {
		limit = consent.FrequencyPerDay
	}
	return s.usage.Increment(ctx, orgID, consentID, requestURI, limit)
}

// psuStatusChange reports lifecycle refusals as false rather than as an error.
func (s *consentService) psuStatusChange(ctx context.Context, orgID, consentID string,
	status model.ConsentStatus) (bool, *serviceerror.ServiceError) {
	_, svcErr := s.changeStatus(ctx, orgID, consentID, status)
	if svcErr == nil {
		return true, nil
	}
	if svcErr.Code == serviceerror.LogicalError.Code && svcErr.MessageCode == codes.StatusInvalid {
		return false, nil
	}
	return false, svcErr
}

func (s *consentService) changeStatus(ctx context.Context, orgID, consentID string,
	status model.ConsentStatus) (*model.Consent, *serviceerror.ServiceError) {
	consent, svcErr := s.loadActual(ctx, orgID, consentID)
	if svcErr != nil {
		return nil, svcErr
	}
	from := consent.Status
	if !from.CanTransitionTo(status) {
		s.logger.Debug("Consent status change refused",
			log.String("consent_id", consentID),
			log.String("from", string(from)),
			log.String("to", string(status)))
		return nil, serviceerror.WithMessageCode(serviceerror.LogicalError, codes.StatusInvalid,
			fmt.Sprintf("consent in status %s cannot move to %s", from, status))
	}

	consent.LastActionDate = s.today()
	consent.SetStatus(status, utils.TimeToMillis(s.now()))
	if status == model.ConsentStatusPartiallyAuthorised {
		consent.MultilevelScaRequired = true
	}
	if err := s.save(ctx, "update_status", consent); err != nil {
		return nil, s.saveError(err, consentID)
	}
	s.recordTransition(consentID, from, status)
	return consent, nil
}

// loadActual reads a consent and applies both expiry rules to it.
func (s *consentService) loadActual(ctx context.Context, orgID, consentID string) (*model.Consent, *serviceerror.ServiceError) {
	consent, svcErr := s.load(ctx, orgID, consentID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := s.applyExpiry(ctx, consent); svcErr != nil {
		return nil, svcErr
	}
	return consent, nil
}

func (s *consentService) load(ctx context.Context, orgID, consentID string) (*model.Consent, *serviceerror.ServiceError) {
	if consentID == "" {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "consent ID is required")
	}
	consent, err := s.consentStore().GetByID(ctx, consentID, orgID)
	if err != nil {
		s.logger.Error("Failed to read consent", log.String("consent_id", consentID), log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to read consent: %v", err))
	}
	if consent == nil {
		return nil, serviceerror.WithMessageCode(serviceerror.LogicalError, codes.ConsentUnknown,
			fmt.Sprintf("consent %s not found", consentID))
	}
	return consent, nil
}

// applyExpiry rejects consents that were not confirmed in time and then expires
// consents past their validUntil. A consent rejected by the first rule is finalised,
// so the second rule does not apply to it.
func (s *consentService) applyExpiry(ctx context.Context, consent *model.Consent) *serviceerror.ServiceError {
	now := s.now()
	nowMillis := utils.TimeToMillis(now)
	today := s.today()

	if consent.IsConfirmationExpired(nowMillis, s.settings.NotConfirmedConsentExpirationTimeMs()) {
		from := consent.Status
		consent.SetStatus(model.ConsentStatusRejected, nowMillis)
		consent.LastActionDate = today
		if err := s.save(ctx, "confirmation_expiry", consent); err != nil {
			return s.saveError(err, consent.ConsentID)
		}
		metrics.ExpiryRewrites.WithLabelValues("consent", "confirmation").Inc()
		s.recordTransition(consent.ConsentID, from, model.ConsentStatusRejected)
		return nil
	}

	if consent.ShouldBeExpired(today) {
		from := consent.Status
		consent.SetStatus(model.ConsentStatusExpired, nowMillis)
		consent.ExpireDate = today
		consent.LastActionDate = today
		if err := s.save(ctx, "date_expiry", consent); err != nil {
			return s.saveError(err, consent.ConsentID)
		}
		metrics.ExpiryRewrites.WithLabelValues("consent", "date").Inc()
		s.recordTransition(consent.ConsentID, from, model.ConsentStatusExpired)
	}
	return nil
}

func (s *consentService) save(ctx context.Context, operation string, consents ...*model.Consent) error {
	return s.saveWith(ctx, operation, consents)
}

// saveWith writes consents through the checksum guard in one transaction, followed by extra.
func (s *consentService) saveWith(ctx context.Context, operation string, consents []*model.Consent,
	extra ...func(tx dbmodel.TxInterface) error) error {
	queries := make([]func(tx dbmodel.TxInterface) error, 0, len(consents)+len(extra))
	for _, consent := range consents {
		consent := consent
		queries = append(queries, func(tx dbmodel.TxInterface) error {
			return s.guardedUpdate(tx, consent)
		})
	}
	queries = append(queries, extra...)

	if err := s.stores.ExecuteTransaction(queries); err != nil {
		var wrongChecksum *WrongChecksumError
		if errors.As(err, &wrongChecksum) {
			metrics.ChecksumConflicts.WithLabelValues(operation).Inc()
			s.logger.Warn("Checksum conflict, write aborted",
				log.String("consent_id", wrongChecksum.ConsentID),
				log.String("operation", operation),
				log.String("reason", wrongChecksum.Reason))
		}
		return err
	}
	for _, consent := range consents {
		consent.MarkLoaded()
	}
	return nil
}

// guardedUpdate refuses the write when the stored checksum moved since the consent
// was read, or when the content as read no longer matches a stored checksum.
// Otherwise it stores a freshly computed checksum with the consent.
func (s *consentService) guardedUpdate(tx dbmodel.TxInterface, consent *model.Consent) error {
	consentStore := s.consentStore()
	stored, err := consentStore.GetChecksumForUpdate(tx, consent.ConsentID, consent.OrgID)
	if err != nil {
		return err
	}
	if !bytes.Equal(stored, consent.LoadedChecksum()) {
		return &WrongChecksumError{ConsentID: consent.ConsentID, Reason: "stored checksum changed since the consent was read"}
	}
	if s.settings.ChecksumVerificationEnabled() && len(stored) > 0 &&
		!s.checksums.Verify(consent.LoadedContent(), stored) {
		return &WrongChecksumError{ConsentID: consent.ConsentID, Reason: "consent content does not match its checksum"}
	}
	consent.Checksum = s.checksums.Calculate(consent)
	return consentStore.Update(tx, consent)
}

func (s *consentService) saveError(err error, consentID string) *serviceerror.ServiceError {
	var wrongChecksum *WrongChecksumError
	if errors.As(err, &wrongChecksum) {
		return serviceerror.CustomServiceError(serviceerror.ChecksumConflictError, wrongChecksum.Error())
	}
	s.logger.Error("Failed to save consent", log.String("consent_id", consentID), log.Error(err))
	return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to save consent: %v", err))
}

func (s *consentService) recordTransition(consentID string, from, to model.ConsentStatus) {
	if from == to {
		return
	}
	metrics.ConsentStatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.logger.Info("Consent status changed",
		log.String("consent_id", consentID),
		log.String("from", string(from)),
		log.String("to", string(to)))
}

func (s *consentService) consentStore() ConsentStore {
	return s.stores.Consent.(ConsentStore)
}

func (s *consentService) today() time.Time {
	return utils.TruncateToDate(s.now().UTC())
}

// clampValidUntil limits requested to lifetimeDays counted inclusively from today.
// A non-positive lifetime means no limit.
func clampValidUntil(requested, today time.Time, lifetimeDays int) time.Time {
	if lifetimeDays <= 0 {
		return requested
	}
	limit := today.AddDate(0, 0, lifetimeDays-1)
	if requested.IsZero() || requested.After(limit) {
		return limit
	}
	return requested
}
