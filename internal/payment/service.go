package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/payment/model"
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

// PaymentService defines the exported service interface
type PaymentService interface {
	CreateCommonPayment(ctx context.Context, orgID string, req model.CreatePaymentRequest) (*model.CreatePaymentResponse, *serviceerror.ServiceError)
	GetPayment(ctx context.Context, orgID, paymentID string) (*model.PaymentResponse, *serviceerror.ServiceError)
	GetPaymentStatus(ctx context.Context, orgID, paymentID string) (*model.PaymentStatusResponse, *serviceerror.ServiceError)
	UpdatePaymentStatus(ctx context.Context, orgID, paymentID string, status model.TransactionStatus) (bool, *serviceerror.ServiceError)
	UpdateMultilevelSca(ctx context.Context, orgID, paymentID string, required bool) (bool, *serviceerror.ServiceError)
	UpdatePsuDataInPayment(ctx context.Context, orgID, paymentID string, psuData consentmodel.PsuIdData) (bool, *serviceerror.ServiceError)
	GetPsuDataList(ctx context.Context, orgID, paymentID string) ([]consentmodel.PsuIdData, *serviceerror.ServiceError)
}

type paymentService struct {
	stores   *stores.StoreRegistry
	settings config.SettingsProvider
	now      func() time.Time
	logger   *log.Logger
}

func newPaymentService(registry *stores.StoreRegistry, settings config.SettingsProvider, now func() time.Time) PaymentService {
	return &paymentService{
		stores:   registry,
		settings: settings,
		now:      now,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "PaymentService")),
	}
}

// CreateCommonPayment stores a new payment in RCVD.
func (s *paymentService) CreateCommonPayment(ctx context.Context, orgID string,
	req model.CreatePaymentRequest) (*model.CreatePaymentResponse, *serviceerror.ServiceError) {
	if strings.TrimSpace(req.TppID) == "" {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "tppId is required")
	}
	if req.PaymentProduct == "" || req.PaymentType == "" {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError,
			"paymentProduct and paymentType are required")
	}

	psuData := make([]consentmodel.PsuIdData, 0, len(req.PsuData))
	for _, p := range req.PsuData {
		if p.IsEmpty() {
			return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "psuData entries require psuId")
		}
		psuData = psu.Merge(psuData, p)
	}

	nowMillis := utils.TimeToMillis(s.now())
	payment := &model.Payment{
		PaymentID:             utils.GenerateUUID(),
		OrgID:                 orgID,
		TppID:                 req.TppID,
		PaymentProduct:        req.PaymentProduct,
		PaymentType:           req.PaymentType,
		TransactionStatus:     model.TransactionStatusReceived,
		MultilevelScaRequired: req.MultilevelScaRequired || s.settings.MultilevelScaRequired(),
		PsuData:               psuData,
		Payload:               req.Payment,
		CreationTimestamp:     nowMillis,
		StatusChangeTimestamp: nowMillis,
	}

	var createdID string
	err := s.stores.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			id, err := s.paymentStore().Create(tx, payment)
			createdID = id
			return err
		},
	})
	if err != nil {
		s.logger.Error("Failed to create payment", log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to create payment: %v", err))
	}
	if createdID == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.TechnicalError, "payment could not be stored")
	}

	s.logger.Info("Payment created", log.String("payment_id", createdID))
	return &model.CreatePaymentResponse{PaymentID: createdID, TransactionStatus: payment.TransactionStatus}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, orgID, paymentID string) (*model.PaymentResponse, *serviceerror.ServiceError) {
	payment, svcErr := s.loadActual(ctx, orgID, paymentID)
	if svcErr != nil {
		return nil, svcErr
	}
	response := payment.ToResponse()
	return &response, nil
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, orgID, paymentID string) (*model.PaymentStatusResponse, *serviceerror.ServiceError) {
	payment, svcErr := s.loadActual(ctx, orgID, paymentID)
	if svcErr != nil {
		return nil, svcErr
	}
	return &model.PaymentStatusResponse{PaymentID: payment.PaymentID, TransactionStatus: payment.TransactionStatus}, nil
}

// UpdatePaymentStatus reports false when the payment is missing or already finalised.
func (s *paymentService) UpdatePaymentStatus(ctx context.Context, orgID, paymentID string,
	status model.TransactionStatus) (bool, *serviceerror.ServiceError) {
	if !status.IsValid() {
		return false, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError,
			fmt.Sprintf("invalid transaction status: %s", status))
	}
	payment, svcErr := s.loadActual(ctx, orgID, paymentID)
	if svcErr != nil {
		if svcErr.MessageCode == codes.ResourceUnknown {
			return false, nil
		}
		return false, svcErr
	}
	from := payment.TransactionStatus
	if from.IsFinalised() {
		return false, nil
	}
	payment.SetStatus(status, utils.TimeToMillis(s.now()))
	if svcErr := s.save(payment); svcErr != nil {
		return false, svcErr
	}
	s.recordTransition(paymentID, from, status)
	return true, nil
}

func (s *paymentService) UpdateMultilevelSca(ctx context.Context, orgID, paymentID string,
	required bool) (bool, *serviceerror.ServiceError) {
	payment, svcErr := s.loadActual(ctx, orgID, paymentID)
	if svcErr != nil {
		return false, svcErr
	}
	if payment.TransactionStatus.IsFinalised() {
		return false, nil
	}
	payment.MultilevelScaRequired = required
	if svcErr := s.save(payment); svcErr != nil {
		return false, svcErr
	}
	return true, nil
}

// UpdatePsuDataInPayment adds psuData to the PSUs of a non-finalised payment.
func (s *paymentService) UpdatePsuDataInPayment(ctx context.Context, orgID, paymentID string,
	psuData consentmodel.PsuIdData) (bool, *serviceerror.ServiceError) {
	if psuData.IsEmpty() {
		return false, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "PSU-ID is required")
	}
	payment, svcErr := s.loadActual(ctx, orgID, paymentID)
	if svcErr != nil {
		return false, svcErr
	}
	if payment.TransactionStatus.IsFinalised() {
		return false, nil
	}
	if psu.Contains(payment.PsuData, psuData) {
		return true, nil
	}
	payment.PsuData = psu.Merge(payment.PsuData, psuData)
	if svcErr := s.save(payment); svcErr != nil {
		return false, svcErr
	}
	return true, nil
}

func (s *paymentService) GetPsuDataList(ctx context.Context, orgID, paymentID string) ([]consentmodel.PsuIdData, *serviceerror.ServiceError) {
	payment, svcErr := s.load(ctx, orgID, paymentID)
	if svcErr != nil {
		return nil, svcErr
	}
	if payment.PsuData == nil {
		return []consentmodel.PsuIdData{}, nil
	}
	return payment.PsuData, nil
}

// loadActual reads a payment and rejects it when it was not authorised in time.
func (s *paymentService) loadActual(ctx context.Context, orgID, paymentID string) (*model.Payment, *serviceerror.ServiceError) {
	payment, svcErr := s.load(ctx, orgID, paymentID)
	if svcErr != nil {
		return nil, svcErr
	}
	nowMillis := utils.TimeToMillis(s.now())
	if payment.IsConfirmationExpired(nowMillis, s.settings.NotConfirmedPaymentExpirationTimeMs()) {
		from := payment.TransactionStatus
		payment.SetStatus(model.TransactionStatusRejected, nowMillis)
		if svcErr := s.save(payment); svcErr != nil {
			return nil, svcErr
		}
		metrics.ExpiryRewrites.WithLabelValues("payment", "confirmation").Inc()
		s.recordTransition(paymentID, from, model.TransactionStatusRejected)
	}
	return payment, nil
}

func (s *paymentService) load(ctx context.Context, orgID, paymentID string) (*model.Payment, *serviceerror.ServiceError) {
	if paymentID == "" {
		return nil, serviceerror.WithMessageCode(serviceerror.ValidationError, codes.FormatError, "payment ID is required")
	}
	payment, err := s.paymentStore().GetByID(ctx, paymentID, orgID)
	if err != nil {
		s.logger.Error("Failed to read payment", log.String("payment_id", paymentID), log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to read payment: %v", err))
	}
	if payment == nil {
		return nil, serviceerror.WithMessageCode(serviceerror.LogicalError, codes.ResourceUnknown,
			fmt.Sprintf("payment %s not found", paymentID))
	}
	return payment, nil
}

func (s *paymentService) save(payment *model.Payment) *serviceerror.ServiceError {
	err := s.stores.ExecuteTransaction([]func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.paymentStore().Update(tx, payment)
		},
	})
	if err != nil {
		s.logger.Error("Failed to save payment", log.String("payment_id", payment.PaymentID), log.Error(err))
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to save payment: %v", err))
	}
	return nil
}

func (s *paymentService) recordTransition(paymentID string, from, to model.TransactionStatus) {
	if from == to {
		return
	}
	metrics.PaymentStatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.logger.Info("Payment status changed",
		log.String("payment_id", paymentID),
		log.String("from", string(from)),
		log.String("to", string(to)))
}

func (s *paymentService) paymentStore() PaymentStore {
	return s.stores.Payment.(PaymentStore)
}
