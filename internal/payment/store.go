package payment

import (
	"context"
	"encoding/json"
	"fmt"

	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/payment/model"
	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	dbutils "github.com/wso2/psd2-consent-mgt/internal/system/database/utils"
)

const paymentColumns = "PAYMENT_ID, ORG_ID, TPP_ID, PAYMENT_PRODUCT, PAYMENT_TYPE, TRANSACTION_STATUS, " +
	"MULTILEVEL_SCA_REQUIRED, PSU_DATA, PAYLOAD, CREATION_TIMESTAMP, STATUS_CHANGE_TIMESTAMP"

// DBQuery objects for payment operations
var (
	QueryCreatePayment = dbmodel.DBQuery{
		ID:    "CREATE_PAYMENT",
		Query: "INSERT INTO PAYMENT (" + paymentColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetPaymentByID = dbmodel.DBQuery{
		ID:    "GET_PAYMENT_BY_ID",
		Query: "SELECT " + paymentColumns + " FROM PAYMENT WHERE PAYMENT_ID = ? AND ORG_ID = ?",
	}

	QueryUpdatePayment = dbmodel.DBQuery{
		ID: "UPDATE_PAYMENT",
		Query: "UPDATE PAYMENT SET TRANSACTION_STATUS = ?, MULTILEVEL_SCA_REQUIRED = ?, PSU_DATA = ?, " +
			"STATUS_CHANGE_TIMESTAMP = ? WHERE PAYMENT_ID = ? AND ORG_ID = ?",
	}
)

// PaymentStore defines the persistence operations of the payment lifecycle.
type PaymentStore interface {
	Create(tx dbmodel.TxInterface, payment *model.Payment) (string, error)
	GetByID(ctx context.Context, paymentID, orgID string) (*model.Payment, error)
	Update(tx dbmodel.TxInterface, payment *model.Payment) error
}

type store struct {
	dbClient provider.DBClientInterface
}

func newPaymentStore(dbClient provider.DBClientInterface) PaymentStore {
	return &store{
		dbClient: dbClient,
	}
}

// Create inserts a payment and returns its id, or "" when no row was written.
func (s *store) Create(tx dbmodel.TxInterface, payment *model.Payment) (string, error) {
	psuData, err := marshalPsuData(payment.PsuData)
	if err != nil {
		return "", err
	}
	var payload interface{}
	if len(payment.Payload) > 0 {
		payload = string(payment.Payload)
	}
	affected, err := s.dbClient.ExecuteTx(tx, QueryCreatePayment,
		payment.PaymentID, payment.OrgID, payment.TppID, payment.PaymentProduct, payment.PaymentType,
		string(payment.TransactionStatus), payment.MultilevelScaRequired, psuData, payload,
		payment.CreationTimestamp, payment.StatusChangeTimestamp)
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", nil
	}
	return payment.PaymentID, nil
}

// GetByID retrieves a payment by ID, returning nil when it does not exist.
func (s *store) GetByID(ctx context.Context, paymentID, orgID string) (*model.Payment, error) {
	rows, err := s.dbClient.Query(QueryGetPaymentByID, paymentID, orgID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToPayment(rows[0])
}

// Update writes the mutable payment columns.
func (s *store) Update(tx dbmodel.TxInterface, payment *model.Payment) error {
	psuData, err := marshalPsuData(payment.PsuData)
	if err != nil {
		return err
	}
	_, err = s.dbClient.ExecuteTx(tx, QueryUpdatePayment,
		string(payment.TransactionStatus), payment.MultilevelScaRequired, psuData,
		payment.StatusChangeTimestamp, payment.PaymentID, payment.OrgID)
	return err
}

func mapToPayment(row map[string]interface{}) (*model.Payment, error) {
	payment := &model.Payment{
		PaymentID:             dbutils.RowString(row, "PAYMENT_ID"),
		OrgID:                 dbutils.RowString(row, "ORG_ID"),
		TppID:                 dbutils.RowString(row, "TPP_ID"),
		PaymentProduct:        dbutils.RowString(row, "PAYMENT_PRODUCT"),
		PaymentType:           dbutils.RowString(row, "PAYMENT_TYPE"),
		TransactionStatus:     model.TransactionStatus(dbutils.RowString(row, "TRANSACTION_STATUS")),
		MultilevelScaRequired: dbutils.RowBool(row, "MULTILEVEL_SCA_REQUIRED"),
		CreationTimestamp:     dbutils.RowInt64(row, "CREATION_TIMESTAMP"),
		StatusChangeTimestamp: dbutils.RowInt64(row, "STATUS_CHANGE_TIMESTAMP"),
	}
	if payload := dbutils.RowString(row, "PAYLOAD"); payload != "" {
		payment.Payload = json.RawMessage(payload)
	}
	if raw := dbutils.RowString(row, "PSU_DATA"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payment.PsuData); err != nil {
			return nil, fmt.Errorf("invalid PSU_DATA column: %w", err)
		}
	}
	return payment, nil
}

func marshalPsuData(psuData []consentmodel.PsuIdData) (string, error) {
	if psuData == nil {
		psuData = []consentmodel.PsuIdData{}
	}
	b, err := json.Marshal(psuData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal psu data: %w", err)
	}
	return string(b), nil
}
