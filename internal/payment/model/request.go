package model

import (
	"encoding/json"

	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

// CreatePaymentRequest is the body of POST /payments.
type CreatePaymentRequest struct {
	TppID                 string                   `json:"tppId"`
	PaymentProduct        string                   `json:"paymentProduct"`
	PaymentType           string                   `json:"paymentType"`
	PsuData               []consentmodel.PsuIdData `json:"psuData"`
	MultilevelScaRequired bool                     `json:"multilevelScaRequired"`
	Payment               json.RawMessage          `json:"payment"`
}

// UpdatePaymentStatusRequest is the body of PUT /payments/:paymentId/status.
type UpdatePaymentStatusRequest struct {
	TransactionStatus TransactionStatus `json:"transactionStatus"`
}

// MultilevelScaRequest is the body of PUT /payments/:paymentId/multilevel-sca.
type MultilevelScaRequest struct {
	MultilevelScaRequired bool `json:"multilevelScaRequired"`
}

// PaymentResponse is the API view of a payment.
type PaymentResponse struct {
	PaymentID             string                   `json:"paymentId"`
	TppID                 string                   `json:"tppId"`
	PaymentProduct        string                   `json:"paymentProduct"`
	PaymentType           string                   `json:"paymentType"`
	TransactionStatus     TransactionStatus        `json:"transactionStatus"`
	MultilevelScaRequired bool                     `json:"multilevelScaRequired"`
	PsuData               []consentmodel.PsuIdData `json:"psuData"`
	Payment               json.RawMessage          `json:"payment,omitempty"`
	CreationTimestamp     int64                    `json:"creationTimestamp"`
	StatusChangeTimestamp int64                    `json:"statusChangeTimestamp"`
}

// CreatePaymentResponse is returned from payment creation.
type CreatePaymentResponse struct {
	PaymentID         string            `json:"paymentId"`
	TransactionStatus TransactionStatus `json:"transactionStatus"`
}

// PaymentStatusResponse is the API view of a payment status.
type PaymentStatusResponse struct {
	PaymentID         string            `json:"paymentId"`
	TransactionStatus TransactionStatus `json:"transactionStatus"`
}

// ResultResponse reports whether an update was applied.
type ResultResponse struct {
	Result bool `json:"result"`
}

// ToResponse maps a payment onto its API view.
func (p *Payment) ToResponse() PaymentResponse {
	psuData := p.PsuData
	if psuData == nil {
		psuData = []consentmodel.PsuIdData{}
	}
	return PaymentResponse{
		PaymentID:             p.PaymentID,
		TppID:                 p.TppID,
		PaymentProduct:        p.PaymentProduct,
		PaymentType:           p.PaymentType,
		TransactionStatus:     p.TransactionStatus,
		MultilevelScaRequired: p.MultilevelScaRequired,
		PsuData:               psuData,
		Payment:               p.Payload,
		CreationTimestamp:     p.CreationTimestamp,
		StatusChangeTimestamp: p.StatusChangeTimestamp,
	}
}
