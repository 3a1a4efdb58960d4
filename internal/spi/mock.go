package spi

import (
	"context"
	"fmt"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

// Test credentials accepted by MockSPI.
const (
	MockPassword = "12345"
	MockTan      = "123456"
)

// DefaultMockMethods are the SCA methods MockSPI offers.
var DefaultMockMethods = []AuthenticationMethod{
	{ID: "SMS_OTP", Type: "SMS_OTP", Name: "SMS one time password"},
	{ID: "PHOTO_OTP", Type: "PHOTO_OTP", Name: "Photo TAN"},
	{ID: "PUSH_DECOUPLED", Type: "PUSH_OTP", Name: "Push to banking app", DecoupledCapable: true},
}

// MockSPI authorises every PSU that presents the test password and accepts the
// test TAN for every method.
type MockSPI struct {
	Password string
	Tan      string
	Methods  []AuthenticationMethod
	// ExemptedPsuIDs are PSUs that are granted an SCA exemption after login.
	ExemptedPsuIDs map[string]bool
}

// NewMockSPI returns a MockSPI with the default test credentials.
func NewMockSPI() *MockSPI {
	return &MockSPI{
		Password:       MockPassword,
		Tan:            MockTan,
		Methods:        DefaultMockMethods,
		ExemptedPsuIDs: map[string]bool{},
	}
}

func (m *MockSPI) AuthorisePsu(_ context.Context, psu model.PsuIdData, password string) (*PsuAuthorisation, error) {
	if psu.IsEmpty() || password != m.Password {
		return &PsuAuthorisation{Authorised: false}, nil
	}
	if m.ExemptedPsuIDs[psu.PsuID] {
		return &PsuAuthorisation{Authorised: true}, nil
	}
	return &PsuAuthorisation{Authorised: true, Methods: m.Methods}, nil
}

func (m *MockSPI) RequestAuthorisationCode(_ context.Context, psu model.PsuIdData, methodID string) (*Challenge, error) {
	if _, ok := FindMethod(m.Methods, methodID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, methodID)
	}
	return &Challenge{
		MethodID: methodID,
		Data:     "Enter the TAN sent to you",
		Message:  fmt.Sprintf("A TAN was sent to %s using %s", psu.PsuID, methodID),
	}, nil
}

func (m *MockSPI) VerifyScaAuthorisation(_ context.Context, _ model.PsuIdData, methodID, authenticationData string) (bool, error) {
	if _, ok := FindMethod(m.Methods, methodID); !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownMethod, methodID)
	}
	return authenticationData == m.Tan, nil
}

func (m *MockSPI) StartDecoupled(_ context.Context, _ model.PsuIdData, methodID string) (*Challenge, error) {
	method, ok := FindMethod(m.Methods, methodID)
	if !ok || !method.DecoupledCapable {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, methodID)
	}
	return &Challenge{
		MethodID: methodID,
		Message:  "Please confirm the request in your banking app",
	}, nil
}
