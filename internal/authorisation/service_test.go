package authorisation

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	paymentmodel "github.com/wso2/psd2-consent-mgt/internal/payment/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider/mocks"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
	"github.com/wso2/psd2-consent-mgt/internal/system/stores"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

const (
	testOrgID           = "org-1"
	okRedirect          = "https://aspsp.example.com/sca/ok"
	nokRedirect         = "https://aspsp.example.com/sca/nok"
	redirectWindow      = 10 * time.Minute
	authorisationWindow = time.Hour
)

var fixedNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

type AuthorisationServiceTestSuite struct {
	suite.Suite
	store    *memoryStore
	consents *fakeConsents
	payments *fakePayments
	mockSPI  *spi.MockSPI
	service  AuthorisationService
	clock    time.Time
	ctx      context.Context
}

func TestAuthorisationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthorisationServiceTestSuite))
}

func (ts *AuthorisationServiceTestSuite) SetupTest() {
	client, _ := mocks.NewTransactionalClient()
	registry := stores.NewStoreRegistry(client)
	ts.store = newMemoryStore()
	registry.Authorisation = ts.store

	ts.consents = newFakeConsents()
	ts.payments = newFakePayments()
	ts.mockSPI = spi.NewMockSPI()
	ts.clock = fixedNow
	settings := config.NewSettingsProvider(config.AspspConfig{
		RedirectURLExpirationTimeMs:   redirectWindow.Milliseconds(),
		AuthorisationExpirationTimeMs: authorisationWindow.Milliseconds(),
		ScaRedirectOkURL:              okRedirect,
		ScaRedirectNokURL:             nokRedirect,
		SupportedScaApproaches:        []string{"REDIRECT", "EMBEDDED"},
	})
	ts.service = NewService(registry, settings, ts.mockSPI, ts.consents, ts.payments,
		func() time.Time { return ts.clock })
	ts.ctx = context.Background()
}

func psuData(id string) consentmodel.PsuIdData {
	return consentmodel.PsuIdData{PsuID: id}
}

func (ts *AuthorisationServiceTestSuite) create(parentID string, authType model.AuthorisationType,
	psuID, approach string) *model.CreateAuthorisationResponse {
	resp, svcErr := ts.service.CreateAuthorisation(ts.ctx, testOrgID, parentID, authType,
		model.CreateAuthorisationRequest{PsuData: psuData(psuID), ScaApproach: approach})
	ts.Require().Nil(svcErr)
	return resp
}

// embeddedFlow runs password, method selection and TAN for one PSU.
func (ts *AuthorisationServiceTestSuite) embeddedFlow(parentID string, authType model.AuthorisationType, psuID string) string {
	created := ts.create(parentID, authType, psuID, "EMBEDDED")
	steps := []model.UpdatePsuDataRequest{
		{PsuData: psuData(psuID), Password: spi.MockPassword},
		{AuthenticationMethodID: "SMS_OTP"},
		{ScaAuthenticationData: spi.MockTan},
	}
	for _, step := range steps {
		_, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, parentID, created.AuthorisationID, authType, step)
		ts.Require().Nil(svcErr)
	}
	return created.AuthorisationID
}

func (ts *AuthorisationServiceTestSuite) assertMessageCode(svcErr *serviceerror.ServiceError, messageCode string) {
	ts.Require().NotNil(svcErr)
	ts.Equal(messageCode, svcErr.MessageCode)
}

func (ts *AuthorisationServiceTestSuite) TestCreateAuthorisation_WithPsu() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")

	resp := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "embedded")

	ts.Equal(model.ScaStatusPsuIdentified, resp.ScaStatus)
	ts.Equal(model.ScaApproachEmbedded, resp.ScaApproach)
	ts.Equal(resp.AuthorisationID, resp.RedirectID)
	ts.Equal(okRedirect, resp.RedirectURI)
	ts.Equal(nokRedirect, resp.NokRedirectURI)

	stored := ts.store.get(resp.AuthorisationID)
	ts.Equal("consent-1", stored.ParentID)
	ts.Equal(utils.TimeToMillis(fixedNow.Add(redirectWindow)), stored.RedirectURLExpirationTimestamp)
	ts.Equal(utils.TimeToMillis(fixedNow.Add(authorisationWindow)), stored.AuthorisationExpirationTimestamp)
}

func (ts *AuthorisationServiceTestSuite) TestCreateAuthorisation_AnonymousUsesDefaultApproach() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false)

	resp, svcErr := ts.service.CreateAuthorisation(ts.ctx, testOrgID, "consent-1", model.AuthorisationTypeAis,
		model.CreateAuthorisationRequest{ScaApproach: "DECOUPLED", RedirectURI: "https://tpp.example.com/back"})

	ts.Require().Nil(svcErr)
	ts.Equal(model.ScaStatusReceived, resp.ScaStatus)
	ts.Equal(model.ScaApproachRedirect, resp.ScaApproach)
	ts.Equal("https://tpp.example.com/back", resp.RedirectURI)
}

func (ts *AuthorisationServiceTestSuite) TestCreateAuthorisation_Refusals() {
	ts.consents.add("received", consentmodel.ConsentStatusReceived, false, "PSU-A")
	ts.consents.add("valid", consentmodel.ConsentStatusValid, false, "PSU-A", "PSU-B")
	ts.store.put(&model.Authorisation{
		AuthorisationID: "auth-done",
		OrgID:           testOrgID,
		ParentID:        "valid",
		Type:            model.AuthorisationTypeAis,
		ScaStatus:       model.ScaStatusFinalised,
		PsuData:         psuData("PSU-A"),
	})
	ts.consents.add("expired", consentmodel.ConsentStatusExpired, false, "PSU-A")

	tests := []struct {
		name        string
		consentID   string
		req         model.CreateAuthorisationRequest
		messageCode string
		httpStatus  int
	}{
		{"unknown approach", "received", model.CreateAuthorisationRequest{ScaApproach: "OAUTH"}, codes.FormatError, http.StatusBadRequest},
		{"foreign PSU", "received", model.CreateAuthorisationRequest{PsuData: psuData("PSU-X")}, codes.PsuCredentialsInvalid, http.StatusUnauthorized},
		{"consent already valid", "valid", model.CreateAuthorisationRequest{PsuData: psuData("PSU-B")}, codes.ServiceBlocked, http.StatusForbidden},
		{"PSU already authorised", "valid", model.CreateAuthorisationRequest{PsuData: psuData("PSU-A")}, codes.StatusInvalid, http.StatusConflict},
		{"consent expired", "expired", model.CreateAuthorisationRequest{PsuData: psuData("PSU-A")}, codes.ConsentExpired, http.StatusUnauthorized},
		{"unknown consent", "missing", model.CreateAuthorisationRequest{}, codes.ConsentUnknown, http.StatusBadRequest},
	}

	for _, tt := range tests {
		ts.Run(tt.name, func() {
			_, svcErr := ts.service.CreateAuthorisation(ts.ctx, testOrgID, tt.consentID, model.AuthorisationTypeAis, tt.req)
			ts.assertMessageCode(svcErr, tt.messageCode)
			ts.Equal(tt.httpStatus, utils.StatusCodeFor(svcErr))
		})
	}
	ts.Equal(1, ts.store.count())
}

func (ts *AuthorisationServiceTestSuite) TestCreateAuthorisation_AfterFinalisedIsConflict() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, true, "PSU-A", "PSU-B")
	ts.embeddedFlow("consent-1", model.AuthorisationTypeAis, "PSU-A")
	ts.Require().Equal(1, ts.store.count())

	_, svcErr := ts.service.CreateAuthorisation(ts.ctx, testOrgID, "consent-1", model.AuthorisationTypeAis,
		model.CreateAuthorisationRequest{PsuData: psuData("PSU-A")})

	ts.assertMessageCode(svcErr, codes.StatusInvalid)
	ts.Equal(http.StatusConflict, utils.StatusCodeFor(svcErr))
	ts.Equal(1, ts.store.count())
}

func (ts *AuthorisationServiceTestSuite) TestCreateAuthorisation_SinglePsuAfterValidIsConflict() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	ts.embeddedFlow("consent-1", model.AuthorisationTypeAis, "PSU-A")
	ts.Require().Equal(consentmodel.ConsentStatusValid, ts.consents.status("consent-1"))

	_, svcErr := ts.service.CreateAuthorisation(ts.ctx, testOrgID, "consent-1", model.AuthorisationTypeAis,
		model.CreateAuthorisationRequest{PsuData: psuData("PSU-A")})

	ts.assertMessageCode(svcErr, codes.StatusInvalid)
	ts.Equal(http.StatusConflict, utils.StatusCodeFor(svcErr))
	ts.Equal(1, ts.store.count())
}

func (ts *AuthorisationServiceTestSuite) TestCreateAuthorisation_FailsEarlierActiveAttempt() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A", "PSU-B")
	first := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")
	other := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-B", "EMBEDDED")

	second := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")

	ts.NotEqual(first.AuthorisationID, second.AuthorisationID)
	ts.Equal(model.ScaStatusFailed, ts.store.get(first.AuthorisationID).ScaStatus)
	ts.Equal(model.ScaStatusPsuIdentified, ts.store.get(other.AuthorisationID).ScaStatus)
	ts.Equal(model.ScaStatusPsuIdentified, ts.store.get(second.AuthorisationID).ScaStatus)
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_EmbeddedConfirmsConsent() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false)
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")

	resp, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{Password: spi.MockPassword})
	ts.Require().Nil(svcErr)
	ts.Equal(model.ScaStatusPsuAuthenticated, resp.ScaStatus)
	ts.Len(resp.AvailableScaMethods, len(spi.DefaultMockMethods))

	resp, svcErr = ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{AuthenticationMethodID: "PHOTO_OTP"})
	ts.Require().Nil(svcErr)
	ts.Equal(model.ScaStatusScaMethodSelected, resp.ScaStatus)
	ts.Equal("PHOTO_OTP", resp.ChosenScaMethod.ID)
	ts.Equal(consentmodel.ConsentStatusReceived, ts.consents.status("consent-1"))

	resp, svcErr = ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{ScaAuthenticationData: spi.MockTan})
	ts.Require().Nil(svcErr)
	ts.Equal(model.ScaStatusFinalised, resp.ScaStatus)
	ts.Equal(consentmodel.ConsentStatusValid, ts.consents.status("consent-1"))
	ts.Equal([]consentmodel.PsuIdData{psuData("PSU-A")}, ts.consents.consents["consent-1"].PsuData)
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_MultilevelWaitsForEveryPsu() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, true, "PSU-A", "PSU-B")

	ts.embeddedFlow("consent-1", model.AuthorisationTypeAis, "PSU-A")
	ts.Equal(consentmodel.ConsentStatusPartiallyAuthorised, ts.consents.status("consent-1"))

	ts.embeddedFlow("consent-1", model.AuthorisationTypeAis, "PSU-B")
	ts.Equal(consentmodel.ConsentStatusValid, ts.consents.status("consent-1"))
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_ExemptedPsuConfirmsConsent() {
	ts.mockSPI.ExemptedPsuIDs["PSU-A"] = true
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")

	resp, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{Password: spi.MockPassword})

	ts.Require().Nil(svcErr)
	ts.Equal(model.ScaStatusExempted, resp.ScaStatus)
	ts.Equal(consentmodel.ConsentStatusValid, ts.consents.status("consent-1"))
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_WrongPasswordFailsAuthorisation() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")

	_, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{Password: "guess"})

	ts.assertMessageCode(svcErr, codes.PsuCredentialsInvalid)
	ts.Equal(model.ScaStatusFailed, ts.store.get(created.AuthorisationID).ScaStatus)
	ts.Equal(consentmodel.ConsentStatusReceived, ts.consents.status("consent-1"))
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_OtherPsuFailsAuthorisation() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A", "PSU-B")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")

	_, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{PsuData: psuData("PSU-B"), Password: spi.MockPassword})

	ts.assertMessageCode(svcErr, codes.PsuCredentialsInvalid)
	ts.Equal(model.ScaStatusFailed, ts.store.get(created.AuthorisationID).ScaStatus)
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_ExpiredAuthorisation() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")
	ts.clock = fixedNow.Add(2 * authorisationWindow)

	_, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{Password: spi.MockPassword})

	ts.assertMessageCode(svcErr, codes.ResourceExpired)
	ts.Equal(model.ScaStatusFailed, ts.store.get(created.AuthorisationID).ScaStatus)
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_ParentNoLongerAcceptsSca() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")
	ts.consents.consents["consent-1"].ConsentStatus = consentmodel.ConsentStatusRejected

	_, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{Password: spi.MockPassword})

	ts.assertMessageCode(svcErr, codes.ServiceBlocked)
	ts.Equal(model.ScaStatusPsuIdentified, ts.store.get(created.AuthorisationID).ScaStatus)
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_WrongParent() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	ts.consents.add("consent-2", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "EMBEDDED")

	_, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-2", created.AuthorisationID,
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{Password: spi.MockPassword})

	ts.assertMessageCode(svcErr, codes.ResourceUnknown)
}

func (ts *AuthorisationServiceTestSuite) TestUpdatePsuData_UnregisteredApproachIsInternalError() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	ts.store.put(&model.Authorisation{
		AuthorisationID: "auth-odd",
		OrgID:           testOrgID,
		ParentID:        "consent-1",
		Type:            model.AuthorisationTypeAis,
		ScaStatus:       model.ScaStatusPsuIdentified,
		ScaApproach:     "OAUTH",
		PsuData:         psuData("PSU-A"),
	})

	_, svcErr := ts.service.UpdatePsuData(ts.ctx, testOrgID, "consent-1", "auth-odd",
		model.AuthorisationTypeAis, model.UpdatePsuDataRequest{Password: spi.MockPassword})

	ts.Require().NotNil(svcErr)
	ts.Equal(serviceerror.InternalServerError.Code, svcErr.Code)
	ts.Empty(svcErr.MessageCode)
}

func (ts *AuthorisationServiceTestSuite) TestPaymentAuthorisations() {
	ts.payments.add("payment-1", paymentmodel.TransactionStatusReceived, "PSU-A")

	ts.embeddedFlow("payment-1", model.AuthorisationTypePisCreation, "PSU-A")
	ts.Equal(paymentmodel.TransactionStatusAcceptedTechnicalValid, ts.payments.status("payment-1"))

	_, svcErr := ts.service.CreateAuthorisation(ts.ctx, testOrgID, "payment-1", model.AuthorisationTypePisCreation,
		model.CreateAuthorisationRequest{PsuData: psuData("PSU-A")})
	ts.assertMessageCode(svcErr, codes.ServiceBlocked)

	ts.embeddedFlow("payment-1", model.AuthorisationTypePisCancellation, "PSU-A")
	ts.Equal(paymentmodel.TransactionStatusCancelled, ts.payments.status("payment-1"))
}

func (ts *AuthorisationServiceTestSuite) TestGetScaStatus_FailsExpiredAuthorisation() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")

	resp, svcErr := ts.service.GetScaStatus(ts.ctx, testOrgID, "consent-1", created.AuthorisationID, model.AuthorisationTypeAis)
	ts.Require().Nil(svcErr)
	ts.Equal(model.ScaStatusPsuIdentified, resp.ScaStatus)

	ts.clock = fixedNow.Add(2 * authorisationWindow)
	resp, svcErr = ts.service.GetScaStatus(ts.ctx, testOrgID, "consent-1", created.AuthorisationID, model.AuthorisationTypeAis)
	ts.Require().Nil(svcErr)
	ts.Equal(model.ScaStatusFailed, resp.ScaStatus)
	ts.Equal(model.ScaStatusFailed, ts.store.get(created.AuthorisationID).ScaStatus)
}

func (ts *AuthorisationServiceTestSuite) TestGetAuthorisationByRedirectID() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")

	ts.Run("active link", func() {
		created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")
		resp, err := ts.service.GetAuthorisationByRedirectID(ts.ctx, testOrgID, created.RedirectID)
		ts.Require().NoError(err)
		ts.Equal("consent-1", resp.ParentID)
		ts.Equal(model.ScaApproachRedirect, resp.ScaApproach)
	})

	ts.Run("expired link", func() {
		ts.clock = fixedNow
		created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")
		ts.clock = fixedNow.Add(2 * redirectWindow)

		_, err := ts.service.GetAuthorisationByRedirectID(ts.ctx, testOrgID, created.RedirectID)

		var linkExpired *RedirectURLExpiredError
		ts.Require().True(errors.As(err, &linkExpired))
		ts.Equal(nokRedirect, linkExpired.NokRedirectURI)
		ts.Equal(model.ScaStatusFailed, ts.store.get(created.AuthorisationID).ScaStatus)
	})

	ts.Run("expired authorisation wins over expired link", func() {
		ts.clock = fixedNow
		created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")
		ts.clock = fixedNow.Add(2 * authorisationWindow)

		_, err := ts.service.GetAuthorisationByRedirectID(ts.ctx, testOrgID, created.RedirectID)

		var authExpired *AuthorisationExpiredError
		ts.Require().True(errors.As(err, &authExpired))
		ts.Equal(nokRedirect, authExpired.NokRedirectURI)
		ts.Equal(model.ScaStatusFailed, ts.store.get(created.AuthorisationID).ScaStatus)
	})

	ts.Run("unknown redirect", func() {
		_, err := ts.service.GetAuthorisationByRedirectID(ts.ctx, testOrgID, "missing")

		var lookup *LookupError
		ts.Require().True(errors.As(err, &lookup))
		ts.Equal(codes.ResourceUnknown, lookup.ServiceError.MessageCode)
	})
}

func (ts *AuthorisationServiceTestSuite) TestUpdateScaStatus_RedirectFlow() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")

	ok, svcErr := ts.service.UpdateAuthenticationMethod(ts.ctx, testOrgID, created.AuthorisationID, "SMS_OTP")
	ts.Require().Nil(svcErr)
	ts.True(ok)
	ts.Equal("SMS_OTP", ts.store.get(created.AuthorisationID).AuthenticationMethodID)

	ok, svcErr = ts.service.UpdateScaStatus(ts.ctx, testOrgID, created.AuthorisationID, model.ScaStatusFinalised)
	ts.Require().Nil(svcErr)
	ts.True(ok)
	ts.Equal(consentmodel.ConsentStatusValid, ts.consents.status("consent-1"))

	ok, svcErr = ts.service.UpdateScaStatus(ts.ctx, testOrgID, created.AuthorisationID, model.ScaStatusFailed)
	ts.Nil(svcErr)
	ts.False(ok)
	ts.Equal(model.ScaStatusFinalised, ts.store.get(created.AuthorisationID).ScaStatus)

	ok, svcErr = ts.service.UpdateAuthenticationMethod(ts.ctx, testOrgID, created.AuthorisationID, "PHOTO_OTP")
	ts.Nil(svcErr)
	ts.False(ok)
}

func (ts *AuthorisationServiceTestSuite) TestUpdateScaStatus_RefusesEarlierStep() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")

	ok, svcErr := ts.service.UpdateScaStatus(ts.ctx, testOrgID, created.AuthorisationID, model.ScaStatusStarted)
	ts.Require().Nil(svcErr)
	ts.True(ok)

	ok, svcErr = ts.service.UpdateScaStatus(ts.ctx, testOrgID, created.AuthorisationID, model.ScaStatusReceived)
	ts.Nil(svcErr)
	ts.False(ok)
	ts.Equal(model.ScaStatusStarted, ts.store.get(created.AuthorisationID).ScaStatus)
}

func (ts *AuthorisationServiceTestSuite) TestUpdateScaStatus_ExpiredAuthorisation() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false, "PSU-A")
	created := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")
	ts.clock = fixedNow.Add(authorisationWindow + time.Minute)

	ok, svcErr := ts.service.UpdateScaStatus(ts.ctx, testOrgID, created.AuthorisationID, model.ScaStatusFinalised)

	ts.False(ok)
	ts.assertMessageCode(svcErr, codes.ResourceExpired)
	ts.Equal(http.StatusForbidden, utils.StatusCodeFor(svcErr))
	ts.Equal(model.ScaStatusFailed, ts.store.get(created.AuthorisationID).ScaStatus)
	ts.Equal(consentmodel.ConsentStatusReceived, ts.consents.status("consent-1"))
}

func (ts *AuthorisationServiceTestSuite) TestUpdateScaStatus_Invalid() {
	_, svcErr := ts.service.UpdateScaStatus(ts.ctx, testOrgID, "auth-1", "DONE")
	ts.assertMessageCode(svcErr, codes.FormatError)

	_, svcErr = ts.service.UpdateScaStatus(ts.ctx, testOrgID, "missing", model.ScaStatusStarted)
	ts.assertMessageCode(svcErr, codes.ResourceUnknown)

	_, svcErr = ts.service.UpdateAuthenticationMethod(ts.ctx, testOrgID, "missing", "")
	ts.assertMessageCode(svcErr, codes.FormatError)
}

func (ts *AuthorisationServiceTestSuite) TestGetPsuDataAuthorisations() {
	ts.consents.add("consent-1", consentmodel.ConsentStatusReceived, false)
	a := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-A", "")
	ts.create("consent-1", model.AuthorisationTypeAis, "", "")
	b := ts.create("consent-1", model.AuthorisationTypeAis, "PSU-B", "")

	result, svcErr := ts.service.GetPsuDataAuthorisations(ts.ctx, testOrgID, "consent-1", model.AuthorisationTypeAis)

	ts.Require().Nil(svcErr)
	ts.Equal([]model.PsuDataAuthorisation{
		{PsuID: "PSU-A", AuthorisationID: a.AuthorisationID, ScaStatus: model.ScaStatusPsuIdentified},
		{PsuID: "PSU-B", AuthorisationID: b.AuthorisationID, ScaStatus: model.ScaStatusPsuIdentified},
	}, result)
}
