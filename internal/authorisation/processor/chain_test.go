package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
)

var fixedNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

type memoryWriter struct {
	saved map[string]model.Authorisation
	err   error
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{saved: map[string]model.Authorisation{}}
}

func (w *memoryWriter) SaveAuthorisation(_ context.Context, authorisation *model.Authorisation) error {
	if w.err != nil {
		return w.err
	}
	w.saved[authorisation.AuthorisationID] = *authorisation
	return nil
}

type mockApproachService struct {
	mock.Mock
}

func (m *mockApproachService) step(name string, req *Request) *Response {
	return m.MethodCalled(name, req).Get(0).(*Response)
}

func (m *mockApproachService) DoScaReceived(_ context.Context, req *Request) *Response {
	return m.step("received", req)
}

func (m *mockApproachService) DoScaPsuIdentified(_ context.Context, req *Request) *Response {
	return m.step("psuIdentified", req)
}

func (m *mockApproachService) DoScaPsuAuthenticated(_ context.Context, req *Request) *Response {
	return m.step("psuAuthenticated", req)
}

func (m *mockApproachService) DoScaMethodSelected(_ context.Context, req *Request) *Response {
	return m.step("methodSelected", req)
}

func (m *mockApproachService) DoScaStarted(_ context.Context, req *Request) *Response {
	return m.step("started", req)
}

func (m *mockApproachService) DoScaFinalised(_ context.Context, req *Request) *Response {
	return m.step("finalised", req)
}

func (m *mockApproachService) DoScaFailed(_ context.Context, req *Request) *Response {
	return m.step("failed", req)
}

func (m *mockApproachService) DoScaExempted(_ context.Context, req *Request) *Response {
	return m.step("exempted", req)
}

func (m *mockApproachService) UpdateAuthorisation(_ context.Context, req *Request, resp *Response) error {
	return m.Called(req, resp).Error(0)
}

func newAuthorisation(status model.ScaStatus, approach model.ScaApproach) *model.Authorisation {
	return &model.Authorisation{
		AuthorisationID: "auth-1",
		OrgID:           "org-1",
		ParentID:        "consent-1",
		Type:            model.AuthorisationTypeAis,
		ScaStatus:       status,
		ScaApproach:     approach,
	}
}

func psu(id string) consentmodel.PsuIdData {
	return consentmodel.PsuIdData{PsuID: id}
}

func newChain(client spi.AuthorisationSPI, writer AuthorisationWriter) *Chain {
	return NewChain(NewDefaultRegistry(client, writer, func() time.Time { return fixedNow }))
}

func TestChainRunsOnlyTheMatchingStep(t *testing.T) {
	service := &mockApproachService{}
	registry := NewRegistry()
	registry.Register(model.AuthorisationTypeAis, model.ScaApproachEmbedded, service)

	req := NewRequest(newAuthorisation(model.ScaStatusPsuAuthenticated, model.ScaApproachEmbedded), model.UpdatePsuDataRequest{})
	want := &Response{ScaStatus: model.ScaStatusScaMethodSelected}
	service.On("psuAuthenticated", req).Return(want).Once()
	service.On("UpdateAuthorisation", req, want).Return(nil).Once()

	resp, err := NewChain(registry).Apply(context.Background(), req)

	require.NoError(t, err)
	assert.Same(t, want, resp)
	service.AssertExpectations(t)
	service.AssertNotCalled(t, "received", mock.Anything)
}

func TestChainPersistsFailedSteps(t *testing.T) {
	service := &mockApproachService{}
	registry := NewRegistry()
	registry.Register(model.AuthorisationTypeAis, model.ScaApproachRedirect, service)

	req := NewRequest(newAuthorisation(model.ScaStatusFinalised, model.ScaApproachRedirect), model.UpdatePsuDataRequest{})
	resp := finalisedStep(req)
	service.On("finalised", req).Return(resp).Once()
	service.On("UpdateAuthorisation", req, resp).Return(nil).Once()

	got, err := NewChain(registry).Apply(context.Background(), req)

	require.NoError(t, err)
	require.True(t, got.HasError())
	assert.Equal(t, codes.StatusInvalid, got.Error.MessageCode)
	service.AssertExpectations(t)
}

func TestChainReportsPersistenceFailure(t *testing.T) {
	writer := newMemoryWriter()
	writer.err = errors.New("connection reset")
	chain := newChain(spi.NewMockSPI(), writer)

	req := NewRequest(newAuthorisation(model.ScaStatusReceived, model.ScaApproachRedirect),
		model.UpdatePsuDataRequest{PsuData: psu("PSU-1")})
	resp, err := chain.Apply(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, writer.err)
	assert.Equal(t, model.ScaStatusPsuIdentified, resp.ScaStatus)
}

func TestChainConfigurationErrors(t *testing.T) {
	chain := newChain(spi.NewMockSPI(), newMemoryWriter())

	t.Run("unknown status", func(t *testing.T) {
		req := NewRequest(newAuthorisation("PENDING", model.ScaApproachEmbedded), model.UpdatePsuDataRequest{})
		_, err := chain.Apply(context.Background(), req)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Reason, "PENDING")
	})

	t.Run("unregistered approach", func(t *testing.T) {
		req := NewRequest(newAuthorisation(model.ScaStatusReceived, "OAUTH"), model.UpdatePsuDataRequest{})
		_, err := chain.Apply(context.Background(), req)

		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("unregistered type", func(t *testing.T) {
		_, err := NewRegistry().Service(model.AuthorisationTypePisCreation, model.ScaApproachRedirect)

		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestEmbeddedFlow(t *testing.T) {
	writer := newMemoryWriter()
	chain := newChain(spi.NewMockSPI(), writer)
	authorisation := newAuthorisation(model.ScaStatusReceived, model.ScaApproachEmbedded)
	ctx := context.Background()

	resp, err := chain.Apply(ctx, NewRequest(authorisation, model.UpdatePsuDataRequest{PsuData: psu("PSU-1")}))
	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusPsuIdentified, resp.ScaStatus)
	assert.Equal(t, "PSU-1", writer.saved["auth-1"].PsuData.PsuID)

	resp, err = chain.Apply(ctx, NewRequest(authorisation, model.UpdatePsuDataRequest{Password: spi.MockPassword}))
	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusPsuAuthenticated, resp.ScaStatus)
	assert.Len(t, resp.AvailableMethods, len(spi.DefaultMockMethods))

	resp, err = chain.Apply(ctx, NewRequest(authorisation, model.UpdatePsuDataRequest{AuthenticationMethodID: "SMS_OTP"}))
	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusScaMethodSelected, resp.ScaStatus)
	assert.NotEmpty(t, resp.ChallengeData)
	assert.Equal(t, "SMS_OTP", writer.saved["auth-1"].AuthenticationMethodID)

	resp, err = chain.Apply(ctx, NewRequest(authorisation, model.UpdatePsuDataRequest{ScaAuthenticationData: spi.MockTan}))
	require.NoError(t, err)
	assert.False(t, resp.HasError())
	assert.Equal(t, model.ScaStatusFinalised, writer.saved["auth-1"].ScaStatus)
	assert.Equal(t, fixedNow.UnixMilli(), writer.saved["auth-1"].StatusChangeTimestamp)
}

func TestEmbeddedSingleMethodSkipsSelection(t *testing.T) {
	client := spi.NewMockSPI()
	client.Methods = spi.DefaultMockMethods[:1]
	chain := newChain(client, newMemoryWriter())

	req := NewRequest(newAuthorisation(model.ScaStatusReceived, model.ScaApproachEmbedded),
		model.UpdatePsuDataRequest{PsuData: psu("PSU-1"), Password: spi.MockPassword})
	resp, err := chain.Apply(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusScaMethodSelected, resp.ScaStatus)
	assert.Equal(t, "SMS_OTP", resp.ChosenMethod.ID)
}

func TestEmbeddedFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      model.ScaStatus
		methodID    string
		update      model.UpdatePsuDataRequest
		wantStatus  model.ScaStatus
		wantMessage string
	}{
		{
			name:        "missing PSU",
			status:      model.ScaStatusReceived,
			wantStatus:  model.ScaStatusReceived,
			wantMessage: codes.FormatError,
		},
		{
			name:        "wrong password",
			status:      model.ScaStatusPsuIdentified,
			update:      model.UpdatePsuDataRequest{PsuData: psu("PSU-1"), Password: "nope"},
			wantStatus:  model.ScaStatusFailed,
			wantMessage: codes.PsuCredentialsInvalid,
		},
		{
			name:        "unknown method",
			status:      model.ScaStatusPsuAuthenticated,
			update:      model.UpdatePsuDataRequest{PsuData: psu("PSU-1"), AuthenticationMethodID: "CARRIER_PIGEON"},
			wantStatus:  model.ScaStatusPsuAuthenticated,
			wantMessage: codes.ScaMethodUnknown,
		},
		{
			name:        "wrong TAN",
			status:      model.ScaStatusScaMethodSelected,
			methodID:    "SMS_OTP",
			update:      model.UpdatePsuDataRequest{PsuData: psu("PSU-1"), ScaAuthenticationData: "000000"},
			wantStatus:  model.ScaStatusFailed,
			wantMessage: codes.ScaInvalid,
		},
		{
			name:        "started is not an embedded status",
			status:      model.ScaStatusStarted,
			wantStatus:  model.ScaStatusStarted,
			wantMessage: codes.StatusInvalid,
		},
		{
			name:        "already exempted",
			status:      model.ScaStatusExempted,
			wantStatus:  model.ScaStatusExempted,
			wantMessage: codes.StatusInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := newMemoryWriter()
			authorisation := newAuthorisation(tt.status, model.ScaApproachEmbedded)
			authorisation.AuthenticationMethodID = tt.methodID

			resp, err := newChain(spi.NewMockSPI(), writer).Apply(context.Background(), NewRequest(authorisation, tt.update))

			require.NoError(t, err)
			require.True(t, resp.HasError())
			assert.Equal(t, tt.wantMessage, resp.Error.MessageCode)
			assert.Equal(t, tt.wantStatus, writer.saved["auth-1"].ScaStatus)
		})
	}
}

func TestEmbeddedExemptedPsu(t *testing.T) {
	client := spi.NewMockSPI()
	client.ExemptedPsuIDs["PSU-VIP"] = true

	req := NewRequest(newAuthorisation(model.ScaStatusPsuIdentified, model.ScaApproachEmbedded),
		model.UpdatePsuDataRequest{PsuData: psu("PSU-VIP"), Password: spi.MockPassword})
	resp, err := newChain(client, newMemoryWriter()).Apply(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusExempted, resp.ScaStatus)
}

func TestDecoupledFlow(t *testing.T) {
	writer := newMemoryWriter()
	chain := newChain(spi.NewMockSPI(), writer)
	authorisation := newAuthorisation(model.ScaStatusPsuIdentified, model.ScaApproachDecoupled)
	authorisation.PsuData = psu("PSU-1")
	ctx := context.Background()

	resp, err := chain.Apply(ctx, NewRequest(authorisation, model.UpdatePsuDataRequest{Password: spi.MockPassword}))
	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusScaMethodSelected, resp.ScaStatus)
	assert.Equal(t, "PUSH_DECOUPLED", writer.saved["auth-1"].AuthenticationMethodID)

	resp, err = chain.Apply(ctx, NewRequest(authorisation, model.UpdatePsuDataRequest{}))
	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusStarted, resp.ScaStatus)

	resp, err = chain.Apply(ctx, NewRequest(authorisation, model.UpdatePsuDataRequest{ScaAuthenticationData: spi.MockTan}))
	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusFinalised, resp.ScaStatus)
}

func TestDecoupledWithoutCapableMethod(t *testing.T) {
	client := spi.NewMockSPI()
	client.Methods = spi.DefaultMockMethods[:2]
	authorisation := newAuthorisation(model.ScaStatusReceived, model.ScaApproachDecoupled)

	resp, err := newChain(client, newMemoryWriter()).Apply(context.Background(), NewRequest(authorisation,
		model.UpdatePsuDataRequest{PsuData: psu("PSU-1"), Password: spi.MockPassword}))

	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusPsuAuthenticated, resp.ScaStatus)
	assert.Len(t, resp.AvailableMethods, 2)
}

func TestRedirectOnlyIdentifiesThePsu(t *testing.T) {
	writer := newMemoryWriter()
	chain := newChain(spi.NewMockSPI(), writer)
	authorisation := newAuthorisation(model.ScaStatusReceived, model.ScaApproachRedirect)

	resp, err := chain.Apply(context.Background(), NewRequest(authorisation, model.UpdatePsuDataRequest{PsuData: psu("PSU-1")}))
	require.NoError(t, err)
	assert.Equal(t, model.ScaStatusPsuIdentified, resp.ScaStatus)

	resp, err = chain.Apply(context.Background(), NewRequest(authorisation,
		model.UpdatePsuDataRequest{Password: spi.MockPassword}))
	require.NoError(t, err)
	require.True(t, resp.HasError())
	assert.Equal(t, codes.ServiceBlocked, resp.Error.MessageCode)
	assert.Equal(t, model.ScaStatusPsuIdentified, writer.saved["auth-1"].ScaStatus)
}
