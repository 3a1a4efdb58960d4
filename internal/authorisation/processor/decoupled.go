package processor

import (
	"context"
	"errors"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// DecoupledService logs the PSU in through the TPP and lets it confirm the
// request in a separate banking app.
type DecoupledService struct {
	baseService
	spi spi.AuthorisationSPI
}

// NewDecoupledService creates the decoupled approach service.
func NewDecoupledService(client spi.AuthorisationSPI, writer AuthorisationWriter, now func() time.Time) *DecoupledService {
	return &DecoupledService{
		baseService: newBaseService(writer, now, "DecoupledScaService"),
		spi:         client,
	}
}

func (s *DecoupledService) DoScaReceived(ctx context.Context, req *Request) *Response {
	return s.authenticate(ctx, req)
}

func (s *DecoupledService) DoScaPsuIdentified(ctx context.Context, req *Request) *Response {
	return s.authenticate(ctx, req)
}

func (s *DecoupledService) DoScaPsuAuthenticated(ctx context.Context, req *Request) *Response {
	if req.Update.AuthenticationMethodID == "" {
		return stepError(req, serviceerror.ScaError, codes.FormatError, "authenticationMethodId is required")
	}
	return s.start(ctx, req, req.Update.AuthenticationMethodID)
}

// DoScaMethodSelected moves to STARTED while the PSU has not confirmed yet.
func (s *DecoupledService) DoScaMethodSelected(ctx context.Context, req *Request) *Response {
	if req.Update.ScaAuthenticationData == "" {
		return &Response{
			ScaStatus:  model.ScaStatusStarted,
			PsuData:    effectivePsu(req),
			PsuMessage: "Waiting for confirmation in the banking app",
		}
	}
	return verifyAuthenticationData(ctx, s.spi, req)
}

func (s *DecoupledService) DoScaStarted(ctx context.Context, req *Request) *Response {
	if req.Update.ScaAuthenticationData == "" {
		return stepError(req, serviceerror.ScaError, codes.FormatError, "scaAuthenticationData is required")
	}
	return verifyAuthenticationData(ctx, s.spi, req)
}

func (s *DecoupledService) authenticate(ctx context.Context, req *Request) *Response {
	login, resp := authenticatePsu(ctx, s.spi, req)
	if resp != nil {
		return resp
	}
	for _, method := range login.Methods {
		if method.DecoupledCapable {
			return s.start(ctx, req, method.ID)
		}
	}
	return &Response{
		ScaStatus:        model.ScaStatusPsuAuthenticated,
		PsuData:          effectivePsu(req),
		AvailableMethods: login.Methods,
	}
}

func (s *DecoupledService) start(ctx context.Context, req *Request, methodID string) *Response {
	challenge, err := s.spi.StartDecoupled(ctx, effectivePsu(req), methodID)
	if errors.Is(err, spi.ErrUnknownMethod) {
		return stepError(req, serviceerror.ScaError, codes.ScaMethodUnknown, err.Error())
	}
	if err != nil {
		return spiFailure(req, err)
	}
	return &Response{
		ScaStatus:    model.ScaStatusScaMethodSelected,
		PsuData:      effectivePsu(req),
		ChosenMethod: &spi.AuthenticationMethod{ID: challenge.MethodID, DecoupledCapable: true},
		PsuMessage:   challenge.Message,
	}
}
