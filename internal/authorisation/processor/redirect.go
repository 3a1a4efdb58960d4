package processor

import (
	"context"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// RedirectService only accepts the PSU identification from the TPP. The PSU
// authenticates on the ASPSP pages, which report progress through the PSU API.
type RedirectService struct {
	baseService
}

// NewRedirectService creates the redirect approach service.
func NewRedirectService(writer AuthorisationWriter, now func() time.Time) *RedirectService {
	return &RedirectService{baseService: newBaseService(writer, now, "RedirectScaService")}
}

func (s *RedirectService) DoScaReceived(_ context.Context, req *Request) *Response {
	psu := effectivePsu(req)
	if psu.IsEmpty() {
		return stepError(req, serviceerror.ScaError, codes.FormatError, "PSU-ID is required")
	}
	return &Response{ScaStatus: model.ScaStatusPsuIdentified, PsuData: psu}
}

func (s *RedirectService) DoScaPsuIdentified(_ context.Context, req *Request) *Response {
	return redirectOnly(req)
}

func (s *RedirectService) DoScaPsuAuthenticated(_ context.Context, req *Request) *Response {
	return redirectOnly(req)
}

func (s *RedirectService) DoScaMethodSelected(_ context.Context, req *Request) *Response {
	return redirectOnly(req)
}

func (s *RedirectService) DoScaStarted(_ context.Context, req *Request) *Response {
	return redirectOnly(req)
}

func redirectOnly(req *Request) *Response {
	return stepError(req, serviceerror.ScaError, codes.ServiceBlocked,
		"redirect authorisations are completed on the ASPSP pages")
}
