package processor

import (
	"context"
	"fmt"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/metrics"
)

type stage struct {
	status model.ScaStatus
	handle func(ApproachService, context.Context, *Request) *Response
}

// stages is the chain in SCA status order.
var stages = []stage{
	{model.ScaStatusReceived, ApproachService.DoScaReceived},
	{model.ScaStatusPsuIdentified, ApproachService.DoScaPsuIdentified},
	{model.ScaStatusPsuAuthenticated, ApproachService.DoScaPsuAuthenticated},
	{model.ScaStatusScaMethodSelected, ApproachService.DoScaMethodSelected},
	{model.ScaStatusStarted, ApproachService.DoScaStarted},
	{model.ScaStatusFinalised, ApproachService.DoScaFinalised},
	{model.ScaStatusFailed, ApproachService.DoScaFailed},
	{model.ScaStatusExempted, ApproachService.DoScaExempted},
}

// Chain applies one SCA step to an authorisation.
type Chain struct {
	registry *Registry
	logger   *log.Logger
}

// NewChain creates a chain resolving approach services from registry.
func NewChain(registry *Registry) *Chain {
	return &Chain{
		registry: registry,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuthorisationChain")),
	}
}

// Apply runs the step for req.ScaStatus and persists its outcome through the
// approach service. A returned error is either a *ConfigurationError or a
// persistence failure; business failures are carried in Response.Error.
func (c *Chain) Apply(ctx context.Context, req *Request) (*Response, error) {
	service, err := c.registry.Service(req.Type, req.ScaApproach)
	if err != nil {
		return nil, err
	}

	var resp *Response
	for _, st := range stages {
		if st.status == req.ScaStatus {
			resp = st.handle(service, ctx, req)
			break
		}
	}
	if resp == nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("no step registered for SCA status %q", req.ScaStatus)}
	}

	if err := service.UpdateAuthorisation(ctx, req, resp); err != nil {
		return resp, fmt.Errorf("failed to persist authorisation: %w", err)
	}

	if resp.ScaStatus != req.ScaStatus {
		metrics.ScaTransitions.WithLabelValues(string(req.ScaApproach), string(req.ScaStatus), string(resp.ScaStatus)).Inc()
		c.logger.Info("SCA status changed",
			log.String("authorisation_id", req.Authorisation.AuthorisationID),
			log.String("approach", string(req.ScaApproach)),
			log.String("from", string(req.ScaStatus)),
			log.String("to", string(resp.ScaStatus)))
	}
	return resp, nil
}
