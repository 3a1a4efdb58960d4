package processor

import (
	"fmt"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
)

// Registry maps an authorisation type and SCA approach to its approach service.
// It is filled once at startup and read concurrently afterwards.
type Registry struct {
	services map[model.AuthorisationType]map[model.ScaApproach]ApproachService
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[model.AuthorisationType]map[model.ScaApproach]ApproachService)}
}

// NewDefaultRegistry registers the redirect, decoupled and embedded services for
// every authorisation type.
func NewDefaultRegistry(client spi.AuthorisationSPI, writer AuthorisationWriter, now func() time.Time) *Registry {
	registry := NewRegistry()
	redirect := NewRedirectService(writer, now)
	decoupled := NewDecoupledService(client, writer, now)
	embedded := NewEmbeddedService(client, writer, now)

	for _, authType := range []model.AuthorisationType{
		model.AuthorisationTypeAis,
		model.AuthorisationTypePisCreation,
		model.AuthorisationTypePisCancellation,
	} {
		registry.Register(authType, model.ScaApproachRedirect, redirect)
		registry.Register(authType, model.ScaApproachDecoupled, decoupled)
		registry.Register(authType, model.ScaApproachEmbedded, embedded)
	}
	return registry
}

// Register binds service to the given type and approach.
func (r *Registry) Register(authType model.AuthorisationType, approach model.ScaApproach, service ApproachService) {
	byApproach, ok := r.services[authType]
	if !ok {
		byApproach = make(map[model.ScaApproach]ApproachService)
		r.services[authType] = byApproach
	}
	byApproach[approach] = service
}

// Service returns the approach service for the given type and approach.
func (r *Registry) Service(authType model.AuthorisationType, approach model.ScaApproach) (ApproachService, error) {
	byApproach, ok := r.services[authType]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("no approach services for authorisation type %q", authType)}
	}
	service, ok := byApproach[approach]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("no %s service for authorisation type %q", approach, authType)}
	}
	return service, nil
}
