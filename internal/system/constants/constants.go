package constants

const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	OrgIDHeaderName         = "X-Organization-ID"
	TPPClientIDHeaderName   = "X-TPP-Client-ID"
	ContentTypeJSON         = "application/json"

	// PSU identity headers
	PsuIDHeaderName              = "PSU-ID"
	PsuIDTypeHeaderName          = "PSU-ID-Type"
	PsuCorporateIDHeaderName     = "PSU-Corporate-ID"
	PsuCorporateIDTypeHeaderName = "PSU-Corporate-ID-Type"
	PsuIPAddressHeaderName       = "PSU-IP-Address"

	APIBasePath = "/api/v1"

	// Context keys
	ContextKeyCorrelationID = "correlation_id"
	ContextKeyOrgID         = "orgID"
	ContextKeyClientID      = "clientID"

	// DefaultOrgID is used when the request carries no organization header.
	DefaultOrgID = "DEFAULT"

	// Aliases for convenience
	HeaderContentType = ContentTypeHeaderName
	HeaderOrgID       = OrgIDHeaderName
	HeaderTPPClientID = TPPClientIDHeaderName
)
