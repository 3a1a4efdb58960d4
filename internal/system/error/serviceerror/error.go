package serviceerror

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError is the typed failure returned by every service operation.
// MessageCode carries the PSD2 message code when the failure originates in SCA or
// consent business rules; it is empty for generic failures.
type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
	MessageCode      string           `json:"message_code,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5000",
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5001",
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4000",
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4004",
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4009",
		Error:            "conflict",
		ErrorDescription: "Request conflicts with current state",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4001",
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	// LogicalError reports a business-rule violation such as a missing record
	// or a mutation attempted on a finalised entity.
	LogicalError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CMS-4000",
		Error:            "logical_error",
		ErrorDescription: "The operation violates the consent lifecycle",
	}

	TechnicalError = ServiceError{
		Type:             ServerErrorType,
		Code:             "CMS-5000",
		Error:            "technical_error",
		ErrorDescription: "The operation could not be completed",
	}

	ChecksumConflictError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CMS-4090",
		Error:            "checksum_conflict",
		ErrorDescription: "The consent was modified concurrently",
	}

	ScaError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CMS-4010",
		Error:            "sca_error",
		ErrorDescription: "Strong customer authentication failed",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
		MessageCode:      baseError.MessageCode,
	}
}

// WithMessageCode returns a copy of the error tagged with a PSD2 message code.
func WithMessageCode(baseError ServiceError, messageCode, description string) *ServiceError {
	err := CustomServiceError(baseError, description)
	err.MessageCode = messageCode
	return err
}
