package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/system/constants"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/apierror"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// StatusCodeFor maps a ServiceError onto an HTTP status code.
func StatusCodeFor(err *serviceerror.ServiceError) int {
	if status := codes.HTTPStatus(err.MessageCode); status != 0 {
		return status
	}
	if err.Type != serviceerror.ClientErrorType {
		return http.StatusInternalServerError
	}
	switch err.Code {
	case serviceerror.ResourceNotFoundError.Code:
		return http.StatusNotFound
	case serviceerror.ConflictError.Code, serviceerror.ChecksumConflictError.Code:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// SendError writes a ServiceError as an HTTP response with appropriate status code.
func SendError(c *gin.Context, err *serviceerror.ServiceError) {
	c.AbortWithStatusJSON(StatusCodeFor(err), apierror.ErrorResponse{
		Code:        err.Error,
		Description: err.ErrorDescription,
		MessageCode: err.MessageCode,
	})
}

// SendRedirectError writes an error that still carries the PSU redirect target.
func SendRedirectError(c *gin.Context, status int, code, description, redirectURI string) {
	c.AbortWithStatusJSON(status, apierror.ErrorResponse{
		Code:        code,
		Description: description,
		RedirectURI: redirectURI,
	})
}

// SendBadRequest writes an invalid_request error with the given description.
func SendBadRequest(c *gin.Context, description string) {
	SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, description))
}

// GetOrgID returns the organization from the request header, falling back to the default tenant.
func GetOrgID(c *gin.Context) string {
	if orgID := c.GetHeader(constants.HeaderOrgID); orgID != "" {
		return orgID
	}
	return constants.DefaultOrgID
}
