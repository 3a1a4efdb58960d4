package authorisation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

type authorisationHandler struct {
	service AuthorisationService
}

func newAuthorisationHandler(service AuthorisationService) *authorisationHandler {
	return &authorisationHandler{
		service: service,
	}
}

// createAuthorisation handles POST /{resource}/:id/authorisations
func (h *authorisationHandler) createAuthorisation(authType model.AuthorisationType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateAuthorisationRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				utils.SendBadRequest(c, "Invalid request body")
				return
			}
		}
		response, serviceErr := h.service.CreateAuthorisation(c.Request.Context(), utils.GetOrgID(c), c.Param(param), authType, req)
		if serviceErr != nil {
			utils.SendError(c, serviceErr)
			return
		}
		c.JSON(http.StatusCreated, response)
	}
}

// updatePsuData handles PUT /{resource}/:id/authorisations/:authorisationId
func (h *authorisationHandler) updatePsuData(authType model.AuthorisationType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdatePsuDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendBadRequest(c, "Invalid request body")
			return
		}
		response, serviceErr := h.service.UpdatePsuData(c.Request.Context(), utils.GetOrgID(c), c.Param(param),
			c.Param("authorisationId"), authType, req)
		if serviceErr != nil {
			utils.SendError(c, serviceErr)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

// getScaStatus handles GET /{resource}/:id/authorisations/:authorisationId/status
func (h *authorisationHandler) getScaStatus(authType model.AuthorisationType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response, serviceErr := h.service.GetScaStatus(c.Request.Context(), utils.GetOrgID(c), c.Param(param),
			c.Param("authorisationId"), authType)
		if serviceErr != nil {
			utils.SendError(c, serviceErr)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

// getPsuDataAuthorisations handles GET /{resource}/:id/authorisations
func (h *authorisationHandler) getPsuDataAuthorisations(authType model.AuthorisationType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response, serviceErr := h.service.GetPsuDataAuthorisations(c.Request.Context(), utils.GetOrgID(c), c.Param(param), authType)
		if serviceErr != nil {
			utils.SendError(c, serviceErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"authorisations": response})
	}
}

// getByRedirectID handles GET /psu/redirects/:redirectId
func (h *authorisationHandler) getByRedirectID(c *gin.Context) {
	response, err := h.service.GetAuthorisationByRedirectID(c.Request.Context(), utils.GetOrgID(c), c.Param("redirectId"))
	if err == nil {
		c.JSON(http.StatusOK, response)
		return
	}

	var authExpired *AuthorisationExpiredError
	var linkExpired *RedirectURLExpiredError
	var lookup *LookupError
	switch {
	case errors.As(err, &authExpired):
		utils.SendRedirectError(c, http.StatusForbidden, codes.ResourceExpired, err.Error(), authExpired.NokRedirectURI)
	case errors.As(err, &linkExpired):
		utils.SendRedirectError(c, http.StatusForbidden, codes.ResourceExpired, err.Error(), linkExpired.NokRedirectURI)
	case errors.As(err, &lookup):
		utils.SendError(c, lookup.ServiceError)
	default:
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// updateScaStatus handles PUT /psu/authorisations/:authorisationId/status/:status
func (h *authorisationHandler) updateScaStatus(c *gin.Context) {
	ok, serviceErr := h.service.UpdateScaStatus(c.Request.Context(), utils.GetOrgID(c), c.Param("authorisationId"),
		model.ScaStatus(c.Param("status")))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, model.ResultResponse{Result: ok})
}

// updateAuthenticationMethod handles PUT /psu/authorisations/:authorisationId/method
func (h *authorisationHandler) updateAuthenticationMethod(c *gin.Context) {
	var req model.UpdateAuthenticationMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	ok, serviceErr := h.service.UpdateAuthenticationMethod(c.Request.Context(), utils.GetOrgID(c),
		c.Param("authorisationId"), req.AuthenticationMethodID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, model.ResultResponse{Result: ok})
}
