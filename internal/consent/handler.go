package consent

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/constants"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

type consentHandler struct {
	service ConsentService
}

func newConsentHandler(service ConsentService) *consentHandler {
	return &consentHandler{
		service: service,
	}
}

// createConsent handles POST /consents
func (h *consentHandler) createConsent(c *gin.Context) {
	var req model.CreateConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	if req.TppID == "" {
		req.TppID = c.GetHeader(constants.HeaderTPPClientID)
	}

	response, serviceErr := h.service.CreateConsent(c.Request.Context(), utils.GetOrgID(c), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// getConsent handles GET /consents/:consentId
func (h *consentHandler) getConsent(c *gin.Context) {
	response, serviceErr := h.service.GetConsent(c.Request.Context(), utils.GetOrgID(c), c.Param("consentId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// getConsentStatus handles GET /consents/:consentId/status
func (h *consentHandler) getConsentStatus(c *gin.Context) {
	response, serviceErr := h.service.GetConsentStatus(c.Request.Context(), utils.GetOrgID(c), c.Param("consentId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// updateConsentStatus handles PUT /consents/:consentId/status
func (h *consentHandler) updateConsentStatus(c *gin.Context) {
	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	consentID := c.Param("consentId")
	if serviceErr := h.service.UpdateConsentStatus(c.Request.Context(), utils.GetOrgID(c), consentID, req.Status); serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, model.ConsentStatusResponse{ConsentID: consentID, ConsentStatus: req.Status})
}

// updateAspspAccess handles PUT /consents/:consentId/access
func (h *consentHandler) updateAspspAccess(c *gin.Context) {
	var req model.UpdateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	ok, serviceErr := h.service.UpdateAspspAccountAccess(c.Request.Context(), utils.GetOrgID(c), c.Param("consentId"), req)
	sendResult(c, ok, serviceErr)
}

// updateMultilevelSca handles PUT /consents/:consentId/multilevel-sca
func (h *consentHandler) updateMultilevelSca(c *gin.Context) {
	var req model.MultilevelScaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	ok, serviceErr := h.service.UpdateMultilevelScaRequired(c.Request.Context(), utils.GetOrgID(c),
		c.Param("consentId"), req.MultilevelScaRequired)
	sendResult(c, ok, serviceErr)
}

// terminateOldConsents handles POST /consents/:consentId/terminate-old
func (h *consentHandler) terminateOldConsents(c *gin.Context) {
	ok, serviceErr := h.service.FindAndTerminateOldConsents(c.Request.Context(), utils.GetOrgID(c), c.Param("consentId"))
	sendResult(c, ok, serviceErr)
}

// recordUsage handles POST /consents/:consentId/usage
func (h *consentHandler) recordUsage(c *gin.Context) {
	var req model.UsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	if serviceErr := h.service.RecordUsage(c.Request.Context(), utils.GetOrgID(c), c.Param("consentId"), req.RequestURI); serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.Status(http.StatusNoContent)
}

// getConsentsForPsu handles GET /psu/consents
func (h *consentHandler) getConsentsForPsu(c *gin.Context) {
	consents, serviceErr := h.service.GetConsentsForPsu(c.Request.Context(), utils.GetOrgID(c), psuFromHeaders(c))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, model.ConsentListResponse{Data: consents})
}

func (h *consentHandler) confirmConsent(c *gin.Context) {
	h.psuAction(c, h.service.ConfirmConsent)
}

func (h *consentHandler) rejectConsent(c *gin.Context) {
	h.psuAction(c, h.service.RejectConsent)
}

func (h *consentHandler) revokeConsent(c *gin.Context) {
	h.psuAction(c, h.service.RevokeConsent)
}

func (h *consentHandler) authorisePartially(c *gin.Context) {
	h.psuAction(c, h.service.AuthorisePartially)
}

// updatePsuData handles PUT /psu/consents/:consentId/psu-data
func (h *consentHandler) updatePsuData(c *gin.Context) {
	ok, serviceErr := h.service.UpdatePsuDataInConsent(c.Request.Context(), utils.GetOrgID(c), c.Param("consentId"), psuFromHeaders(c))
	sendResult(c, ok, serviceErr)
}

func (h *consentHandler) psuAction(c *gin.Context,
	action func(ctx context.Context, orgID, consentID string) (bool, *serviceerror.ServiceError)) {
	ok, serviceErr := action(c.Request.Context(), utils.GetOrgID(c), c.Param("consentId"))
	sendResult(c, ok, serviceErr)
}

func sendResult(c *gin.Context, ok bool, serviceErr *serviceerror.ServiceError) {
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, model.ResultResponse{Result: ok})
}

// psuFromHeaders reads the PSU identity carried in the PSU-* request headers.
func psuFromHeaders(c *gin.Context) model.PsuIdData {
	return model.PsuIdData{
		PsuID:              c.GetHeader(constants.PsuIDHeaderName),
		PsuIDType:          c.GetHeader(constants.PsuIDTypeHeaderName),
		PsuCorporateID:     c.GetHeader(constants.PsuCorporateIDHeaderName),
		PsuCorporateIDType: c.GetHeader(constants.PsuCorporateIDTypeHeaderName),
		PsuIPAddress:       c.GetHeader(constants.PsuIPAddressHeaderName),
	}
}
