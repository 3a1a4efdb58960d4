package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/psd2-consent-mgt/internal/payment/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/constants"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

type paymentHandler struct {
	service PaymentService
}

func newPaymentHandler(service PaymentService) *paymentHandler {
	return &paymentHandler{
		service: service,
	}
}

// createPayment handles POST /payments
func (h *paymentHandler) createPayment(c *gin.Context) {
	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	if req.TppID == "" {
		req.TppID = c.GetHeader(constants.HeaderTPPClientID)
	}
	response, serviceErr := h.service.CreateCommonPayment(c.Request.Context(), utils.GetOrgID(c), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// getPayment handles GET /payments/:paymentId
func (h *paymentHandler) getPayment(c *gin.Context) {
	response, serviceErr := h.service.GetPayment(c.Request.Context(), utils.GetOrgID(c), c.Param("paymentId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// getPaymentStatus handles GET /payments/:paymentId/status
func (h *paymentHandler) getPaymentStatus(c *gin.Context) {
	response, serviceErr := h.service.GetPaymentStatus(c.Request.Context(), utils.GetOrgID(c), c.Param("paymentId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, response)
}

// updatePaymentStatus handles PUT /payments/:paymentId/status
func (h *paymentHandler) updatePaymentStatus(c *gin.Context) {
	var req model.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	ok, serviceErr := h.service.UpdatePaymentStatus(c.Request.Context(), utils.GetOrgID(c), c.Param("paymentId"), req.TransactionStatus)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, model.ResultResponse{Result: ok})
}

// updateMultilevelSca handles PUT /payments/:paymentId/multilevel-sca
func (h *paymentHandler) updateMultilevelSca(c *gin.Context) {
	var req model.MultilevelScaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "Invalid request body")
		return
	}
	ok, serviceErr := h.service.UpdateMultilevelSca(c.Request.Context(), utils.GetOrgID(c), c.Param("paymentId"), req.MultilevelScaRequired)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, model.ResultResponse{Result: ok})
}

// getPsuDataList handles GET /payments/:paymentId/psu-data
func (h *paymentHandler) getPsuDataList(c *gin.Context) {
	psuData, serviceErr := h.service.GetPsuDataList(c.Request.Context(), utils.GetOrgID(c), c.Param("paymentId"))
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}
	c.JSON(http.StatusOK, psuData)
}
