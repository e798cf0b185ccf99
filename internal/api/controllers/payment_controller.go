package controllers

import (
	"github.com/gin-gonic/gin"

	resp "bookstore/internal/models/response_models"
	"bookstore/internal/services"
	"bookstore/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// InitPayment godoc
// @Summary Start paying for an order
// @Description Creates a hosted payment session and returns the redirect URL. Orders fully covered by voucher and points settle immediately.
// @Tags Payments
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/init/{orderId} [post]
func (p *PaymentController) InitPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "orderId")
	if !ok {
		return
	}

	out, err := p.paymentService.InitOrderPayment(c.Request.Context(), userID, orderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, out, "Payment initialised successfully")
}

// PayWithWallet godoc
// @Summary Pay for an order from the wallet balance
// @Tags Payments
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/wallet/{orderId} [post]
func (p *PaymentController) PayWithWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "orderId")
	if !ok {
		return
	}

	order, err := p.paymentService.PayWithWallet(c.Request.Context(), userID, orderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp.NewOrderResponse(order), "Order paid from wallet")
}

func (p *PaymentController) GetPaymentStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "orderId")
	if !ok {
		return
	}

	out, err := p.paymentService.GetPaymentStatus(c.Request.Context(), userID, orderID, isAdmin(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, out, "Payment status fetched successfully")
}

// Check is the gateway's pre-authorisation callback.
func (p *PaymentController) Check(c *gin.Context) {
	writeReply(c, p.paymentService.ProcessCheckRequest(c.Request.Context(), callbackParams(c)))
}

// Result is the gateway's authoritative payment result callback.
func (p *PaymentController) Result(c *gin.Context) {
	writeReply(c, p.paymentService.ProcessResultRequest(c.Request.Context(), callbackParams(c)))
}

func (p *PaymentController) Success(c *gin.Context) {
	out := p.paymentService.RedirectStatus(c.Request.Context(), "success", callbackParams(c))
	utils.RespondSuccess(c, out, "Payment completed")
}

func (p *PaymentController) Failure(c *gin.Context) {
	out := p.paymentService.RedirectStatus(c.Request.Context(), "failure", callbackParams(c))
	utils.RespondSuccess(c, out, "Payment was not completed")
}
