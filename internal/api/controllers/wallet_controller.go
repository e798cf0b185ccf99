package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookstore/internal/models/request_models"
	"bookstore/internal/services"
	"bookstore/pkg/utils"
)

type WalletController struct {
	walletService  services.WalletService
	paymentService services.PaymentService
}

func NewWalletController(walletService services.WalletService, paymentService services.PaymentService) *WalletController {
	return &WalletController{
		walletService:  walletService,
		paymentService: paymentService,
	}
}

// GetBalance godoc
// @Summary Get wallet balance
// @Tags Wallet
// @Produce json
// @Param currency query string false "Wallet currency, defaults to the store currency"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /wallet/balance [get]
func (w *WalletController) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := w.walletService.GetBalance(c.Request.Context(), userID, c.Query("currency"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, balance, "Balance fetched successfully")
}

// ListTransactions godoc
// @Summary List wallet transactions, newest first
// @Tags Wallet
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (w *WalletController) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page number")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page size (must be 1-100)")
		return
	}

	txns, err := w.walletService.ListTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, txns, "Transactions fetched successfully")
}

// AddFunds godoc
// @Summary Top up the wallet through the payment gateway
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body request_models.TopUpRequest true "Top-up amount"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /wallet/add-funds [post]
func (w *WalletController) AddFunds(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request request_models.TopUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	out, err := w.walletService.InitiateTopUp(c.Request.Context(), userID, request.Amount)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, out, "Top-up initialised successfully")
}

// ProcessTopUp is the gateway result callback for wallet top-ups.
func (w *WalletController) ProcessTopUp(c *gin.Context) {
	writeReply(c, w.paymentService.ProcessTopUpResult(c.Request.Context(), callbackParams(c)))
}
