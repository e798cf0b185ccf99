package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithCode(c, http.StatusOK, data, message)
}

func RespondWithCode(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Success: true,
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Success: false,
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

type errorMapping struct {
	err     error
	code    int
	message string
}

var serviceErrors = []errorMapping{
	{ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{ErrWalletNotFound, http.StatusNotFound, "Wallet not found"},
	{ErrTransactionNotFound, http.StatusNotFound, "Wallet transaction not found"},
	{ErrProductNotFound, http.StatusNotFound, "Product not found"},
	{ErrVoucherNotFound, http.StatusNotFound, "Voucher not found"},
	{ErrUserNotFound, http.StatusNotFound, "User not found"},
	{ErrCartNotFound, http.StatusNotFound, "Cart not found"},

	{ErrOrderNotPending, http.StatusConflict, "Order is not awaiting payment"},
	{ErrInsufficientFunds, http.StatusConflict, "Insufficient funds"},
	{ErrTransactionNotPending, http.StatusConflict, "Transaction already processed"},
	{ErrVoucherLimitReached, http.StatusConflict, "Voucher activation limit reached"},
	{ErrVoucherNotApplicable, http.StatusConflict, "Voucher cannot be applied to discounted products"},
	{ErrVoucherInactive, http.StatusConflict, "Voucher is inactive or expired"},
	{ErrAmountMismatch, http.StatusConflict, "Payment amount mismatch"},
	{ErrSettlementInProgress, http.StatusConflict, "Payment is being processed"},

	{ErrInvalidAmount, http.StatusBadRequest, "Amount must be greater than 0"},
	{ErrMissingField, http.StatusBadRequest, "Missing required field"},
	{ErrInvalidPage, http.StatusBadRequest, "Page must be greater than 0"},
	{ErrInvalidPageSize, http.StatusBadRequest, "Page size must be between 1 and 100"},
	{ErrInvalidID, http.StatusBadRequest, "Invalid id"},
	{ErrEmptyOrder, http.StatusBadRequest, "Order must contain at least one product"},
	{ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{ErrInvalidFilter, http.StatusBadRequest, "Invalid filter value"},
	{ErrInvalidKey, http.StatusBadRequest, "Invalid object key"},

	{ErrExternalService, http.StatusBadGateway, "Payment provider is unavailable"},
	{ErrStorageError, http.StatusBadGateway, "Storage service is unavailable"},
}

func HandleServiceError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			if m.code >= http.StatusInternalServerError {
				zap.L().Error("upstream error", zap.Error(err), zap.String("trace_id", c.GetString("trace_id")))
			}
			RespondError(c, m.code, m.message)
			return
		}
	}

	if errors.Is(err, ErrDatabaseError) {
		zap.L().Error("database error", zap.Error(err), zap.String("trace_id", c.GetString("trace_id")))
	} else {
		zap.L().Error("unknown error", zap.Error(err), zap.String("trace_id", c.GetString("trace_id")))
	}
	RespondError(c, http.StatusInternalServerError, "Internal server error")
}
