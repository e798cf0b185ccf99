package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/models/request_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/services"
	"bookstore/pkg/utils"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CreateOrder godoc
// @Summary Place an order
// @Description Orders the given products, or the cart when product_ids is empty. An optional voucher and loyalty points reduce the total.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body request_models.CreateOrderRequest true "Order"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /orders [post]
func (o *OrderController) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request request_models.CreateOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	order, err := o.orderService.CreateOrder(c.Request.Context(), userID, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithCode(c, http.StatusCreated, resp.NewOrderResponse(order), "Order created successfully")
}

// ListOrders godoc
// @Summary List orders (admin)
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param description query string false "Search identifier, transaction id or payment method"
// @Param orderColumn query string false "Sort column"
// @Param order query string false "asc | desc"
// @Param status query string false "pending | completed | failed"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /orders [get]
func (o *OrderController) ListOrders(c *gin.Context) {
	var query request_models.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := o.orderService.ListOrders(c.Request.Context(), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, page, "Orders fetched successfully")
}

func (o *OrderController) OrderStats(c *gin.Context) {
	stats, err := o.orderService.OrderStats(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, stats, "Order stats fetched successfully")
}

// GetOrder returns one order. Users only see their own.
func (o *OrderController) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := o.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if !isAdmin(c) && order.UserID != userID {
		utils.HandleServiceError(c, utils.ErrOrderNotFound)
		return
	}

	utils.RespondSuccess(c, resp.NewOrderResponse(order), "Order fetched successfully")
}

func (o *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var request request_models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	order, err := o.orderService.UpdateOrder(c.Request.Context(), id, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp.NewOrderResponse(order), "Order updated successfully")
}
