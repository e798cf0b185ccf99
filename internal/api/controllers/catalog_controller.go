package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/models/request_models"
	"bookstore/internal/services"
	"bookstore/pkg/utils"
)

type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

func (cc *CartController) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := cc.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, cart, "Cart fetched successfully")
}

// UpdateCart godoc
// @Summary Replace the cart contents
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body request_models.UpdateCartRequest true "Products"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /cart [put]
func (cc *CartController) UpdateCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request request_models.UpdateCartRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	cart, err := cc.cartService.ReplaceCart(c.Request.Context(), userID, request.ProductIDs)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, cart, "Cart updated successfully")
}

type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts godoc
// @Summary Browse the catalogue
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param description query string false "Search title (any language) or author"
// @Param orderColumn query string false "price | createdAt | author"
// @Param order query string false "asc | desc"
// @Param kind query string false "ebook | audiobook | course | podcast"
// @Success 200 {object} utils.APIResponse
// @Router /products [get]
func (pc *ProductController) ListProducts(c *gin.Context) {
	var query request_models.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := pc.productService.ListProducts(c.Request.Context(), query, c.Query("kind"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, page, "Products fetched successfully")
}
