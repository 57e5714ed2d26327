package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

type OrderHandler struct {
	orderService ports.OrderService
}

func NewOrderHandler(orderService ports.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type purchaseRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required"`
}

type orderIDRequest struct {
	OrderID int64 `json:"order_id" validate:"required,gt=0"`
}

type purchaseResponse struct {
	response
	OrderID   int64  `json:"order_id,omitempty"`
	TotalCost string `json:"total_cost,omitempty"`
}

type listOrdersResponse struct {
	response
	Orders []ports.OrderDetail `json:"orders"`
}

// Purchase places an order for the authenticated user.
func (h *OrderHandler) Purchase(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	result, err := h.orderService.Purchase(c.Request().Context(), ports.PurchaseInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		var inv *domain.InsufficientInventoryError
		switch {
		case errors.Is(err, domain.ErrInvalidQuantity):
			return respond(c, http.StatusBadRequest, false, "Quantity must be at least 1.")
		case errors.Is(err, domain.ErrUserNotFound):
			return respond(c, http.StatusOK, false, "User does not exist.")
		case errors.Is(err, domain.ErrProductNotFound):
			return respond(c, http.StatusOK, false, "Product does not exist.")
		case errors.As(err, &inv):
			return respond(c, http.StatusOK, false,
				fmt.Sprintf("Insufficient inventory (Available: %d).", inv.Available))
		case errors.Is(err, domain.ErrInsufficientDeposit):
			return respond(c, http.StatusOK, false, "Insufficient deposit.")
		}
		return err
	}

	return c.JSON(http.StatusOK, purchaseResponse{
		response:  response{Success: true, Message: "Purchase successful."},
		OrderID:   result.OrderID,
		TotalCost: result.TotalCost.String(),
	})
}

// ListAll returns every order. Admin only.
func (h *OrderHandler) ListAll(c echo.Context) error {
	orders, err := h.orderService.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrdersResponse{
		response: response{Success: true},
		Orders:   orders,
	})
}

// ListForUser returns the authenticated user's own orders.
func (h *OrderHandler) ListForUser(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrdersResponse{
		response: response{Success: true},
		Orders:   orders,
	})
}

// Delete removes an order record. Admin only.
func (h *OrderHandler) Delete(c echo.Context) error {
	var req orderIDRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	if err := h.orderService.Delete(c.Request().Context(), req.OrderID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return respond(c, http.StatusOK, false, "Order does not exist.")
		}
		return err
	}

	return respond(c, http.StatusOK, true, "Order deleted successfully.")
}
