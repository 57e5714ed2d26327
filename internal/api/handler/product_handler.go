package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

type ProductHandler struct {
	productService ports.ProductService
}

func NewProductHandler(productService ports.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

type adjustInventoryRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	// ChangeAmount is a signed delta; negative values remove stock.
	ChangeAmount int `json:"change_amount" validate:"required"`
}

type updatePriceRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	// A pointer distinguishes a missing field from an explicit zero price;
	// validated manually since validator tags do not compose with decimals.
	NewPrice *decimal.Decimal `json:"new_price"`
}

type productIDRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type listProductsResponse struct {
	response
	Products []domain.Product `json:"products"`
}

type createProductResponse struct {
	response
	ProductID int64 `json:"product_id,omitempty"`
}

type inventoryResponse struct {
	response
	Inventory int `json:"inventory"`
}

// List returns the catalog. Any authenticated user.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listProductsResponse{
		response: response{Success: true},
		Products: products,
	})
}

// Create adds a catalog entry from a multipart form. Admin only. An optional
// image part is accepted and discarded; static asset storage is out of scope
// and the overall request size is already capped by the body limit.
func (h *ProductHandler) Create(c echo.Context) error {
	name := c.FormValue("name")

	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil {
		return respond(c, http.StatusBadRequest, false, "Price must be a valid number.")
	}

	inventory, err := strconv.Atoi(c.FormValue("inventory"))
	if err != nil {
		return respond(c, http.StatusBadRequest, false, "Inventory must be a whole number.")
	}

	product, err := h.productService.Create(c.Request().Context(), ports.CreateProductInput{
		Name:        name,
		Price:       price,
		Inventory:   inventory,
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProduct):
			return respond(c, http.StatusBadRequest, false, "Product name is required.")
		case errors.Is(err, domain.ErrNegativePrice):
			return respond(c, http.StatusBadRequest, false, "Price cannot be negative.")
		case errors.Is(err, domain.ErrNegativeInventory):
			return respond(c, http.StatusBadRequest, false, "Inventory cannot be negative.")
		case errors.Is(err, domain.ErrProductExists):
			return respond(c, http.StatusOK, false, "Product already exists.")
		}
		return err
	}

	return c.JSON(http.StatusCreated, createProductResponse{
		response:  response{Success: true, Message: "Product created successfully."},
		ProductID: product.ID,
	})
}

// AdjustInventory applies a signed stock delta. Any authenticated user.
func (h *ProductHandler) AdjustInventory(c echo.Context) error {
	var req adjustInventoryRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	product, err := h.productService.AdjustInventory(c.Request().Context(), req.ProductID, req.ChangeAmount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return respond(c, http.StatusOK, false, "Product does not exist.")
		case errors.Is(err, domain.ErrNegativeInventory):
			return respond(c, http.StatusBadRequest, false, "Inventory cannot be negative.")
		}
		return err
	}

	return c.JSON(http.StatusOK, inventoryResponse{
		response:  response{Success: true, Message: "Inventory updated successfully."},
		Inventory: product.Inventory,
	})
}

// UpdatePrice sets a product's unit price. Admin only.
func (h *ProductHandler) UpdatePrice(c echo.Context) error {
	var req updatePriceRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}
	if req.NewPrice == nil {
		return respond(c, http.StatusBadRequest, false, "Price is required.")
	}

	err := h.productService.UpdatePrice(c.Request().Context(), req.ProductID, *req.NewPrice)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNegativePrice):
			return respond(c, http.StatusBadRequest, false, "Price cannot be negative.")
		case errors.Is(err, domain.ErrProductNotFound):
			return respond(c, http.StatusOK, false, "Product does not exist.")
		}
		return err
	}

	return respond(c, http.StatusOK, true, "Price updated successfully.")
}

// Delete removes a catalog entry. Admin only. Orders referencing the product
// are removed by the cascade.
func (h *ProductHandler) Delete(c echo.Context) error {
	var req productIDRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	rows, err := h.productService.Delete(c.Request().Context(), req.ProductID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return respond(c, http.StatusOK, false, "Product does not exist.")
	}

	return respond(c, http.StatusOK, true, fmt.Sprintf("Deleted rows: %d", rows))
}
