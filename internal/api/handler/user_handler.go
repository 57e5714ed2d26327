package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type userIDRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type updateRoleRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Role   string `json:"role" validate:"required"`
}

type depositRequest struct {
	// Validated manually: validator tags do not compose with decimal.Decimal.
	Amount decimal.Decimal `json:"amount"`
}

type listUsersResponse struct {
	response
	Users []domain.User `json:"users"`
}

type depositResponse struct {
	response
	Deposit decimal.Decimal `json:"deposit"`
}

// List returns every user account. Admin only.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listUsersResponse{
		response: response{Success: true},
		Users:    users,
	})
}

// Delete removes a user account. Admin only; admin accounts are protected.
func (h *UserHandler) Delete(c echo.Context) error {
	var req userIDRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	rows, err := h.userService.Delete(c.Request().Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return respond(c, http.StatusOK, false, "User does not exist.")
		case errors.Is(err, domain.ErrForbidden):
			return respond(c, http.StatusForbidden, false, "Cannot delete an admin account.")
		}
		return err
	}

	return respond(c, http.StatusOK, true, fmt.Sprintf("Deleted rows: %d", rows))
}

// UpdateRole changes a user's role. Admin only.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	err := h.userService.UpdateRole(c.Request().Context(), req.UserID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRole):
			return respond(c, http.StatusBadRequest, false, "Role must be 'user' or 'admin'.")
		case errors.Is(err, domain.ErrUserNotFound):
			return respond(c, http.StatusOK, false, "User does not exist.")
		}
		return err
	}

	return respond(c, http.StatusOK, true, "Role updated successfully.")
}

// AddDeposit credits the authenticated user's own balance.
func (h *UserHandler) AddDeposit(c echo.Context) error {
	return h.adjustDeposit(c, false)
}

// SubtractDeposit debits the authenticated user's own balance.
func (h *UserHandler) SubtractDeposit(c echo.Context) error {
	return h.adjustDeposit(c, true)
}

func (h *UserHandler) adjustDeposit(c echo.Context, subtract bool) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req depositRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if !req.Amount.IsPositive() {
		return respond(c, http.StatusBadRequest, false, "Amount must be positive.")
	}

	var user *domain.User
	if subtract {
		user, err = h.userService.SubtractDeposit(c.Request().Context(), userID, req.Amount)
	} else {
		user, err = h.userService.AddDeposit(c.Request().Context(), userID, req.Amount)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return respond(c, http.StatusOK, false, "User does not exist.")
		case errors.Is(err, domain.ErrInsufficientDeposit):
			return respond(c, http.StatusOK, false, "Insufficient deposit.")
		}
		return err
	}

	return c.JSON(http.StatusOK, depositResponse{
		response: response{Success: true, Message: "Deposit updated successfully."},
		Deposit:  user.Deposit,
	})
}
