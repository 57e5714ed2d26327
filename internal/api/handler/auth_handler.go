package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	tokenTTL    time.Duration
}

func NewAuthHandler(authService ports.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	response
	UserID int64 `json:"user_id,omitempty"`
}

type loginResponse struct {
	response
	Token string `json:"token,omitempty"`
}

// Register creates a new user account with the plain user role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidUsername):
			return respond(c, http.StatusBadRequest, false, "Username must be 1-10 alphanumeric characters.")
		case errors.Is(err, domain.ErrInvalidPassword):
			return respond(c, http.StatusBadRequest, false, "Password must be 6-20 characters.")
		case errors.Is(err, domain.ErrUserExists):
			return respond(c, http.StatusOK, false, "Username already exists.")
		}
		return err
	}

	return c.JSON(http.StatusOK, registerResponse{
		response: response{Success: true, Message: "User registered successfully."},
		UserID:   user.ID,
	})
}

// Login verifies credentials and issues a session token. The token is
// returned in the body and mirrored into a cookie for browser clients.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, false, err.Error())
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return respond(c, http.StatusOK, false, "Invalid username or password.")
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
	})

	return c.JSON(http.StatusOK, loginResponse{
		response: response{Success: true, Message: "Login successful."},
		Token:    token,
	})
}

// Logout clears the session cookie. Tokens themselves stay valid until they
// expire; the server keeps no session state.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return respond(c, http.StatusOK, true, "Logged out successfully.")
}
