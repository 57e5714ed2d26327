package handler

import "github.com/labstack/echo/v4"

// response is the envelope every endpoint renders. Operations on records
// that turn out not to exist report success=false with HTTP 200; error
// statuses are reserved for validation, authentication, and infrastructure
// failures.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func respond(c echo.Context, status int, success bool, message string) error {
	return c.JSON(status, response{Success: success, Message: message})
}
