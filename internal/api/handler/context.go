package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// performs a fast-fail check before any service call: a zero user id or an
// empty role means the middleware never ran for this route.
func ctxIdentity(c echo.Context) (userID int64, role string, err error) {
	userID, _ = c.Get("user_id").(int64)
	role, _ = c.Get("role").(string)
	if userID == 0 || role == "" {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, role, nil
}
