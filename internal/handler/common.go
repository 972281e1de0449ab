// Package handler exposes the HTTP surface. Handlers bind and validate
// request bodies, call into repositories and services, and translate
// domain errors into status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-lending/internal/lending"
	"github.com/iliyamo/campus-lending/internal/repository"
)

// getUserID extracts the authenticated user's ID from the context.  The
// JWT middleware stores the raw `sub` claim, whose Go type depends on
// how the token was decoded, so every plausible shape is handled.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// domainError translates lending and repository errors into JSON
// responses. Handlers call it after any service or repository failure
// so the status mapping lives in one place:
//
//	not found            -> 404
//	forbidden            -> 403
//	gate/state conflicts -> 409
//	validation           -> 400
//	anything else        -> 500
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lending.ErrItemNotFound),
		errors.Is(err, lending.ErrRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, lending.ErrForbidden),
		errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, lending.ErrItemUnavailable),
		errors.Is(err, lending.ErrSelfBorrow),
		errors.Is(err, lending.ErrDuplicatePending),
		errors.Is(err, lending.ErrItemOnLoan),
		errors.Is(err, repository.ErrConflict),
		lending.IsInvalidTransition(err):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case lending.IsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
