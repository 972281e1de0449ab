package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers liveness probes with a plain "ok".  It deliberately
// checks nothing: a degraded Redis or MySQL shows up in the endpoints
// that use them, not here.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
