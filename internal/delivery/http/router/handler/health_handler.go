// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"

	"meditrack/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports process liveness. It is registered outside any
// middleware chain so load balancers can probe it unauthenticated.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{
		"status": "ok",
	}, "Service healthy")
}
