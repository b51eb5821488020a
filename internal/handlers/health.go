package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "dreamscape-api",
	})
}

func Index(c echo.Context) error {
	return c.String(http.StatusOK, "Hello from Dreamscape!")
}
