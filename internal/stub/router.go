package stub

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SetupRoutes registers the stub API's endpoints on e.
func SetupRoutes(e *echo.Echo, h *Handler, jwtSecret string) {
	authRequired := JWTAuth(jwtSecret)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "haul-tracker stub backend"})
	})

	api := e.Group("/api")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		api.POST("/status/update", h.UpdateStatus, authRequired)
		api.POST("/locations/update", h.UpdateLocation, authRequired)
		api.GET("/plan/list", h.ListPlans, authRequired)
	}
}
