package stub

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"haul-tracker/internal/models"
)

// JWTAuth configures Echo's JWT middleware for the stub API. On success
// the driver's identity lands in the request context under "driverID"
// and "driverName".
func JWTAuth(jwtSecret string) echo.MiddlewareFunc {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.JwtCustomClaims)
		},
		SigningKey: []byte(jwtSecret),
		SuccessHandler: func(c echo.Context) {
			token := c.Get("user").(*jwt.Token)
			claims := token.Claims.(*models.JwtCustomClaims)
			c.Set("driverID", claims.DriverID)
			c.Set("driverName", claims.Name)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid or missing token"})
		},
	}
	return echojwt.WithConfig(config)
}
