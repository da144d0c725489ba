package stub

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"haul-tracker/internal/models"
)

// Handler holds the stub API's state and endpoints.
type Handler struct {
	drivers   *DriverRegistry
	statuses  *StatusLog
	locations *LocationLog
	plans     *PlanTable
	jwtSecret string
	tokenTTL  time.Duration
	validate  *validator.Validate
}

// NewHandler wires a stub handler over the given stores.
func NewHandler(drivers *DriverRegistry, statuses *StatusLog, locations *LocationLog, plans *PlanTable, jwtSecret string) *Handler {
	return &Handler{
		drivers:   drivers,
		statuses:  statuses,
		locations: locations,
		plans:     plans,
		jwtSecret: jwtSecret,
		tokenTTL:  72 * time.Hour,
		validate:  validator.New(),
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.RegisterResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.RegisterResponse{Message: "Validation failed: " + err.Error()})
	}

	if _, err := h.drivers.Register(req.Name, req.Phone, req.Password); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return c.JSON(http.StatusConflict, models.RegisterResponse{Message: "Name already registered"})
		}
		c.Logger().Error("stub.Register: ", err)
		return c.JSON(http.StatusInternalServerError, models.RegisterResponse{Message: "Failed to register"})
	}

	return c.JSON(http.StatusCreated, models.RegisterResponse{Success: true})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.LoginResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.LoginResponse{Message: "Name and password are required"})
	}

	driver, err := h.drivers.Authenticate(req.Name, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.LoginResponse{Message: "Invalid name or password"})
	}

	token, err := h.signToken(driver)
	if err != nil {
		c.Logger().Error("stub.Login: ", err)
		return c.JSON(http.StatusInternalServerError, models.LoginResponse{Message: "Failed to issue token"})
	}

	return c.JSON(http.StatusOK, models.LoginResponse{Success: true, Token: token, Driver: &driver})
}

// UpdateStatus handles POST /api/status/update.
func (h *Handler) UpdateStatus(c echo.Context) error {
	var req models.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	driverID, _ := c.Get("driverID").(string)
	h.statuses.Append(driverID, req)

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// UpdateLocation handles POST /api/locations/update.
func (h *Handler) UpdateLocation(c echo.Context) error {
	var ping models.LocationPing
	if err := c.Bind(&ping); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(ping); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	h.locations.Append(ping)

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ListPlans handles GET /api/plan/list.
func (h *Handler) ListPlans(c echo.Context) error {
	date := c.QueryParam("deliveryDate")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	plans := h.plans.ListFor(date)
	if len(plans) == 0 {
		return c.JSON(http.StatusOK, models.PlanListResponse{OK: false, Message: "No plans for " + date})
	}

	return c.JSON(http.StatusOK, models.PlanListResponse{OK: true, Plans: plans, DeliveryDate: date})
}

func (h *Handler) signToken(driver models.Driver) (string, error) {
	claims := &models.JwtCustomClaims{
		DriverID: driver.ID,
		Name:     driver.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
