package models

// Driver is the authenticated driver as returned by the login endpoint.
type Driver struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Session is the locally persisted authentication state: an opaque
// bearer token plus the driver it belongs to. It is created at login and
// destroyed unconditionally at logout; trip data outlives it unless the
// trip is complete.
type Session struct {
	Token  string `json:"token"`
	Driver Driver `json:"driver"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body returned by the login endpoint.
type LoginResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Token   string  `json:"token,omitempty"`
	Driver  *Driver `json:"driver,omitempty"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"required,min=6,max=20"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterResponse is the body returned by the register endpoint.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the generic error body returned by the API.
type ErrorResponse struct {
	Message string `json:"message"`
}
