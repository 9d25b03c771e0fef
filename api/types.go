package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	videoHandler  videoHandler
	authHandler   authHandler
	healthHandler healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string            `json:"error" example:"validation failed"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"id"`
	Details string            `json:"details,omitempty" example:"invalid fields: memo"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// AdminStatusResponse reports whether the caller is the administrator
type AdminStatusResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

// DeleteResponse acknowledges a delete
type DeleteResponse struct {
	OK bool `json:"ok"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
