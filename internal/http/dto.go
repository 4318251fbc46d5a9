// Package httpapi provides HTTP handlers and data transfer objects for the hitlog API.
package httpapi

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents API error response.
// It carries a generic message only; details go to the log.
type ErrorResponse struct {
	Error string `json:"error"`
}
