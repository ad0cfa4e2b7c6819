package models

import (
	"time"
)

// APIResponse is the envelope every endpoint answers with. Contract endpoints
// embed it and add their own fields next to it.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError carries the machine code of a failure. Details holds per-field
// validation messages.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewSuccessResponse(data any, message string) *APIResponse {
	r := Envelope(message)
	r.Data = data
	return &r
}

// NewErrorResponse mirrors the message at the top level so clients reading
// only "message" see the reason too.
func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{
		Message:   message,
		Error:     &APIError{Code: code, Message: message, Details: details},
		Timestamp: time.Now(),
	}
}

func Envelope(message string) APIResponse {
	return APIResponse{Success: true, Message: message, Timestamp: time.Now()}
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck reports the store and optional integrations. One unhealthy
// component marks the whole service unhealthy.
type HealthCheck struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Commit     string                     `json:"commit,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewHealthCheck(version, commit string) *HealthCheck {
	return &HealthCheck{
		Status:     StatusHealthy,
		Timestamp:  time.Now(),
		Version:    version,
		Commit:     commit,
		Components: map[string]ComponentHealth{},
	}
}

func (h *HealthCheck) AddComponent(name, status, message string) {
	h.Components[name] = ComponentHealth{Status: status, Message: message}
	if status != StatusHealthy {
		h.Status = StatusUnhealthy
	}
}
