package models

import "time"

// APIResponse is the generic envelope all HTTP endpoints return.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// OK builds a success envelope.
func OK(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data, Timestamp: time.Now()}
}

// OKMessage builds a success envelope with only a message.
func OKMessage(msg string) APIResponse {
	return APIResponse{Success: true, Message: msg, Timestamp: time.Now()}
}

// Fail builds an error envelope.
func Fail(msg string) APIResponse {
	return APIResponse{Success: false, Error: msg, Timestamp: time.Now()}
}
