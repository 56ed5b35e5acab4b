package models

import "time"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse reports liveness and whether the model backend is usable
type HealthResponse struct {
	Status       string    `json:"status"`
	Version      string    `json:"version"`
	Time         time.Time `json:"time"`
	AIConfigured bool      `json:"ai_configured"`
}

// UploadedFile holds a multipart upload read fully into memory.
// Owned by one request.
type UploadedFile struct {
	Name      string
	MediaType string
	Data      []byte
}

// Empty reports whether the upload carried no bytes
func (f *UploadedFile) Empty() bool {
	return f == nil || len(f.Data) == 0
}
