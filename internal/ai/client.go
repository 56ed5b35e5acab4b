// Package ai wraps the generative model backends behind a single Generate call.
package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("model not configured")
	ErrEmptyResponse = errors.New("model returned no text")
	ErrBlocked       = errors.New("response blocked by safety filters")
)

// Attachment is binary content sent alongside a prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Client sends a prompt (and optional attachments) and returns the raw response text.
type Client interface {
	Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error)
}

// Role names a logical model.
type Role string

const (
	RoleText   Role = "text"
	RoleVision Role = "vision"
)

// Models bundles both roles. Built once at startup and read-only afterwards.
type Models struct {
	Text   Client
	Vision Client
}

// Ready fails with ErrNotConfigured when any requested role is missing.
// With no roles given, both are required.
func (m Models) Ready(roles ...Role) error {
	if len(roles) == 0 {
		roles = []Role{RoleText, RoleVision}
	}
	for _, r := range roles {
		if m.client(r) == nil {
			return fmt.Errorf("%s %w", r, ErrNotConfigured)
		}
	}
	return nil
}

// Configured reports whether both roles are available.
func (m Models) Configured() bool {
	return m.Ready() == nil
}

func (m Models) client(r Role) Client {
	switch r {
	case RoleText:
		return m.Text
	case RoleVision:
		return m.Vision
	}
	return nil
}
