// Package parser turns free-form model output into structured JSON values.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a model response could not be parsed.
type Kind string

const (
	KindNoFragment Kind = "no_fragment"
	KindMalformed  Kind = "malformed"
)

var (
	ErrNoFragment = errors.New("no JSON fragment found in response")
	ErrMalformed  = errors.New("malformed JSON fragment")
)

// ParseError describes a failed parse. Raw holds the full model output.
type ParseError struct {
	Kind Kind
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Kind == KindNoFragment {
		return ErrNoFragment.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformed, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrNoFragment:
		return e.Kind == KindNoFragment
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// ParseObject extracts the span between the first '{' and the last '}' and decodes it.
// Braces are not balanced: prose containing braces around the payload breaks the slice.
func ParseObject(raw string) (map[string]any, error) {
	fragment, err := slice(raw, '{', '}')
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(fragment), &out); err != nil {
		return nil, &ParseError{Kind: KindMalformed, Raw: raw, Err: err}
	}
	return out, nil
}

// ParseArray is ParseObject for '[' ... ']'.
func ParseArray(raw string) ([]any, error) {
	fragment, err := slice(raw, '[', ']')
	if err != nil {
		return nil, err
	}
	var out []any
	if err := json.Unmarshal([]byte(fragment), &out); err != nil {
		return nil, &ParseError{Kind: KindMalformed, Raw: raw, Err: err}
	}
	return out, nil
}

func slice(raw string, open, close byte) (string, error) {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start < 0 || end < 0 {
		return "", &ParseError{Kind: KindNoFragment, Raw: raw}
	}
	if end < start {
		return "", &ParseError{Kind: KindMalformed, Raw: raw, Err: fmt.Errorf("closing %q precedes opening %q", close, open)}
	}
	return raw[start : end+1], nil
}
