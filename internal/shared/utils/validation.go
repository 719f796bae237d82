package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

const (
	// MaxEnvelopeSize bounds one envelope pushed through the host API.
	MaxEnvelopeSize = 256 * 1024
	// MaxJSONDepth bounds nesting in pushed payloads.
	MaxJSONDepth = 64

	MaxIDLength   = 128
	MaxTypeLength = 64
)

var (
	// ErrTooLarge is returned for bodies over the validator's limit.
	ErrTooLarge = errors.New("payload too large")
	// ErrInvalidJSON is returned for bodies that do not parse.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrTooDeep is returned for bodies nested deeper than MaxJSONDepth.
	ErrTooDeep = errors.New("JSON nested too deeply")
	// ErrInvalidField is returned for ids and type names that fail their
	// pattern or length checks.
	ErrInvalidField = errors.New("invalid field")
)

var (
	// SafeIDPattern matches window and project ids in URLs.
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// TypePattern matches envelope type names such as "change-active-view".
	TypePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// EnvelopeValidator checks raw bodies before they are decoded into
// envelopes.
type EnvelopeValidator struct {
	maxSize  int
	maxDepth int
}

// NewEnvelopeValidator limits bodies to maxSize bytes and MaxJSONDepth.
func NewEnvelopeValidator(maxSize int) *EnvelopeValidator {
	return &EnvelopeValidator{maxSize: maxSize, maxDepth: MaxJSONDepth}
}

// MaxSize returns the byte limit, for sizing read limits.
func (v *EnvelopeValidator) MaxSize() int {
	return v.maxSize
}

// Validate checks size, syntax and nesting.
func (v *EnvelopeValidator) Validate(data []byte) error {
	if len(data) > v.maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), v.maxSize)
	}

	var doc any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if depth := depthOf(doc, 0, v.maxDepth); depth > v.maxDepth {
		return fmt.Errorf("%w: limit %d", ErrTooDeep, v.maxDepth)
	}
	return nil
}

// depthOf returns the nesting depth of doc, stopping early past limit.
func depthOf(doc any, depth, limit int) int {
	if depth > limit {
		return depth
	}
	deepest := depth
	visit := func(child any) {
		if d := depthOf(child, depth+1, limit); d > deepest {
			deepest = d
		}
	}
	switch v := doc.(type) {
	case map[string]any:
		for _, child := range v {
			visit(child)
			if deepest > limit {
				break
			}
		}
	case []any:
		for _, child := range v {
			visit(child)
			if deepest > limit {
				break
			}
		}
	}
	return deepest
}

// ValidateID checks a path id such as a window or project id.
func ValidateID(value, field string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidField, field)
	case len(value) > MaxIDLength:
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidField, field, MaxIDLength)
	case !SafeIDPattern.MatchString(value):
		return fmt.Errorf("%w: %s may only contain letters, digits, '-' and '_'", ErrInvalidField, field)
	}
	return nil
}

// ValidateType checks an envelope type name.
func ValidateType(t string) error {
	switch {
	case t == "":
		return fmt.Errorf("%w: type is required", ErrInvalidField)
	case len(t) > MaxTypeLength:
		return fmt.Errorf("%w: type exceeds %d characters", ErrInvalidField, MaxTypeLength)
	case !TypePattern.MatchString(t):
		return fmt.Errorf("%w: type %q is not a hyphenated lowercase name", ErrInvalidField, strings.TrimSpace(t))
	}
	return nil
}
