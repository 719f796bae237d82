package boot

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/bytedance/sonic"
)

// ErrMalformedBootPayload is returned when the boot payload cannot be
// decoded, or carries values outside the known host types and views.
var ErrMalformedBootPayload = errors.New("malformed boot payload")

// Payload is the hydration data a renderer boots from.
type Payload struct {
	Host    types.HostType
	View    types.View
	Project *types.ProjectSnapshot
}

// Empty reports whether the payload carries nothing.
func (p Payload) Empty() bool {
	return p.Host == types.HostUnset && p.View == "" && p.Project == nil
}

// wire mirrors the JSON shape: {"host"?, "view"?, "project"?}.
type wire struct {
	Host    string                 `json:"host,omitempty"`
	View    string                 `json:"view,omitempty"`
	Project *types.ProjectSnapshot `json:"project,omitempty"`
}

// Parse decodes a URL-encoded JSON payload. An empty input is "{}". On a
// decode failure the empty payload is returned with ErrMalformedBootPayload.
// Unknown host or view values are dropped and reported the same way, with
// the rest of the payload kept.
func Parse(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedBootPayload, err)
	}

	var w wire
	if err := sonic.UnmarshalString(decoded, &w); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedBootPayload, err)
	}

	var (
		p    Payload
		errs []error
	)

	if w.Host != "" {
		h, err := types.ParseHostType(w.Host)
		if err != nil {
			errs = append(errs, err)
		}
		p.Host = h
	}

	if w.View != "" {
		v, err := types.ParseView(w.View)
		if err != nil {
			errs = append(errs, err)
		}
		p.View = v
	}

	if w.Project != nil {
		c := w.Project.Clone()
		p.Project = &c
	}

	if len(errs) > 0 {
		return p, fmt.Errorf("%w: %w", ErrMalformedBootPayload, errors.Join(errs...))
	}
	return p, nil
}

// Encode is the inverse of Parse, used by the host to render boot pages.
func Encode(p Payload) (string, error) {
	w := wire{Host: string(p.Host), View: string(p.View), Project: p.Project}
	data, err := sonic.MarshalString(w)
	if err != nil {
		return "", fmt.Errorf("encode boot payload: %w", err)
	}
	return url.PathEscape(data), nil
}
