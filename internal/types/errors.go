package types

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrInsufficient is returned when an extraction lacks a name, or has neither price nor image
	ErrInsufficient = errors.New("insufficient extraction")

	// ErrUnknownVendor is returned when a vendor id is not in the registry
	ErrUnknownVendor = errors.New("unknown vendor")

	// ErrStoreUnavailable is returned when the catalog store cannot be reached
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrRunNotFound is returned when a run id is not known
	ErrRunNotFound = errors.New("run not found")
)

// AuthError indicates a vendor login failure. It aborts the vendor run.
type AuthError struct {
	Vendor string
	Err    error
}

func (e AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Vendor, e.Err)
}

func (e AuthError) Unwrap() error {
	return e.Err
}

// RenderTimeout indicates a page did not finish rendering in time
type RenderTimeout struct {
	URL string
	Err error
}

func (e RenderTimeout) Error() string {
	return fmt.Sprintf("render timeout %s: %v", e.URL, e.Err)
}

func (e RenderTimeout) Unwrap() error {
	return e.Err
}

// RenderError indicates a page failed to render
type RenderError struct {
	URL string
	Err error
}

func (e RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.URL, e.Err)
}

func (e RenderError) Unwrap() error {
	return e.Err
}

// ImageDownloadError indicates a single image could not be fetched or decoded
type ImageDownloadError struct {
	URL string
	Err error
}

func (e ImageDownloadError) Error() string {
	return fmt.Sprintf("image %s: %v", e.URL, e.Err)
}

func (e ImageDownloadError) Unwrap() error {
	return e.Err
}

// PersistenceError indicates the catalog store rejected an upsert
type PersistenceError struct {
	Key string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

// NewRenderFailure wraps err as RenderTimeout or RenderError
func NewRenderFailure(url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return RenderTimeout{URL: url, Err: err}
	}
	return RenderError{URL: url, Err: err}
}

// ReasonLabel maps an error to the label used in run summaries and metrics
func ReasonLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var auth AuthError
	if errors.As(err, &auth) {
		return "auth"
	}
	var timeout RenderTimeout
	if errors.As(err, &timeout) {
		return "render_timeout"
	}
	var render RenderError
	if errors.As(err, &render) {
		return "render_error"
	}
	var image ImageDownloadError
	if errors.As(err, &image) {
		return "image_download"
	}
	var persist PersistenceError
	if errors.As(err, &persist) {
		return "persistence"
	}
	switch {
	case errors.Is(err, ErrInsufficient):
		return "insufficient"
	case errors.Is(err, ErrUnknownVendor):
		return "unknown_vendor"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "other"
}
