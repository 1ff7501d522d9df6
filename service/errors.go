package service

import "fmt"

// ValidationError reports malformed or too-short input. It is raised before
// any upstream call is made and maps to a 400 at the route boundary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// UnsupportedMediaError reports an image mime type outside the allow-list.
// Checked eagerly, before any upstream call.
type UnsupportedMediaError struct {
	MimeType string
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("unsupported image type: %s. Supported types: JPEG, PNG, WebP, GIF", e.MimeType)
}

// ConfigurationError reports a missing provider credential. It gets its own
// type so operators can tell a deployment problem apart from an upstream
// outage.
type ConfigurationError struct {
	Provider string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s service not configured properly", e.Provider)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a failed primary simplification or OCR call. The
// wrapped detail goes to server logs only; callers see a generic message.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
