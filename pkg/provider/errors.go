package provider

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
)

// ErrorMessage returns the provider-supplied detail carried by err, or
// fallback when there is none.
func ErrorMessage(err error, fallback string) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the provider's HTTP status for err, or 0 when err did
// not come from a provider response.
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAuthError reports whether the provider rejected the credential.
func IsAuthError(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
