package proxy

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Config is the proxy server configuration.
type Config struct {
	// Address to listen on (e.g., ":3001")
	ListenAddr string

	// AllowedOrigin is the only cross-origin caller accepted by CORS
	// (e.g., "http://localhost:3000").
	AllowedOrigin string

	// SystemDirective is prepended to every chat conversation.
	SystemDirective string

	// RecordDB enables transcript recording when non-empty.
	// Use ":memory:" for an in-memory store or a SQLite file path.
	RecordDB string

	// ChatModel and ImageModel label recorded transcript nodes.
	ChatModel  string
	ImageModel string
}

// ValidateOrigin reports whether origin is a single scheme://host[:port]
// origin that CORS can match. Wildcards are refused because credentials
// are allowed.
func ValidateOrigin(origin string) error {
	if origin == "" {
		return errors.New("allowed origin must not be empty")
	}
	if strings.ContainsAny(origin, "*, \t") {
		return fmt.Errorf("allowed origin %q must be a single origin without wildcards", origin)
	}

	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("allowed origin %q: %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("allowed origin %q must use http or https", origin)
	}
	if u.Host == "" || u.User != nil || (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("allowed origin %q must be scheme://host[:port] with no path", origin)
	}
	return nil
}
