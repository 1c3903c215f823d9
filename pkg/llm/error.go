// Package llm holds the wire shapes of the Neural AI HTTP surface: the
// conversation messages callers send and the replies the proxy returns.
package llm

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
