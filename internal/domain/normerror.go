package domain

import "strings"

// ErrorKind is the stable category assigned to an adapter error string.
type ErrorKind string

const (
	// ErrorKindRPC is a JSON-RPC error with a standard code
	// (e.g. -32601 method not found, -32602 invalid params).
	ErrorKindRPC ErrorKind = "rpc_error"
	// ErrorKindClientUnavailable means the adapter's client was not
	// configured or reachable.
	ErrorKindClientUnavailable ErrorKind = "client_unavailable"
	// ErrorKindOther is an error that could not be classified.
	ErrorKindOther ErrorKind = "other"
)

// NormalizedError is the classification of an error string into a stable
// category, so two textually different but semantically equal errors
// compare equal across adapters.
type NormalizedError struct {
	Kind ErrorKind `json:"kind"`
	// Code is the JSON-RPC error code when Kind is rpc_error.
	Code int `json:"code,omitempty"`
	// Method is the extracted method name for method-not-found errors.
	Method string `json:"method,omitempty"`
	// Message holds the raw error when Kind is other.
	Message string `json:"message,omitempty"`
}

const rpcCodeMethodNotFound = -32601

// ClassifyError parses an adapter error string into a NormalizedError.
func ClassifyError(errStr string) *NormalizedError {
	if code, ok := extractRPCCode(errStr); ok {
		ne := &NormalizedError{Kind: ErrorKindRPC, Code: code}
		if code == rpcCodeMethodNotFound {
			ne.Method = extractMethodName(errStr)
		}
		return ne
	}

	if strings.Contains(errStr, "not configured") ||
		strings.Contains(errStr, "not available") ||
		strings.Contains(errStr, "not initialized") {
		return &NormalizedError{Kind: ErrorKindClientUnavailable}
	}

	return &NormalizedError{Kind: ErrorKindOther, Message: errStr}
}

// IsEquivalent reports whether two classified errors are semantically equal.
func (ne *NormalizedError) IsEquivalent(other *NormalizedError) bool {
	if ne == nil || other == nil {
		return ne == other
	}
	if ne.Kind != other.Kind {
		return false
	}
	switch ne.Kind {
	case ErrorKindRPC:
		return ne.Code == other.Code && ne.Method == other.Method
	case ErrorKindClientUnavailable:
		return true
	default:
		return ne.Message == other.Message
	}
}

// extractRPCCode finds a `"code":-32601` style pattern in an error string.
func extractRPCCode(errStr string) (int, bool) {
	idx := strings.Index(errStr, `"code"`)
	if idx < 0 {
		return 0, false
	}
	rest := errStr[idx+len(`"code"`):]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return 0, false
	}
	rest = strings.TrimLeft(rest[colon+1:], " ")

	end := 0
	for end < len(rest) && (rest[end] == '-' || (rest[end] >= '0' && rest[end] <= '9')) {
		end++
	}
	if end == 0 || (end == 1 && rest[0] == '-') {
		return 0, false
	}

	code := 0
	neg := false
	for _, c := range rest[:end] {
		if c == '-' {
			neg = true
			continue
		}
		code = code*10 + int(c-'0')
	}
	if neg {
		code = -code
	}
	return code, true
}

// extractMethodName pulls a method name out of the common phrasings used by
// backends for method-not-found errors, e.g. "Unknown command 'ListChannels'"
// or "Unknown method: ListChannels".
func extractMethodName(errStr string) string {
	for _, pattern := range []string{"command '", "command: '", "method: ", "method '"} {
		start := strings.Index(errStr, pattern)
		if start < 0 {
			continue
		}
		rest := errStr[start+len(pattern):]
		end := strings.IndexFunc(rest, func(c rune) bool {
			return c == '\'' || c == '"' || c == ' ' || c == '\t' || c == '\n'
		})
		if end < 0 {
			end = len(rest)
		}
		if method := rest[:end]; method != "" {
			return method
		}
	}
	return ""
}
