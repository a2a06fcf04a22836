package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WriteJSON renders v as the response body with the given status. Responses
// from an authorization server routinely carry credentials, so every JSON
// body goes out with cache suppression headers.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks the response uncacheable, as RFC 6749 section 5.1 requires
// for token responses.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ParseSpaceDelimitedFields splits a scope-style parameter into its
// entries. Empty or all-whitespace input yields nil.
func ParseSpaceDelimitedFields(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return strings.Fields(s)
}
