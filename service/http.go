package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// writeJSON marshals v and writes it with a 200 status.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	writeJSONStatus(w, logger, http.StatusOK, v)
}

// writeJSONStatus marshals v before touching the response so an encoding
// failure can still produce a clean 500.
func writeJSONStatus(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// validPathName rejects path values that could smuggle traversal segments.
// The mux decodes percent escapes before handing us the value, so encoded
// separators show up here as literal ones.
func validPathName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}

// queryLimit parses a limit query parameter, clamping to max. Missing or
// malformed values fall back to def.
func queryLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return min(parsed, max)
}

// routePrefix normalizes a mount prefix for building mux patterns.
func routePrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
