package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

var _ HTTPHandler = (*MessageLogger)(nil)

// RegisterHTTPHandlers mounts the message logger endpoints under prefix.
func (ml *MessageLogger) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = routePrefix(prefix)

	mux.HandleFunc("GET "+prefix+"/entries", ml.handleGetEntries)
	mux.HandleFunc("GET "+prefix+"/stats", ml.handleGetStats)
	mux.HandleFunc("GET "+prefix+"/subjects", ml.handleGetSubjects)
	mux.HandleFunc("GET "+prefix+"/kv/{bucket}", ml.handleKVQuery)

	ml.logger.Info("MessageLogger HTTP handlers registered", "prefix", prefix)
}

// loggerGet builds a GET operation tagged for the message logger.
func loggerGet(summary, description string, params []ParameterSpec, responses map[string]ResponseSpec) PathSpec {
	return PathSpec{GET: &OperationSpec{
		Summary:     summary,
		Description: description,
		Tags:        []string{"MessageLogger"},
		Parameters:  params,
		Responses:   responses,
	}}
}

func jsonOK(description string) map[string]ResponseSpec {
	return map[string]ResponseSpec{
		"200": {Description: description, ContentType: "application/json"},
	}
}

// OpenAPISpec describes the message logger endpoints.
func (ml *MessageLogger) OpenAPISpec() *OpenAPISpec {
	spec := NewOpenAPISpec()
	spec.AddTag("MessageLogger", "Message observation and debugging endpoints")

	spec.AddPath("/entries", loggerGet(
		"Get recent message entries",
		"Returns the most recent logged messages from the circular buffer",
		[]ParameterSpec{
			{Name: "limit", In: "query", Schema: Schema{Type: "integer"},
				Description: "Maximum number of entries to return (default: 100, max: 10000)"},
			{Name: "subject", In: "query", Schema: Schema{Type: "string"},
				Description: "Filter by NATS subject pattern"},
		},
		jsonOK("List of message entries")))

	spec.AddPath("/stats", loggerGet(
		"Get message statistics",
		"Returns statistics about processed messages",
		nil, jsonOK("Message statistics")))

	spec.AddPath("/subjects", loggerGet(
		"Get monitored subjects",
		"Returns list of NATS subjects being monitored",
		nil, jsonOK("List of monitored subjects")))

	kvResponses := jsonOK("KV bucket entries")
	kvResponses["403"] = ResponseSpec{Description: "KV query disabled in production"}
	kvResponses["404"] = ResponseSpec{Description: "Bucket not found"}
	spec.AddPath("/kv/{bucket}", loggerGet(
		"Query KV bucket",
		"Query NATS KV bucket entries (development/test only)",
		[]ParameterSpec{
			{Name: "bucket", In: "path", Required: true, Schema: Schema{Type: "string"},
				Description: "KV bucket name"},
			{Name: "pattern", In: "query", Schema: Schema{Type: "string"},
				Description: "Key pattern to match (e.g., 'entity.*')"},
			{Name: "limit", In: "query", Schema: Schema{Type: "integer"},
				Description: "Maximum number of entries to return (default: 100, max: 1000)"},
		},
		kvResponses))

	return spec
}

func (ml *MessageLogger) handleGetEntries(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100, 10000)
	entries := ml.GetLogEntries(limit)

	if filter := r.URL.Query().Get("subject"); filter != "" {
		filtered := make([]MessageLogEntry, 0, len(entries))
		for _, entry := range entries {
			if matchesPattern(entry.Subject, filter) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	writeJSON(w, ml.logger, entries)
}

func (ml *MessageLogger) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, ml.logger, ml.GetStatistics())
}

func (ml *MessageLogger) handleGetSubjects(w http.ResponseWriter, _ *http.Request) {
	ml.stateMu.RLock()
	subjects := ml.config.MonitorSubjects
	ml.stateMu.RUnlock()

	writeJSON(w, ml.logger, subjects)
}

// handleKVQuery exposes raw KV contents for debugging. Not meant for
// production traffic, hence the warning on every hit.
func (ml *MessageLogger) handleKVQuery(w http.ResponseWriter, r *http.Request) {
	ml.logger.Warn("KV query endpoint accessed - should be restricted to dev/test environments")

	bucket := r.PathValue("bucket")
	if !validPathName(bucket) {
		http.Error(w, "Invalid bucket name", http.StatusBadRequest)
		return
	}

	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	limit := queryLimit(r, 100, 1000)

	result, err := ml.queryKVBucket(r.Context(), bucket, pattern, limit)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, fmt.Sprintf("Bucket not found: %s", bucket), http.StatusNotFound)
		} else {
			ml.logger.Error("Failed to query KV bucket", "bucket", bucket, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, ml.logger, result)
}

// queryKVBucket lists matching keys in a bucket. Missing buckets are
// created with a short history so the endpoint works against buckets that
// components have not touched yet.
func (ml *MessageLogger) queryKVBucket(
	ctx context.Context,
	bucket, pattern string,
	limit int,
) (map[string]any, error) {
	kv, err := ml.natsClient.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: fmt.Sprintf("KV bucket %s (auto-created by query)", bucket),
		History:     5,
		TTL:         7 * 24 * time.Hour,
		MaxBytes:    -1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create/get KV bucket %s: %w", bucket, err)
	}

	keys, err := kv.Keys(ctx, jetstream.IgnoreDeletes())
	if err != nil {
		// An empty bucket is a valid result, not an error.
		if strings.Contains(err.Error(), "no keys found") {
			return map[string]any{
				"bucket":  bucket,
				"pattern": pattern,
				"count":   0,
				"entries": []map[string]any{},
			}, nil
		}
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	entries := make([]map[string]any, 0, limit)
	for _, key := range keys {
		if len(entries) >= limit {
			break
		}
		if !matchesPattern(key, pattern) {
			continue
		}

		entry, err := kv.Get(ctx, key)
		if err != nil {
			ml.logger.Warn("Failed to get KV entry", "key", key, "error", err)
			continue
		}

		var value any
		if err := json.Unmarshal(entry.Value(), &value); err != nil {
			value = string(entry.Value())
		}

		entries = append(entries, map[string]any{
			"key":      key,
			"value":    value,
			"revision": entry.Revision(),
			"created":  entry.Created(),
		})
	}

	return map[string]any{
		"bucket":  bucket,
		"pattern": pattern,
		"count":   len(entries),
		"entries": entries,
	}, nil
}

// matchesPattern does simple glob matching: *sub*, *suffix, prefix*,
// prefix*suffix, or exact. A bare * or empty pattern matches everything.
func matchesPattern(str, pattern string) bool {
	switch {
	case pattern == "" || pattern == "*":
		return true
	case !strings.Contains(pattern, "*"):
		return str == pattern
	}

	if rest, ok := strings.CutPrefix(pattern, "*"); ok {
		if sub, ok := strings.CutSuffix(rest, "*"); ok {
			return strings.Contains(str, sub)
		}
		return strings.HasSuffix(str, rest)
	}

	prefix, suffix, _ := strings.Cut(pattern, "*")
	return strings.HasPrefix(str, prefix) && strings.HasSuffix(str, suffix)
}
