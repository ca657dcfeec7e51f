package reason

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/c360/semreason/message"
)

// handleRequest processes reasoning requests from the request port
func (p *Processor) handleRequest(ctx context.Context, subject string, data []byte) {
	if p.metrics != nil {
		p.metrics.requestsReceived.WithLabelValues(subject).Inc()
	}

	p.mu.Lock()
	p.lastActivity = time.Now()
	p.mu.Unlock()

	var baseMsg message.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		p.recordError(fmt.Sprintf("failed to unmarshal request envelope: %v", err), "serialization")
		return
	}

	req, ok := baseMsg.Payload().(*message.ReasonRequestPayload)
	if !ok {
		p.recordError(fmt.Sprintf("unexpected payload type %s on request subject", baseMsg.Type().String()), "validation")
		return
	}

	// Fold triples streamed ahead of this request into its base set before
	// validating, so a request may reason over an accumulated context alone.
	p.mergeAccumulated(req)

	if err := req.Validate(); err != nil {
		p.recordError(fmt.Sprintf("invalid reasoning request: %v", err), "validation")
		p.publishErrorResponse(ctx, req.RequestID, fmt.Sprintf("invalid request: %v", err))
		return
	}

	p.mu.RLock()
	limiter := p.limiter
	pool := p.pool
	p.mu.RUnlock()
	if limiter == nil || pool == nil {
		return // stopped
	}

	if !limiter.Allow() {
		if p.metrics != nil {
			p.metrics.rateLimitedTotal.Inc()
			p.metrics.runsTotal.WithLabelValues("rate_limited").Inc()
		}
		p.logger.Warn("Reasoning request rate limited", "request_id", req.RequestID)
		p.publishErrorResponse(ctx, req.RequestID, "rate limited, retry later")
		return
	}

	job := runJob{
		runID:   p.newRunID(),
		request: req,
		source:  baseMsg.Meta().Source(),
	}

	if err := pool.Submit(job); err != nil {
		if p.metrics != nil {
			p.metrics.runsTotal.WithLabelValues("rejected").Inc()
		}
		p.recordError(fmt.Sprintf("run %s rejected: %v", job.runID, err), "backpressure")
		p.publishErrorResponse(ctx, req.RequestID, "run queue full, retry later")
		return
	}

	atomic.AddInt64(&p.runsStarted, 1)
	p.logger.Debug("Reasoning run queued",
		"run_id", job.runID,
		"request_id", req.RequestID,
		"base_triples", len(req.BaseTriples))
}

// handleBatch accumulates triple batches per context until a request claims them
func (p *Processor) handleBatch(_ context.Context, subject string, data []byte) {
	if p.metrics != nil {
		p.metrics.batchesReceived.WithLabelValues(subject).Inc()
	}

	p.mu.Lock()
	p.lastActivity = time.Now()
	p.mu.Unlock()

	var baseMsg message.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		p.recordError(fmt.Sprintf("failed to unmarshal batch envelope: %v", err), "serialization")
		return
	}

	batch, ok := baseMsg.Payload().(*message.TripleBatchPayload)
	if !ok {
		p.recordError(fmt.Sprintf("unexpected payload type %s on triple subject", baseMsg.Type().String()), "validation")
		return
	}

	if err := batch.Validate(); err != nil {
		p.recordError(fmt.Sprintf("invalid triple batch: %v", err), "validation")
		return
	}

	if batch.Context == "" {
		p.recordError("triple batch has no context, cannot accumulate", "validation")
		return
	}

	p.mu.RLock()
	batchCache := p.batchCache
	p.mu.RUnlock()
	if batchCache == nil {
		return // stopped
	}

	// Batches for one subscription arrive on a single dispatcher goroutine,
	// so the read-modify-write on the context entry is ordered.
	accumulated, _ := batchCache.Get(batch.Context)
	accumulated = append(accumulated, batch.Items...)
	if _, err := batchCache.Set(batch.Context, accumulated); err != nil {
		p.recordError(fmt.Sprintf("failed to accumulate batch for context %s: %v", batch.Context, err), "cache")
		return
	}

	atomic.AddInt64(&p.batchesAccumulated, 1)
	if p.metrics != nil {
		p.metrics.activeContexts.Set(float64(batchCache.Size()))
	}

	p.logger.Debug("Triple batch accumulated",
		"context", batch.Context,
		"batch_size", len(batch.Items),
		"context_size", len(accumulated))
}

// mergeAccumulated moves the triples cached under the request's correlation
// ID into its base set. The claiming run consumes the context; duplicates
// across the stream and the request are dropped by structural key.
func (p *Processor) mergeAccumulated(req *message.ReasonRequestPayload) {
	if req.RequestID == "" {
		return
	}

	p.mu.RLock()
	batchCache := p.batchCache
	p.mu.RUnlock()
	if batchCache == nil {
		return
	}

	accumulated, ok := batchCache.Get(req.RequestID)
	if !ok || len(accumulated) == 0 {
		return
	}
	if _, err := batchCache.Delete(req.RequestID); err != nil {
		p.logger.Warn("Failed to release accumulated context", "context", req.RequestID, "error", err)
	}

	seen := make(map[message.Key]struct{}, len(accumulated)+len(req.BaseTriples))
	merged := make([]message.Triple, 0, len(accumulated)+len(req.BaseTriples))
	for _, t := range append(accumulated, req.BaseTriples...) {
		if _, dup := seen[t.Key()]; dup {
			continue
		}
		seen[t.Key()] = struct{}{}
		merged = append(merged, t)
	}
	req.BaseTriples = merged

	if p.metrics != nil {
		p.metrics.activeContexts.Set(float64(batchCache.Size()))
	}

	p.logger.Debug("Accumulated context merged into request",
		"request_id", req.RequestID,
		"accumulated", len(accumulated),
		"base_triples", len(merged))
}

// recordError records an error and updates health status
func (p *Processor) recordError(errorMsg, errorType string) {
	atomic.AddInt64(&p.errorCount, 1)

	if p.metrics != nil {
		p.metrics.errorsTotal.WithLabelValues(errorType).Inc()
	}

	p.mu.Lock()
	p.lastError = errorMsg
	p.health.LastError = errorMsg
	p.mu.Unlock()

	p.logger.Error("Reasoning processor error", "error", errorMsg)
}
