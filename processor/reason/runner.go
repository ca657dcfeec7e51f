package reason

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/c360/semreason/message"
	"github.com/c360/semreason/reasoner"
)

// runJob is one reasoning run: a validated request plus the identifiers
// needed to correlate and publish its outcome.
type runJob struct {
	runID   string
	request *message.ReasonRequestPayload
	source  string
}

// newRunID returns a time-sortable run identifier.
func (p *Processor) newRunID() string {
	// MonotonicEntropy is not safe for concurrent readers
	p.entropyMu.Lock()
	defer p.entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), p.entropy).String()
}

// engineFor returns the engine for a request. Requests that name a profile
// or override the iteration cap get a chain built for that run; everything
// else shares the processor's default engine.
func (p *Processor) engineFor(req *message.ReasonRequestPayload) (*reasoner.Engine, error) {
	if req.Profile == "" && req.MaxIterations == 0 {
		return p.engine, nil
	}

	profile := p.profile
	if req.Profile != "" {
		resolved, err := reasoner.ResolveProfile(req.Profile)
		if err != nil {
			return nil, err
		}
		profile = resolved
	}

	opts := p.engineOptions()
	if req.MaxIterations > 0 {
		opts = append(opts, reasoner.WithMaxIterations(req.MaxIterations))
	}

	return profile.Build(opts...)
}

// executeRun is the worker pool processor. It runs inference for one job and
// publishes the response and the inferred-triple fanout.
func (p *Processor) executeRun(ctx context.Context, job runJob) error {
	start := time.Now()
	req := job.request

	profileLabel := req.Profile
	if profileLabel == "" {
		profileLabel = p.profile.Name
	}

	engine, err := p.engineFor(req)
	if err != nil {
		p.failRun(ctx, job, profileLabel, start, err)
		return err
	}

	result, err := engine.Reason(ctx, req.BaseTriples)
	if err != nil {
		p.failRun(ctx, job, profileLabel, start, err)
		return err
	}

	p.finishRun(ctx, job, result, profileLabel, start)
	return nil
}

// failRun records a failed run and answers the request with an error response.
func (p *Processor) failRun(ctx context.Context, job runJob, profileLabel string, start time.Time, runErr error) {
	duration := time.Since(start)

	atomic.AddInt64(&p.runsFailed, 1)
	if p.metrics != nil {
		p.metrics.runsTotal.WithLabelValues("failed").Inc()
		p.metrics.runDuration.WithLabelValues(profileLabel).Observe(duration.Seconds())
	}

	p.recordError(fmt.Sprintf("run %s failed: %v", job.runID, runErr), "reasoning")
	p.meshLog.WithRun(job.runID).ErrorContext(ctx, "run failed", runErr)
	p.publishErrorResponse(ctx, job.request.RequestID, runErr.Error())
}

// finishRun records a completed run and publishes its outcome.
func (p *Processor) finishRun(ctx context.Context, job runJob, result *reasoner.Result, profileLabel string, start time.Time) {
	duration := time.Since(start)

	atomic.AddInt64(&p.runsCompleted, 1)
	atomic.AddInt64(&p.triplesInferred, int64(len(result.Inferred)))

	if p.metrics != nil {
		p.metrics.runsTotal.WithLabelValues("completed").Inc()
		p.metrics.runDuration.WithLabelValues(profileLabel).Observe(duration.Seconds())
		p.metrics.runIterations.Observe(float64(result.Iterations))
		p.metrics.inferredTriples.Observe(float64(len(result.Inferred)))
		if !result.Converged {
			p.metrics.cutShortTotal.Inc()
		}
		for _, ruleErr := range result.RuleErrors {
			p.metrics.ruleErrorsTotal.WithLabelValues(ruleErr.RuleName).Inc()
		}
	}

	response := p.buildResponse(job, result)
	if err := p.publishResponse(ctx, response); err != nil {
		p.recordError(fmt.Sprintf("run %s: %v", job.runID, err), "publishing")
	}
	if err := p.publishInferred(ctx, job, result.Inferred); err != nil {
		p.recordError(fmt.Sprintf("run %s: %v", job.runID, err), "publishing")
	}

	p.logger.Info("Reasoning run completed",
		"run_id", job.runID,
		"request_id", job.request.RequestID,
		"profile", profileLabel,
		"iterations", result.Iterations,
		"converged", result.Converged,
		"inferred", len(result.Inferred),
		"duration", duration)
	p.meshLog.WithRun(job.runID).InfoContext(ctx,
		fmt.Sprintf("run completed: %d inferred in %d iterations", len(result.Inferred), result.Iterations))
}

// buildResponse assembles the response payload for a completed run.
func (p *Processor) buildResponse(job runJob, result *reasoner.Result) *message.ReasonResponsePayload {
	response := &message.ReasonResponsePayload{
		RequestID:  job.request.RequestID,
		Inferred:   result.Inferred,
		Converged:  result.Converged,
		Iterations: result.Iterations,
	}

	if job.request.Explanations || p.config.DefaultExplanations {
		explanations := make([]message.Explanation, 0, len(result.Inferred))
		for _, t := range result.Inferred {
			if expl, ok := result.ExplanationFor(t); ok {
				explanations = append(explanations, expl)
			}
		}
		response.Explanations = explanations
	}

	for _, ruleErr := range result.RuleErrors {
		response.RuleErrors = append(response.RuleErrors, ruleErr.Error())
	}

	return response
}
